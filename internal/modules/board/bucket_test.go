// README: Time-bucket classification tests with a fixed reference clock.
package board

import (
	"testing"
	"time"

	"cakeline/internal/modules/order"
)

// Fixed reference clock: 2025-06-01 11:30 local time.
var refNow = time.Date(2025, 6, 1, 11, 30, 0, 0, time.Local)

func day(offset int) time.Time {
	return time.Date(2025, 6, 1+offset, 0, 0, 0, 0, time.Local)
}

func TestClassifyDate(t *testing.T) {
	cases := []struct {
		name     string
		delivery time.Time
		want     DateBucket
	}{
		{"same day", day(0), DateToday},
		{"same day late evening", time.Date(2025, 6, 1, 23, 59, 0, 0, time.Local), DateToday},
		{"next day", day(1), DateTomorrow},
		{"day after tomorrow", day(2), DateThisWeek},
		{"three days out", day(3), DateLater},
		{"yesterday", day(-1), DateLater},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyDate(tc.delivery, refNow); got != tc.want {
				t.Errorf("ClassifyDate = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestClassifySlot(t *testing.T) {
	cases := []struct {
		name     string
		slot     order.TimeSlot
		delivery time.Time
		now      time.Time
		want     SlotBucket
	}{
		// slot1 is 10:00-13:00; at 11:30 we are inside the window
		{"inside slot1 window", order.Slot1, day(0), refNow, SlotWithin2h},
		{"slot1 after end is late", order.Slot1, day(0), time.Date(2025, 6, 1, 13, 1, 0, 0, time.Local), SlotLate},
		// slot2 starts 13:00; 11:30 is within the 2h lead
		{"slot2 inside lead", order.Slot2, day(0), refNow, SlotWithin2h},
		{"slot2 before lead", order.Slot2, day(0), time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local), SlotBucket(order.Slot2)},
		// slot3 starts 16:00; lead begins 14:00
		{"slot3 far out", order.Slot3, day(0), refNow, SlotBucket(order.Slot3)},
		{"slot3 at lead boundary", order.Slot3, day(0), time.Date(2025, 6, 1, 14, 0, 0, 0, time.Local), SlotWithin2h},
		{"slot3 past end", order.Slot3, day(0), time.Date(2025, 6, 1, 20, 30, 0, 0, time.Local), SlotLate},
		// delivery tomorrow: nothing urgent yet
		{"tomorrow slot1", order.Slot1, day(1), refNow, SlotBucket(order.Slot1)},
		// yesterday's slot is long gone
		{"yesterday slot2", order.Slot2, day(-1), refNow, SlotLate},
		// unknown slot passes through
		{"unknown slot", order.TimeSlot("slot9"), day(0), refNow, SlotBucket("slot9")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifySlot(tc.slot, tc.delivery, tc.now); got != tc.want {
				t.Errorf("ClassifySlot = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSlotWindowText(t *testing.T) {
	cases := []struct {
		slot order.TimeSlot
		want string
	}{
		{order.Slot1, "10:00-13:00"},
		{order.Slot2, "13:00-16:00"},
		{order.Slot3, "16:00-20:00"},
		{order.TimeSlot("custom"), "custom"},
	}
	for _, tc := range cases {
		if got := SlotWindowText(tc.slot); got != tc.want {
			t.Errorf("SlotWindowText(%s) = %q, want %q", tc.slot, got, tc.want)
		}
	}
}
