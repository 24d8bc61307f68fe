// README: Time-bucket classification for delivery dates and time slots.
package board

import (
	"time"

	"cakeline/internal/modules/order"
	"cakeline/internal/types"
)

// DateBucket groups orders by how close their delivery date is to "now".
type DateBucket string

const (
	DateToday    DateBucket = "today"
	DateTomorrow DateBucket = "tomorrow"
	DateThisWeek DateBucket = "this-week"
	DateLater    DateBucket = "later"
	DateAll      DateBucket = "all"
)

// SlotBucket is the urgency classification of an order's delivery slot.
// Besides late/within-2-hours it can be a plain slot identifier.
type SlotBucket string

const (
	SlotLate     SlotBucket = "late"
	SlotWithin2h SlotBucket = "within-2-hours"
)

// slotWindow holds a delivery window as local clock hours on the delivery day.
type slotWindow struct {
	startHour int
	endHour   int
}

var slotWindows = map[order.TimeSlot]slotWindow{
	order.Slot1: {10, 13},
	order.Slot2: {13, 16},
	order.Slot3: {16, 20},
}

// ClassifyDate buckets a delivery date against now. Comparison is by
// calendar day, never by 24h distance: a delivery at 23:59 today is still
// "today".
func ClassifyDate(deliveryDate, now time.Time) DateBucket {
	today := types.Day(now)
	switch {
	case types.SameDay(deliveryDate, today):
		return DateToday
	case types.SameDay(deliveryDate, today.AddDate(0, 0, 1)):
		return DateTomorrow
	case types.SameDay(deliveryDate, today.AddDate(0, 0, 2)):
		return DateThisWeek
	default:
		return DateLater
	}
}

// ClassifySlot computes the urgency of an order's slot relative to now.
// Never persisted: "now" moves, so this is recomputed on every read.
func ClassifySlot(slot order.TimeSlot, deliveryDate, now time.Time) SlotBucket {
	w, ok := slotWindows[slot]
	if !ok {
		return SlotBucket(slot)
	}
	day := types.Day(deliveryDate)
	start := day.Add(time.Duration(w.startHour) * time.Hour)
	end := day.Add(time.Duration(w.endHour) * time.Hour)

	switch {
	case now.After(end):
		return SlotLate
	case !now.Before(start.Add(-2 * time.Hour)):
		return SlotWithin2h
	default:
		return SlotBucket(slot)
	}
}

// SlotWindowText renders a slot as display text.
func SlotWindowText(slot order.TimeSlot) string {
	switch slot {
	case order.Slot1:
		return "10:00-13:00"
	case order.Slot2:
		return "13:00-16:00"
	case order.Slot3:
		return "16:00-20:00"
	default:
		return string(slot)
	}
}
