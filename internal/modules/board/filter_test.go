// README: Delivery-board filter tests; pure predicate composition.
package board

import (
	"testing"

	"cakeline/internal/modules/order"
	"cakeline/internal/types"
)

func ord(id string, s order.Status) *order.Order {
	return &order.Order{ID: types.ID(id), Status: s, DeliveryDate: day(0)}
}

func ids(orders []*order.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = string(o.ID)
	}
	return out
}

func TestFilterByStatus(t *testing.T) {
	orders := []*order.Order{
		ord("queued", order.StatusInQueue),
		ord("kitchen", order.StatusInKitchen),
		ord("pending", order.StatusPendingApproval),
		ord("revision", order.StatusNeedsRevision),
		ord("ready", order.StatusReadyToDeliver),
		ord("transit", order.StatusInDelivery),
		ord("feedback", order.StatusWaitingFeedback),
		ord("done", order.StatusFinished),
		ord("gone", order.StatusCancelled),
	}

	cases := []struct {
		filter StatusFilter
		want   []string
	}{
		{FilterReady, []string{"ready"}},
		{FilterInTransit, []string{"transit"}},
		{FilterPendingApproval, []string{"pending"}},
		{FilterNeedsRevision, []string{"revision"}},
		{FilterDelivery, []string{"pending", "revision", "ready", "transit"}},
		{FilterAll, []string{"queued", "kitchen", "pending", "revision", "ready", "transit", "feedback"}},
		// unknown keys fall back to the delivery union
		{StatusFilter("nonsense"), []string{"pending", "revision", "ready", "transit"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.filter), func(t *testing.T) {
			got := ids(FilterByStatus(orders, tc.filter))
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

// The delivery view is exactly the union of the four single-status views.
func TestDeliveryFilterIsUnion(t *testing.T) {
	var orders []*order.Order
	for i, s := range order.AllStatuses() {
		orders = append(orders, ord(string(rune('a'+i)), s))
	}

	union := map[string]bool{}
	for _, f := range []StatusFilter{FilterReady, FilterInTransit, FilterPendingApproval, FilterNeedsRevision} {
		for _, o := range FilterByStatus(orders, f) {
			union[string(o.ID)] = true
		}
	}

	delivery := FilterByStatus(orders, FilterDelivery)
	if len(delivery) != len(union) {
		t.Fatalf("delivery view has %d orders, union of single views has %d", len(delivery), len(union))
	}
	for _, o := range delivery {
		if !union[string(o.ID)] {
			t.Fatalf("order %s in delivery view but in no single view", o.ID)
		}
	}
}

func TestFilterByDate(t *testing.T) {
	today := ord("today", order.StatusReadyToDeliver)
	tomorrow := ord("tomorrow", order.StatusReadyToDeliver)
	tomorrow.DeliveryDate = day(1)
	later := ord("later", order.StatusReadyToDeliver)
	later.DeliveryDate = day(5)
	orders := []*order.Order{today, tomorrow, later}

	got := ids(FilterByDate(orders, DateToday, refNow))
	if len(got) != 1 || got[0] != "today" {
		t.Fatalf("today filter: got %v", got)
	}
	got = ids(FilterByDate(orders, DateTomorrow, refNow))
	if len(got) != 1 || got[0] != "tomorrow" {
		t.Fatalf("tomorrow filter: got %v", got)
	}
	if got := FilterByDate(orders, DateAll, refNow); len(got) != 3 {
		t.Fatalf("all filter: got %d orders", len(got))
	}
	if got := FilterByDate(orders, "", refNow); len(got) != 3 {
		t.Fatalf("empty filter: got %d orders", len(got))
	}
}

func TestFilterByTimeSlot(t *testing.T) {
	slot1, slot3 := order.Slot1, order.Slot3
	urgent := ord("urgent", order.StatusReadyToDeliver)
	urgent.DeliverySlot = &slot1
	relaxed := ord("relaxed", order.StatusReadyToDeliver)
	relaxed.DeliverySlot = &slot3
	unslotted := ord("unslotted", order.StatusReadyToDeliver)
	orders := []*order.Order{urgent, relaxed, unslotted}

	// refNow 11:30: slot1 is within-2-hours, slot3 still plain.
	got := ids(FilterByTimeSlot(orders, SlotWithin2h, refNow))
	if len(got) != 1 || got[0] != "urgent" {
		t.Fatalf("within-2-hours filter: got %v", got)
	}
	got = ids(FilterByTimeSlot(orders, SlotBucket(order.Slot3), refNow))
	if len(got) != 1 || got[0] != "relaxed" {
		t.Fatalf("slot3 filter: got %v", got)
	}
	// slot-specific views never include unslotted orders
	for _, b := range []SlotBucket{SlotLate, SlotWithin2h, SlotBucket(order.Slot1)} {
		for _, o := range FilterByTimeSlot(orders, b, refNow) {
			if o.ID == "unslotted" {
				t.Fatalf("unslotted order leaked into %s view", b)
			}
		}
	}
	if got := FilterByTimeSlot(orders, "", refNow); len(got) != 3 {
		t.Fatalf("empty slot filter: got %d orders", len(got))
	}
}

// Filters compose order-independently.
func TestFilterComposition(t *testing.T) {
	slot1 := order.Slot1
	a := ord("a", order.StatusReadyToDeliver)
	a.DeliverySlot = &slot1
	b := ord("b", order.StatusInQueue)
	b.DeliverySlot = &slot1
	c := ord("c", order.StatusReadyToDeliver)
	c.DeliveryDate = day(4)
	c.DeliverySlot = &slot1
	orders := []*order.Order{a, b, c}

	now := refNow
	apply := func(statusFirst bool) []string {
		set := orders
		if statusFirst {
			set = FilterByStatus(set, FilterReady)
			set = FilterByDate(set, DateToday, now)
		} else {
			set = FilterByDate(set, DateToday, now)
			set = FilterByStatus(set, FilterReady)
		}
		return ids(FilterByTimeSlot(set, SlotWithin2h, now))
	}

	first, second := apply(true), apply(false)
	if len(first) != 1 || first[0] != "a" {
		t.Fatalf("composed filter: got %v", first)
	}
	if len(second) != len(first) || second[0] != first[0] {
		t.Fatalf("filter order changed the result: %v vs %v", first, second)
	}
}
