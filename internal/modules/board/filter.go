// README: Delivery-board filters; composable status/date/slot predicates.
package board

import (
	"time"

	"cakeline/internal/modules/order"
)

// StatusFilter selects which operational view of the orders to show.
type StatusFilter string

const (
	FilterReady           StatusFilter = "ready"
	FilterInTransit       StatusFilter = "in-transit"
	FilterPendingApproval StatusFilter = "pending-approval"
	FilterNeedsRevision   StatusFilter = "needs-revision"
	FilterDelivery        StatusFilter = "delivery-statuses"
	FilterAll             StatusFilter = "all-statuses"
)

// FilterByStatus applies a status view. An unknown filter key falls back to
// the delivery-statuses union rather than hiding everything.
func FilterByStatus(orders []*order.Order, f StatusFilter) []*order.Order {
	pred := statusPredicate(f)
	out := make([]*order.Order, 0, len(orders))
	for _, o := range orders {
		if pred(o.Status) {
			out = append(out, o)
		}
	}
	return out
}

func statusPredicate(f StatusFilter) func(order.Status) bool {
	switch f {
	case FilterReady:
		return func(s order.Status) bool { return order.Matches(s, "ready") }
	case FilterInTransit:
		return func(s order.Status) bool { return order.Matches(s, string(order.StatusInDelivery)) }
	case FilterPendingApproval:
		return func(s order.Status) bool { return s == order.StatusPendingApproval }
	case FilterNeedsRevision:
		return func(s order.Status) bool { return s == order.StatusNeedsRevision }
	case FilterAll:
		return func(s order.Status) bool {
			return s != order.StatusCancelled && s != order.StatusFinished && s != order.StatusArchived
		}
	default:
		// delivery-statuses, also the fallback for unrecognized keys
		return func(s order.Status) bool {
			return s == order.StatusReadyToDeliver || s == order.StatusInDelivery ||
				s == order.StatusPendingApproval || s == order.StatusNeedsRevision
		}
	}
}

// FilterByDate keeps orders whose delivery date falls in the given bucket.
func FilterByDate(orders []*order.Order, bucket DateBucket, now time.Time) []*order.Order {
	if bucket == DateAll || bucket == "" {
		return orders
	}
	out := make([]*order.Order, 0, len(orders))
	for _, o := range orders {
		if ClassifyDate(o.DeliveryDate, now) == bucket {
			out = append(out, o)
		}
	}
	return out
}

// FilterByTimeSlot keeps orders whose slot urgency matches the given bucket.
// Orders without a slot are excluded from any slot-specific view.
func FilterByTimeSlot(orders []*order.Order, bucket SlotBucket, now time.Time) []*order.Order {
	if bucket == "" {
		return orders
	}
	out := make([]*order.Order, 0, len(orders))
	for _, o := range orders {
		if o.DeliverySlot == nil {
			continue
		}
		if ClassifySlot(*o.DeliverySlot, o.DeliveryDate, now) == bucket {
			out = append(out, o)
		}
	}
	return out
}
