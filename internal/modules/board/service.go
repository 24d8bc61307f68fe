// README: Board service; read-side delivery/kitchen views with a cached summary.
package board

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"cakeline/internal/modules/order"
)

// Lister is the order read access the boards need.
type Lister interface {
	List(ctx context.Context, statuses []order.Status, closedHidden bool) ([]*order.Order, error)
}

type Service struct {
	orders     Lister
	redis      *redis.Client
	summaryTTL time.Duration
}

func NewService(orders Lister, rdb *redis.Client, summaryTTL time.Duration) *Service {
	return &Service{orders: orders, redis: rdb, summaryTTL: summaryTTL}
}

// Entry is one row on the delivery board with its recomputed urgency tags.
type Entry struct {
	Order         *order.Order
	DateBucket    DateBucket
	SlotBucket    SlotBucket
	RevisionLabel string
}

// DeliveryBoard lists orders through the composed status/date/slot filters.
// Filters are order-independent; applying them in sequence is equivalent to
// intersecting their predicates.
func (s *Service) DeliveryBoard(ctx context.Context, status StatusFilter, date DateBucket, slot SlotBucket, now time.Time) ([]Entry, error) {
	orders, err := s.orders.List(ctx, nil, false)
	if err != nil {
		return nil, err
	}
	orders = FilterByStatus(orders, status)
	orders = FilterByDate(orders, date, now)
	orders = FilterByTimeSlot(orders, slot, now)

	entries := make([]Entry, 0, len(orders))
	for _, o := range orders {
		e := Entry{
			Order:         o,
			DateBucket:    ClassifyDate(o.DeliveryDate, now),
			RevisionLabel: order.RevisionLabel(o.Status, o.RevisionCount),
		}
		if o.DeliverySlot != nil {
			e.SlotBucket = ClassifySlot(*o.DeliverySlot, o.DeliveryDate, now)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// KitchenBoard groups open production orders by derived kitchen stage.
func (s *Service) KitchenBoard(ctx context.Context) (map[order.KitchenStatus][]*order.Order, error) {
	orders, err := s.orders.List(ctx, []order.Status{
		order.StatusInQueue, order.StatusInKitchen, order.StatusWaitingPhoto,
	}, false)
	if err != nil {
		return nil, err
	}
	out := make(map[order.KitchenStatus][]*order.Order)
	for _, ks := range order.AllKitchenStatuses() {
		out[ks] = nil
	}
	for _, o := range orders {
		ks := order.DeriveKitchenStatus(o)
		out[ks] = append(out[ks], o)
	}
	return out, nil
}

// Summary holds the dashboard counters.
type Summary struct {
	ByStatusFilter map[StatusFilter]int `json:"by_status_filter"`
	ByDateBucket   map[DateBucket]int   `json:"by_date_bucket"`
	Late           int                  `json:"late"`
	Within2h       int                  `json:"within_2_hours"`
	ComputedAt     time.Time            `json:"computed_at"`
}

const summaryCacheKey = "board:summary"

// Summary computes the dashboard counters, served from a short-TTL Redis
// cache. Slot urgency depends on "now", so the TTL stays short and the
// cached copy carries its computation time.
func (s *Service) Summary(ctx context.Context, now time.Time) (Summary, error) {
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, summaryCacheKey).Result(); err == nil {
			var cached Summary
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	orders, err := s.orders.List(ctx, nil, false)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		ByStatusFilter: make(map[StatusFilter]int),
		ByDateBucket:   make(map[DateBucket]int),
		ComputedAt:     now,
	}
	for _, f := range []StatusFilter{FilterReady, FilterInTransit, FilterPendingApproval, FilterNeedsRevision, FilterDelivery, FilterAll} {
		sum.ByStatusFilter[f] = len(FilterByStatus(orders, f))
	}
	for _, o := range FilterByStatus(orders, FilterAll) {
		sum.ByDateBucket[ClassifyDate(o.DeliveryDate, now)]++
		if o.DeliverySlot == nil {
			continue
		}
		switch ClassifySlot(*o.DeliverySlot, o.DeliveryDate, now) {
		case SlotLate:
			sum.Late++
		case SlotWithin2h:
			sum.Within2h++
		}
	}

	if s.redis != nil && s.summaryTTL > 0 {
		if raw, err := json.Marshal(sum); err == nil {
			s.redis.Set(ctx, summaryCacheKey, raw, s.summaryTTL)
		}
	}
	return sum, nil
}
