// README: Trip service; trip creation, membership, and driver pre-assignment.
package trip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cakeline/internal/modules/order"
	"cakeline/internal/types"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("trip not found")
	ErrClosed      = errors.New("trip no longer accepts changes")
	ErrNumberTaken = errors.New("trip number already taken")
)

// DriverCatalog resolves driver display names and vehicles; read-only
// settings collaborator.
type DriverCatalog interface {
	DriverDisplayName(ctx context.Context, driverType string) (string, error)
	DriverVehicle(ctx context.Context, driverType string) (string, error)
}

// Orders is the order-side access the trip engine needs: reads plus the
// quick-assign operation that marks assignments preliminary.
type Orders interface {
	Get(ctx context.Context, id types.ID) (*order.Order, error)
	AssignDriver(ctx context.Context, cmd order.AssignDriverCommand) error
}

type Config struct {
	// ExclusiveMembership removes an order from other open trips when it is
	// added to a new one. Off by default: multi-trip membership may be
	// intentional (split deliveries).
	ExclusiveMembership bool
	// CreateRetries bounds the unique-constraint retry loop for trip
	// numbering.
	CreateRetries int
}

type Service struct {
	store   *Store
	orders  Orders
	drivers DriverCatalog
	cfg     Config
}

func NewService(store *Store, orders Orders, drivers DriverCatalog, cfg Config) *Service {
	if cfg.CreateRetries <= 0 {
		cfg.CreateRetries = 3
	}
	return &Service{store: store, orders: orders, drivers: drivers, cfg: cfg}
}

type CreateCommand struct {
	DriverType    string
	TripDate      time.Time
	DepartureTime *time.Time
}

// Create allocates the next trip number for the driver/date pair and names
// the trip "{DriverDisplayName} Trip #{n}".
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Trip, error) {
	if cmd.DriverType == "" {
		return nil, fmt.Errorf("%w: driver type required", ErrValidation)
	}
	if cmd.TripDate.IsZero() {
		return nil, fmt.Errorf("%w: trip date required", ErrValidation)
	}
	display, err := s.drivers.DriverDisplayName(ctx, cmd.DriverType)
	if err != nil {
		return nil, err
	}

	date := types.Day(cmd.TripDate)
	for attempt := 0; attempt < s.cfg.CreateRetries; attempt++ {
		n, err := s.store.CountForDriverAndDate(ctx, cmd.DriverType, date)
		if err != nil {
			return nil, err
		}
		t := &Trip{
			ID:            types.ID(uuid.NewString()),
			DriverType:    cmd.DriverType,
			TripDate:      date,
			TripNumber:    n + 1,
			Name:          Name(display, n+1),
			DepartureTime: cmd.DepartureTime,
			Status:        StatusPlanned,
			CreatedAt:     time.Now(),
		}
		err = s.store.Create(ctx, t)
		if errors.Is(err, ErrNumberTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, ErrNumberTaken
}

// AddOrder batches an order into the trip and quick-assigns the trip's
// driver to it. Adding never changes the order's status; a not-yet-ready
// order gets a preliminary assignment that the approval cycle promotes.
func (s *Service) AddOrder(ctx context.Context, tripID, orderID types.ID, actor string) error {
	t, err := s.store.Get(ctx, tripID)
	if err != nil {
		return err
	}
	if !t.Open() {
		return ErrClosed
	}
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	eligible := o.Status == order.StatusReadyToDeliver ||
		o.Status == order.StatusInDelivery || order.PreAssignable(o.Status)
	if !eligible {
		return fmt.Errorf("%w: cannot batch order while %s", order.ErrInvalidState, o.Status)
	}
	if err := s.store.AddOrder(ctx, tripID, orderID); err != nil {
		return err
	}
	if s.cfg.ExclusiveMembership {
		if err := s.store.RemoveFromOpenTrips(ctx, orderID, tripID); err != nil {
			return err
		}
	}
	vehicle, _ := s.drivers.DriverVehicle(ctx, t.DriverType)
	return s.orders.AssignDriver(ctx, order.AssignDriverCommand{
		OrderID:     orderID,
		DriverType:  t.DriverType,
		VehicleInfo: vehicle,
		Actor:       actor,
	})
}

// RemoveOrder clears trip membership only. The order's delivery assignment
// stays untouched; unassigning a driver is a separate operation.
func (s *Service) RemoveOrder(ctx context.Context, tripID, orderID types.ID) error {
	if _, err := s.store.Get(ctx, tripID); err != nil {
		return err
	}
	return s.store.RemoveOrder(ctx, tripID, orderID)
}

type BulkCreateCommand struct {
	DriverType    string
	TripDate      time.Time
	OrderIDs      []types.ID
	Actor         string
	DepartureTime *time.Time
}

// BulkResult reports the created trip plus the ready/not-ready mix of the
// selection so the caller can warn the user. A mixed selection is reported,
// never blocked.
type BulkResult struct {
	Trip            *Trip
	Breakdown       map[order.Status]int
	HasNonReady     bool
	SkippedOrderIDs []types.ID
	AssignWarnings  []string
}

// CreateFromOrders builds a trip from a multi-select of orders. Orders in a
// state that cannot take an assignment (terminal ones) are skipped and
// reported, not fatal.
func (s *Service) CreateFromOrders(ctx context.Context, cmd BulkCreateCommand) (*BulkResult, error) {
	if len(cmd.OrderIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one order required", ErrValidation)
	}

	selected := make([]*order.Order, 0, len(cmd.OrderIDs))
	for _, id := range cmd.OrderIDs {
		o, err := s.orders.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		selected = append(selected, o)
	}
	breakdown, hasNonReady := StatusBreakdown(selected)

	t, err := s.Create(ctx, CreateCommand{
		DriverType:    cmd.DriverType,
		TripDate:      cmd.TripDate,
		DepartureTime: cmd.DepartureTime,
	})
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Trip: t, Breakdown: breakdown, HasNonReady: hasNonReady}
	for _, o := range selected {
		if err := s.AddOrder(ctx, t.ID, o.ID, cmd.Actor); err != nil {
			if errors.Is(err, order.ErrInvalidState) {
				res.SkippedOrderIDs = append(res.SkippedOrderIDs, o.ID)
				continue
			}
			res.AssignWarnings = append(res.AssignWarnings, fmt.Sprintf("order %s: %v", o.ID, err))
		}
	}
	t.OrderIDs, err = s.store.listOrderIDs(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Depart marks the trip departed.
func (s *Service) Depart(ctx context.Context, tripID types.ID) error {
	ok, err := s.store.SetDeparted(ctx, tripID, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		if _, err := s.store.Get(ctx, tripID); err != nil {
			return err
		}
		return ErrClosed
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Trip, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByDriverAndDate(ctx context.Context, driverType string, date time.Time) ([]*Trip, error) {
	return s.store.ListByDriverAndDate(ctx, driverType, types.Day(date))
}
