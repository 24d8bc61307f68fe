// README: Trip engine tests; numbering, membership, and pre-assignment.
package trip

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cakeline/internal/modules/order"
	"cakeline/internal/types"
)

func TestTripName(t *testing.T) {
	cases := []struct {
		display string
		number  int
		want    string
	}{
		{"Driver 1", 1, "Driver 1 Trip #1"},
		{"Driver 1", 2, "Driver 1 Trip #2"},
		{"Helper 1", 17, "Helper 1 Trip #17"},
	}
	for _, tc := range cases {
		if got := Name(tc.display, tc.number); got != tc.want {
			t.Errorf("Name(%q, %d) = %q, want %q", tc.display, tc.number, got, tc.want)
		}
	}
}

func TestStatusBreakdown(t *testing.T) {
	orders := []*order.Order{
		{ID: "a", Status: order.StatusReadyToDeliver},
		{ID: "b", Status: order.StatusReadyToDeliver},
		{ID: "c", Status: order.StatusInKitchen},
		{ID: "d", Status: order.StatusPendingApproval},
	}
	counts, hasNonReady := StatusBreakdown(orders)
	if !hasNonReady {
		t.Fatal("expected hasNonReady for mixed selection")
	}
	if counts[order.StatusReadyToDeliver] != 2 || counts[order.StatusInKitchen] != 1 || counts[order.StatusPendingApproval] != 1 {
		t.Fatalf("unexpected breakdown: %v", counts)
	}

	counts, hasNonReady = StatusBreakdown(orders[:2])
	if hasNonReady {
		t.Fatal("all-ready selection must not report hasNonReady")
	}
	if counts[order.StatusReadyToDeliver] != 2 {
		t.Fatalf("unexpected breakdown: %v", counts)
	}

	if counts, hasNonReady = StatusBreakdown(nil); len(counts) != 0 || hasNonReady {
		t.Fatalf("empty selection: got %v, %v", counts, hasNonReady)
	}
}

func TestTripOpen(t *testing.T) {
	if !(&Trip{Status: StatusPlanned}).Open() {
		t.Fatal("planned trip must be open")
	}
	if (&Trip{Status: StatusDeparted}).Open() {
		t.Fatal("departed trip must be closed")
	}
	if (&Trip{Status: StatusCompleted}).Open() {
		t.Fatal("completed trip must be closed")
	}
}

func TestTripNumbering(t *testing.T) {
	svc, _ := setupTestTrip(t)
	ctx := context.Background()
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	first, err := svc.Create(ctx, CreateCommand{DriverType: "driver-1", TripDate: date})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, CreateCommand{DriverType: "driver-1", TripDate: date})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.TripNumber != 1 || second.TripNumber != 2 {
		t.Fatalf("expected trip numbers 1 and 2, got %d and %d", first.TripNumber, second.TripNumber)
	}
	if first.Name != "Driver 1 Trip #1" || second.Name != "Driver 1 Trip #2" {
		t.Fatalf("unexpected trip names: %q, %q", first.Name, second.Name)
	}

	// Another driver and another day both start from 1 again.
	other, err := svc.Create(ctx, CreateCommand{DriverType: "driver-2", TripDate: date})
	if err != nil {
		t.Fatalf("create other driver: %v", err)
	}
	if other.TripNumber != 1 {
		t.Fatalf("expected other driver to start at 1, got %d", other.TripNumber)
	}
	nextDay, err := svc.Create(ctx, CreateCommand{DriverType: "driver-1", TripDate: date.AddDate(0, 0, 1)})
	if err != nil {
		t.Fatalf("create next day: %v", err)
	}
	if nextDay.TripNumber != 1 {
		t.Fatalf("expected next day to start at 1, got %d", nextDay.TripNumber)
	}

	trips, err := svc.ListByDriverAndDate(ctx, "driver-1", date)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(trips) != 2 {
		t.Fatalf("expected 2 trips for driver-1 on %s, got %d", date.Format("2006-01-02"), len(trips))
	}
}

func TestConcurrentTripCreate(t *testing.T) {
	svc, _ := setupTestTrip(t)
	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	const attempts = 4
	var wg sync.WaitGroup
	results := make(chan *Trip, attempts)
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr, err := svc.Create(ctx, CreateCommand{DriverType: "driver-1", TripDate: date})
			if err != nil {
				errs <- err
				return
			}
			results <- tr
		}()
	}

	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent create failed: %v", err)
	}

	seen := map[int]bool{}
	for tr := range results {
		if seen[tr.TripNumber] {
			t.Fatalf("duplicate trip number %d", tr.TripNumber)
		}
		seen[tr.TripNumber] = true
	}
	if len(seen) != attempts {
		t.Fatalf("expected %d distinct trip numbers, got %d", attempts, len(seen))
	}
}

func TestAddOrderAssignsDriver(t *testing.T) {
	svc, orders := setupTestTrip(t)
	ctx := context.Background()

	tr, err := svc.Create(ctx, CreateCommand{DriverType: "driver-1", TripDate: time.Now()})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}

	// Not-yet-ready order: preliminary assignment.
	queuedID := mustCreateTripOrder(t, orders, "Mara")
	if err := svc.AddOrder(ctx, tr.ID, queuedID, "Dispatcher"); err != nil {
		t.Fatalf("add queued order: %v", err)
	}
	o, err := orders.Get(ctx, queuedID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.Status != order.StatusInQueue {
		t.Fatalf("adding to a trip must not change status, got %s", o.Status)
	}
	if o.Assignment == nil || !o.Assignment.Preliminary {
		t.Fatalf("expected preliminary assignment, got %+v", o.Assignment)
	}
	if o.Assignment.DriverType != "driver-1" || o.Assignment.VehicleInfo != "Van AB-1234" {
		t.Fatalf("unexpected assignment: %+v", o.Assignment)
	}

	// Ready order: confirmed assignment.
	readyID := mustReadyOrder(t, orders, "Nils")
	if err := svc.AddOrder(ctx, tr.ID, readyID, "Dispatcher"); err != nil {
		t.Fatalf("add ready order: %v", err)
	}
	o, err = orders.Get(ctx, readyID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.Assignment == nil || o.Assignment.Preliminary {
		t.Fatalf("expected confirmed assignment on ready order, got %+v", o.Assignment)
	}

	got, err := svc.Get(ctx, tr.ID)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if len(got.OrderIDs) != 2 {
		t.Fatalf("expected 2 orders on trip, got %d", len(got.OrderIDs))
	}

	// Duplicate add is absorbed.
	if err := svc.AddOrder(ctx, tr.ID, queuedID, "Dispatcher"); err != nil {
		t.Fatalf("duplicate add: %v", err)
	}
	got, err = svc.Get(ctx, tr.ID)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if len(got.OrderIDs) != 2 {
		t.Fatalf("duplicate add changed membership: %d orders", len(got.OrderIDs))
	}
}

func TestAddOrderTerminalRejected(t *testing.T) {
	svc, orders := setupTestTrip(t)
	ctx := context.Background()

	tr, err := svc.Create(ctx, CreateCommand{DriverType: "driver-1", TripDate: time.Now()})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	cancelledID := mustCreateTripOrder(t, orders, "Olga")
	if err := orders.Cancel(ctx, order.TransitionCommand{OrderID: cancelledID}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	err = svc.AddOrder(ctx, tr.ID, cancelledID, "Dispatcher")
	if !errors.Is(err, order.ErrInvalidState) {
		t.Fatalf("add cancelled order: expected ErrInvalidState, got %v", err)
	}
	got, err := svc.Get(ctx, tr.ID)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if len(got.OrderIDs) != 0 {
		t.Fatalf("rejected order must not join the trip, got %v", got.OrderIDs)
	}
}

func TestRemoveOrderKeepsAssignment(t *testing.T) {
	svc, orders := setupTestTrip(t)
	ctx := context.Background()

	tr, err := svc.Create(ctx, CreateCommand{DriverType: "driver-1", TripDate: time.Now()})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	orderID := mustCreateTripOrder(t, orders, "Pia")
	if err := svc.AddOrder(ctx, tr.ID, orderID, "Dispatcher"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.RemoveOrder(ctx, tr.ID, orderID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	got, err := svc.Get(ctx, tr.ID)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if len(got.OrderIDs) != 0 {
		t.Fatalf("expected empty membership after remove, got %v", got.OrderIDs)
	}
	o, err := orders.Get(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.Assignment == nil {
		t.Fatal("removing from a trip must not clear the delivery assignment")
	}
}

func TestCreateFromOrders(t *testing.T) {
	svc, orders := setupTestTrip(t)
	ctx := context.Background()

	readyID := mustReadyOrder(t, orders, "Quinn")
	queuedID := mustCreateTripOrder(t, orders, "Rosa")
	cancelledID := mustCreateTripOrder(t, orders, "Sven")
	if err := orders.Cancel(ctx, order.TransitionCommand{OrderID: cancelledID}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	res, err := svc.CreateFromOrders(ctx, BulkCreateCommand{
		DriverType: "driver-1",
		TripDate:   time.Now(),
		OrderIDs:   []types.ID{readyID, queuedID, cancelledID},
		Actor:      "Dispatcher",
	})
	if err != nil {
		t.Fatalf("bulk create: %v", err)
	}

	if !res.HasNonReady {
		t.Fatal("expected HasNonReady for mixed selection")
	}
	if res.Breakdown[order.StatusReadyToDeliver] != 1 ||
		res.Breakdown[order.StatusInQueue] != 1 ||
		res.Breakdown[order.StatusCancelled] != 1 {
		t.Fatalf("unexpected breakdown: %v", res.Breakdown)
	}
	if len(res.SkippedOrderIDs) != 1 || res.SkippedOrderIDs[0] != cancelledID {
		t.Fatalf("expected cancelled order to be skipped, got %v", res.SkippedOrderIDs)
	}
	if len(res.AssignWarnings) != 0 {
		t.Fatalf("unexpected assign warnings: %v", res.AssignWarnings)
	}
	if len(res.Trip.OrderIDs) != 2 {
		t.Fatalf("expected 2 orders on the trip, got %v", res.Trip.OrderIDs)
	}
	if res.Trip.Name != "Driver 1 Trip #1" {
		t.Fatalf("unexpected trip name: %q", res.Trip.Name)
	}
}

func TestCreateFromOrdersEmpty(t *testing.T) {
	svc, _ := setupTestTrip(t)
	_, err := svc.CreateFromOrders(context.Background(), BulkCreateCommand{
		DriverType: "driver-1",
		TripDate:   time.Now(),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty selection, got %v", err)
	}
}

func TestDepartClosesTrip(t *testing.T) {
	svc, orders := setupTestTrip(t)
	ctx := context.Background()

	tr, err := svc.Create(ctx, CreateCommand{DriverType: "driver-1", TripDate: time.Now()})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	if err := svc.Depart(ctx, tr.ID); err != nil {
		t.Fatalf("depart: %v", err)
	}

	got, err := svc.Get(ctx, tr.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusDeparted || got.DepartureTime == nil {
		t.Fatalf("expected departed trip with departure time, got %+v", got)
	}

	orderID := mustCreateTripOrder(t, orders, "Tove")
	if err := svc.AddOrder(ctx, tr.ID, orderID, "Dispatcher"); !errors.Is(err, ErrClosed) {
		t.Fatalf("add to departed trip: expected ErrClosed, got %v", err)
	}
	if err := svc.Depart(ctx, tr.ID); !errors.Is(err, ErrClosed) {
		t.Fatalf("second depart: expected ErrClosed, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := setupTestTrip(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateCommand{TripDate: time.Now()}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing driver type: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateCommand{DriverType: "driver-1"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing trip date: expected ErrValidation, got %v", err)
	}
}

// fakeDrivers is an in-memory DriverCatalog for tests.
type fakeDrivers struct{}

var fakeDriverTable = map[string][2]string{
	"driver-1": {"Driver 1", "Van AB-1234"},
	"driver-2": {"Driver 2", "Van CD-5678"},
}

func (fakeDrivers) DriverDisplayName(_ context.Context, driverType string) (string, error) {
	d, ok := fakeDriverTable[driverType]
	if !ok {
		return "", fmt.Errorf("unknown driver %s", driverType)
	}
	return d[0], nil
}

func (fakeDrivers) DriverVehicle(_ context.Context, driverType string) (string, error) {
	d, ok := fakeDriverTable[driverType]
	if !ok {
		return "", fmt.Errorf("unknown driver %s", driverType)
	}
	return d[1], nil
}

func mustCreateTripOrder(t *testing.T, orders *order.Service, customer string) types.ID {
	t.Helper()
	id, err := orders.Create(context.Background(), order.CreateCommand{
		CustomerName:    customer,
		CakeDescription: "test cake",
		DeliveryDate:    time.Now(),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return id
}

func mustReadyOrder(t *testing.T, orders *order.Service, customer string) types.ID {
	t.Helper()
	ctx := context.Background()
	id := mustCreateTripOrder(t, orders, customer)
	if err := orders.SetKitchenStatus(ctx, order.SetKitchenStatusCommand{OrderID: id, Kitchen: order.KitchenDecorating}); err != nil {
		t.Fatalf("set kitchen: %v", err)
	}
	if err := orders.SetKitchenStatus(ctx, order.SetKitchenStatusCommand{OrderID: id, Kitchen: order.KitchenDoneWaitingApproval}); err != nil {
		t.Fatalf("set kitchen done: %v", err)
	}
	if err := orders.SubmitPhotos(ctx, order.SubmitPhotosCommand{OrderID: id, Photos: []string{"https://img/done.jpg"}}); err != nil {
		t.Fatalf("submit photos: %v", err)
	}
	if _, err := orders.Approve(ctx, order.ApproveCommand{OrderID: id}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	return id
}

func setupTestTrip(t *testing.T) (*Service, *order.Service) {
	t.Helper()

	dsn := os.Getenv("CAKELINE_TEST_DSN")
	if dsn == "" {
		t.Skip("CAKELINE_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE trip_orders, trips, order_revisions, order_logs, orders CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	orders := order.NewService(order.NewStore(db), nil, nil)
	svc := NewService(NewStore(db), orders, fakeDrivers{}, Config{CreateRetries: 10})
	return svc, orders
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	path := filepath.Join(root, "migrations", "0001_init.sql")
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cleaned := stripSQLComments(string(content))
	for _, stmt := range splitSQL(cleaned) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
