// README: Trip store backed by PostgreSQL; serialized trip numbering via unique constraint.
package trip

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cakeline/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const uniqueViolation = "23505"

// CountForDriverAndDate returns how many trips the driver already has on
// the given day; the next trip number is count+1.
func (s *Store) CountForDriverAndDate(ctx context.Context, driverType string, date time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM trips WHERE driver_type = $1 AND trip_date = $2`,
		driverType, date).Scan(&n)
	return n, err
}

// Create inserts the trip with its pre-computed trip number. Two
// simultaneous creations can race to the same number; the unique constraint
// on (driver_type, trip_date, trip_number) rejects one and the caller
// retries with a fresh count.
func (s *Store) Create(ctx context.Context, t *Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trips (id, driver_type, trip_date, trip_number, name, departure_time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(t.ID), t.DriverType, t.TripDate, t.TripNumber, t.Name,
		t.DepartureTime, string(t.Status), t.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrNumberTaken
		}
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Trip, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, driver_type, trip_date, trip_number, name, departure_time, status, created_at
		FROM trips WHERE id = $1`, string(id))
	t, err := scanTrip(row)
	if err != nil {
		return nil, err
	}
	t.OrderIDs, err = s.listOrderIDs(ctx, t.ID)
	return t, err
}

func (s *Store) ListByDriverAndDate(ctx context.Context, driverType string, date time.Time) ([]*Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, driver_type, trip_date, trip_number, name, departure_time, status, created_at
		FROM trips
		WHERE driver_type = $1 AND trip_date = $2
		ORDER BY trip_number`, driverType, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, t := range out {
		if t.OrderIDs, err = s.listOrderIDs(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AddOrder adds the order to the trip's membership set. Duplicates are
// absorbed by the primary key, keeping the set duplicate-free.
func (s *Store) AddOrder(ctx context.Context, tripID, orderID types.ID) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trip_orders (trip_id, order_id, added_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (trip_id, order_id) DO NOTHING`,
		string(tripID), string(orderID))
	return err
}

func (s *Store) RemoveOrder(ctx context.Context, tripID, orderID types.ID) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM trip_orders WHERE trip_id = $1 AND order_id = $2`,
		string(tripID), string(orderID))
	return err
}

// RemoveFromOpenTrips drops the order from every non-terminal trip except
// the given one. Used when single-trip membership exclusivity is enabled.
func (s *Store) RemoveFromOpenTrips(ctx context.Context, orderID, exceptTripID types.ID) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM trip_orders
		USING trips
		WHERE trip_orders.trip_id = trips.id
		  AND trip_orders.order_id = $1
		  AND trips.id <> $2
		  AND trips.status = 'planned'`,
		string(orderID), string(exceptTripID))
	return err
}

// SetDeparted marks the trip departed; only a planned trip can depart.
func (s *Store) SetDeparted(ctx context.Context, id types.ID, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips SET status = 'departed', departure_time = $1
		WHERE id = $2 AND status = 'planned'`, at, string(id))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) listOrderIDs(ctx context.Context, tripID types.ID) ([]types.ID, error) {
	rows, err := s.db.Query(ctx, `
		SELECT order_id FROM trip_orders WHERE trip_id = $1 ORDER BY added_at`,
		string(tripID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.ID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, types.ID(id))
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*Trip, error) {
	var t Trip
	err := row.Scan(&t.ID, &t.DriverType, &t.TripDate, &t.TripNumber,
		&t.Name, &t.DepartureTime, &t.Status, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
