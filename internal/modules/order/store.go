// README: Order store backed by PostgreSQL; CAS status updates and append-only logs.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cakeline/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const orderColumns = `
	id, customer_name, cake_description, status, status_version, kitchen_status,
	delivery_date, delivery_slot, revision_count, finished_photos,
	driver_type, assignment_preliminary, assigned_at, vehicle_info,
	created_at, updated_at`

func (s *Store) Create(ctx context.Context, o *Order, log *LogEntry) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (
				id, customer_name, cake_description, status, status_version,
				delivery_date, delivery_slot, revision_count,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
			string(o.ID), o.CustomerName, o.CakeDescription,
			string(o.Status), o.StatusVersion,
			o.DeliveryDate, slotPtr(o.DeliverySlot),
			o.RevisionCount, o.CreatedAt,
		)
		if err != nil {
			return err
		}
		return appendLog(ctx, tx, log)
	})
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, string(id))
	return scanOrder(row)
}

// List returns orders, optionally restricted to a status set. closedHidden
// drops cancelled/finished/archived, the default for operational boards.
func (s *Store) List(ctx context.Context, statuses []Status, closedHidden bool) ([]*Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	switch {
	case len(statuses) > 0:
		set := make([]string, len(statuses))
		for i, st := range statuses {
			set[i] = string(st)
		}
		q += ` WHERE status = ANY($1)`
		args = append(args, set)
	case closedHidden:
		q += ` WHERE status NOT IN ('cancelled', 'finished', 'archived')`
	}
	q += ` ORDER BY delivery_date, created_at`

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// transitionEffect carries the column writes that ride along with a CAS
// status update. All writes and the log append commit atomically; a stale
// (status, status_version) precondition makes the whole transition a no-op.
type transitionEffect struct {
	setPhotos      []string
	setKitchen     *KitchenStatus
	bumpRevision   bool
	revision       *Revision
	clearedKitchen bool
}

// UpdateStatus performs the guarded read-modify-write for a status
// transition. The promotion rule lives here: entering ready-to-deliver
// flips a preliminary assignment to confirmed in the same UPDATE, so an
// order can never be ready while still marked preliminary.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, eff transitionEffect, log *LogEntry) (bool, error) {
	applied := false
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders
			SET status = $1,
			    status_version = status_version + 1,
			    updated_at = NOW(),
			    assignment_preliminary = CASE
			        WHEN $1 = 'ready-to-deliver' AND driver_type IS NOT NULL THEN FALSE
			        ELSE assignment_preliminary
			    END,
			    finished_photos = COALESCE($2, finished_photos),
			    kitchen_status = CASE WHEN $3 THEN $4 ELSE kitchen_status END,
			    revision_count = revision_count + CASE WHEN $5 THEN 1 ELSE 0 END
			WHERE id = $6 AND status = $7 AND status_version = $8`,
			string(to),
			eff.setPhotos,
			eff.setKitchen != nil || eff.clearedKitchen,
			kitchenPtr(eff.setKitchen),
			eff.bumpRevision,
			string(id),
			string(from),
			version,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return nil
		}
		applied = true
		if eff.revision != nil {
			if err := appendRevision(ctx, tx, eff.revision); err != nil {
				return err
			}
		}
		return appendLog(ctx, tx, log)
	})
	return applied, err
}

// SetKitchenStatus updates the explicit kitchen sub-status without changing
// the coarse status. Still guarded: a concurrent transition bumps the
// version and rejects this write.
func (s *Store) SetKitchenStatus(ctx context.Context, id types.ID, status Status, version int, ks KitchenStatus, log *LogEntry) (bool, error) {
	applied := false
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders
			SET kitchen_status = $1,
			    status_version = status_version + 1,
			    updated_at = NOW()
			WHERE id = $2 AND status = $3 AND status_version = $4`,
			string(ks), string(id), string(status), version,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return nil
		}
		applied = true
		return appendLog(ctx, tx, log)
	})
	return applied, err
}

// SetAssignment overwrites the active delivery assignment under the same
// version guard as status transitions.
func (s *Store) SetAssignment(ctx context.Context, id types.ID, version int, a DeliveryAssignment, log *LogEntry) (bool, error) {
	applied := false
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE orders
			SET driver_type = $1,
			    assignment_preliminary = $2,
			    assigned_at = $3,
			    vehicle_info = $4,
			    status_version = status_version + 1,
			    updated_at = NOW()
			WHERE id = $5 AND status_version = $6`,
			a.DriverType, a.Preliminary, a.AssignedAt, a.VehicleInfo,
			string(id), version,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return nil
		}
		applied = true
		return appendLog(ctx, tx, log)
	})
	return applied, err
}

func (s *Store) ListLogs(ctx context.Context, orderID types.ID) ([]LogEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, event_type, previous_status, new_status, note, actor, created_at
		FROM order_logs
		WHERE order_id = $1
		ORDER BY created_at, id`, string(orderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Type, &e.PreviousStatus,
			&e.NewStatus, &e.Note, &e.User, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListRevisions(ctx context.Context, orderID types.ID) ([]Revision, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, seq, notes, photos, created_at
		FROM order_revisions
		WHERE order_id = $1
		ORDER BY seq`, string(orderID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.ID, &r.OrderID, &r.Seq, &r.Notes, &r.Photos, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func appendLog(ctx context.Context, tx pgx.Tx, e *LogEntry) error {
	if e == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = types.ID(uuid.NewString())
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO order_logs (id, order_id, event_type, previous_status, new_status, note, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(e.ID), string(e.OrderID), e.Type,
		string(e.PreviousStatus), string(e.NewStatus),
		e.Note, e.User, e.CreatedAt,
	)
	return err
}

func appendRevision(ctx context.Context, tx pgx.Tx, r *Revision) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_revisions (order_id, seq, notes, photos, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		string(r.OrderID), r.Seq, r.Notes, r.Photos, r.CreatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	var kitchen, slot, driverType, vehicle *string
	var assignedAt *time.Time
	var preliminary bool

	err := row.Scan(
		&o.ID, &o.CustomerName, &o.CakeDescription, &o.Status, &o.StatusVersion,
		&kitchen, &o.DeliveryDate, &slot, &o.RevisionCount, &o.FinishedPhotos,
		&driverType, &preliminary, &assignedAt, &vehicle,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if kitchen != nil {
		k := KitchenStatus(*kitchen)
		o.KitchenStatus = &k
	}
	if slot != nil {
		ts := TimeSlot(*slot)
		o.DeliverySlot = &ts
	}
	if driverType != nil {
		a := DeliveryAssignment{DriverType: *driverType, Preliminary: preliminary}
		if assignedAt != nil {
			a.AssignedAt = *assignedAt
		}
		if vehicle != nil {
			a.VehicleInfo = *vehicle
		}
		o.Assignment = &a
	}
	return &o, nil
}

func slotPtr(s *TimeSlot) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func kitchenPtr(k *KitchenStatus) *string {
	if k == nil {
		return nil
	}
	v := string(*k)
	return &v
}
