// README: Settings store backed by PostgreSQL.
package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Drivers(ctx context.Context) ([]Driver, error) {
	rows, err := s.db.Query(ctx, `
		SELECT driver_type, display_name, vehicle_info, active
		FROM drivers
		ORDER BY driver_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Driver
	for rows.Next() {
		var d Driver
		if err := rows.Scan(&d.Type, &d.DisplayName, &d.VehicleInfo, &d.Active); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) Driver(ctx context.Context, driverType string) (Driver, error) {
	var d Driver
	err := s.db.QueryRow(ctx, `
		SELECT driver_type, display_name, vehicle_info, active
		FROM drivers WHERE driver_type = $1`, driverType).
		Scan(&d.Type, &d.DisplayName, &d.VehicleInfo, &d.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Driver{}, ErrNotFound
	}
	return d, err
}

func (s *Store) Catalog(ctx context.Context, kind CatalogKind) ([]Option, error) {
	rows, err := s.db.Query(ctx, `
		SELECT kind, value FROM catalog_options
		WHERE kind = $1
		ORDER BY sort_order, value`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Option
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.Kind, &o.Value); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
