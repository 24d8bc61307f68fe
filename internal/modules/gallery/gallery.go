// README: Gallery of approved cake photos backed by PostgreSQL.
package gallery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"cakeline/internal/modules/order"
	"cakeline/internal/types"
)

type Photo struct {
	ID           types.ID
	ImageURL     string
	Tags         []string
	OrderID      types.ID
	CustomerName string
	CreatedAt    time.Time
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// AddPhoto implements the order service's Gallery collaborator.
func (s *Store) AddPhoto(ctx context.Context, p order.GalleryPhoto) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO gallery_photos (id, image_url, tags, order_id, customer_name, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		uuid.NewString(), p.ImageURL, p.Tags, string(p.OrderID), p.CustomerName)
	return err
}

func (s *Store) List(ctx context.Context, limit int) ([]Photo, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, image_url, tags, order_id, customer_name, created_at
		FROM gallery_photos
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.ImageURL, &p.Tags, &p.OrderID, &p.CustomerName, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
