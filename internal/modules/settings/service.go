// README: Settings service; Redis read-through cache over the Postgres catalogs.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Service struct {
	store *Store
	redis *redis.Client
	ttl   time.Duration
}

func NewService(store *Store, rdb *redis.Client, ttl time.Duration) *Service {
	return &Service{store: store, redis: rdb, ttl: ttl}
}

const (
	driversCacheKey  = "settings:drivers"
	catalogCachePref = "settings:catalog:"
)

func (s *Service) Drivers(ctx context.Context) ([]Driver, error) {
	var drivers []Driver
	if s.cachedGet(ctx, driversCacheKey, &drivers) {
		return drivers, nil
	}
	drivers, err := s.store.Drivers(ctx)
	if err != nil {
		return nil, err
	}
	s.cachedSet(ctx, driversCacheKey, drivers)
	return drivers, nil
}

func (s *Service) Driver(ctx context.Context, driverType string) (Driver, error) {
	drivers, err := s.Drivers(ctx)
	if err != nil {
		return Driver{}, err
	}
	for _, d := range drivers {
		if d.Type == driverType {
			return d, nil
		}
	}
	return Driver{}, fmt.Errorf("%w: driver %q", ErrNotFound, driverType)
}

// DriverDisplayName implements the trip engine's DriverCatalog.
func (s *Service) DriverDisplayName(ctx context.Context, driverType string) (string, error) {
	d, err := s.Driver(ctx, driverType)
	if err != nil {
		return "", err
	}
	return d.DisplayName, nil
}

func (s *Service) DriverVehicle(ctx context.Context, driverType string) (string, error) {
	d, err := s.Driver(ctx, driverType)
	if err != nil {
		return "", err
	}
	return d.VehicleInfo, nil
}

func (s *Service) Catalog(ctx context.Context, kind CatalogKind) ([]Option, error) {
	key := catalogCachePref + string(kind)
	var opts []Option
	if s.cachedGet(ctx, key, &opts) {
		return opts, nil
	}
	opts, err := s.store.Catalog(ctx, kind)
	if err != nil {
		return nil, err
	}
	s.cachedSet(ctx, key, opts)
	return opts, nil
}

// Cache misses and failures fall through to Postgres; the cache is an
// optimization, never a source of truth.
func (s *Service) cachedGet(ctx context.Context, key string, dest any) bool {
	if s.redis == nil {
		return false
	}
	raw, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func (s *Service) cachedSet(ctx context.Context, key string, v any) {
	if s.redis == nil || s.ttl <= 0 {
		return
	}
	if raw, err := json.Marshal(v); err == nil {
		s.redis.Set(ctx, key, raw, s.ttl)
	}
}
