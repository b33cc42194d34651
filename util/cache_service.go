// util/cache_service.go

package util

import (
	"context"

	"github.com/evspresso/walter/db"
	"github.com/evspresso/walter/model"
)

// CacheService fronts Redis for Mojang profile lookups. With enabled=false
// every method is a no-op miss, so the validator code path stays identical
// whether or not a Redis instance is deployed.
type CacheService struct {
	enabled bool
}

func NewCacheService(enabled bool) *CacheService {
	return &CacheService{enabled: enabled}
}

func (c *CacheService) GetMojangProfile(ctx context.Context, username string) (*model.MojangProfile, error) {
	if !c.enabled {
		return nil, nil
	}
	profile, err := db.GetCachedMojangProfile(ctx, username)
	if err != nil {
		// Cache misses and Redis errors are treated alike; the caller
		// falls through to the Mojang API either way.
		return nil, nil
	}
	return profile, nil
}

func (c *CacheService) SetMojangProfile(ctx context.Context, username string, profile model.MojangProfile) error {
	if !c.enabled {
		return nil
	}
	return db.CacheMojangProfile(ctx, username, &profile)
}
