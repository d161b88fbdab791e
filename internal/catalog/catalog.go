// Package catalog lists the hunts a player can choose from, optionally
// through a shared cache.
package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

// Lister is the upstream source of hunts.
type Lister interface {
	ListHunts(ctx context.Context) ([]treasurehunt.Hunt, error)
}

// Cache stores the last hunt listing. A miss is reported as ok == false with
// a nil error.
type Cache interface {
	Get(ctx context.Context) (hunts []treasurehunt.Hunt, ok bool, err error)
	Set(ctx context.Context, hunts []treasurehunt.Hunt, ttl time.Duration) error
}

type Catalog struct {
	src    Lister
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// New returns a catalog reading from src. cache may be nil.
func New(src Lister, cache Cache, ttl time.Duration, logger *slog.Logger) *Catalog {
	return &Catalog{src: src, cache: cache, ttl: ttl, logger: logger}
}

// List returns hunts in the order the server gave them. Cache failures are
// logged and fall through to the upstream listing.
func (c *Catalog) List(ctx context.Context) ([]treasurehunt.Hunt, error) {
	if c.cache != nil {
		hunts, ok, err := c.cache.Get(ctx)
		switch {
		case err != nil:
			c.logger.Warn("hunt cache read failed", "error", err)
		case ok:
			return hunts, nil
		}
	}

	hunts, err := c.src.ListHunts(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Info("hunts loaded", "count", len(hunts))

	if c.cache != nil && c.ttl > 0 {
		if err := c.cache.Set(ctx, hunts, c.ttl); err != nil {
			c.logger.Warn("hunt cache write failed", "error", err)
		}
	}
	return hunts, nil
}
