package application

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"github.com/KOMKZ/yogan-property/cache"
	"github.com/KOMKZ/yogan-property/di"
	"github.com/KOMKZ/yogan-property/property"
)

// CLIApplication runs one-shot commands against the same container the
// server uses
type CLIApplication struct {
	*BaseApplication
}

func NewCLI(opts di.Options) (*CLIApplication, error) {
	base, err := NewBase(opts)
	if err != nil {
		return nil, err
	}
	return &CLIApplication{BaseApplication: base}, nil
}

// Execute runs fn and then closes the container whatever fn returned
func (c *CLIApplication) Execute(ctx context.Context, fn func(ctx context.Context, app *CLIApplication) error) error {
	c.setState(StateRunning)
	err := fn(ctx, c)
	if shutdownErr := c.Shutdown(); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	return err
}

// MigrateResult reports what Migrate did
type MigrateResult struct {
	Seeded      int  `json:"seeded"`
	Invalidated bool `json:"invalidated"`
}

// Migrate creates the properties table. With seed it inserts the sample
// listing into an empty table and drops the cached listing so readers
// see it at once.
func (c *CLIApplication) Migrate(ctx context.Context, seed bool) (MigrateResult, error) {
	var res MigrateResult
	repo, err := do.Invoke[*property.Repository](c.Injector())
	if err != nil {
		return res, err
	}
	if err := repo.Migrate(ctx); err != nil {
		return res, fmt.Errorf("migrate properties failed: %w", err)
	}
	c.Logger().InfoCtx(ctx, "properties table migrated")
	if !seed {
		return res, nil
	}

	count, err := repo.Count(ctx)
	if err != nil {
		return res, fmt.Errorf("count properties failed: %w", err)
	}
	if count > 0 {
		c.Logger().InfoCtx(ctx, "properties already present, seed skipped", zap.Int64("count", count))
		return res, nil
	}

	cfg, err := do.Invoke[property.Config](c.Injector())
	if err != nil {
		return res, err
	}
	items := property.SampleProperties()
	if err := repo.Seed(ctx, items, cfg.SeedBatchSize); err != nil {
		return res, err
	}
	res.Seeded = len(items)

	svc, err := do.Invoke[*property.Service](c.Injector())
	if err != nil {
		return res, err
	}
	if err := svc.InvalidateAll(ctx); err != nil {
		// the seeded rows are committed; a stale entry expires with its TTL
		c.Logger().WarnCtx(ctx, "invalidate cached listing failed", zap.Error(err))
		return res, nil
	}
	res.Invalidated = true
	c.Logger().InfoCtx(ctx, "properties seeded", zap.Int("count", res.Seeded))
	return res, nil
}

// CacheMetrics returns the current snapshot; it never fails once the
// service is up
func (c *CLIApplication) CacheMetrics(ctx context.Context) (cache.Metrics, error) {
	svc, err := do.Invoke[*property.Service](c.Injector())
	if err != nil {
		return cache.Metrics{}, err
	}
	return svc.GetCacheMetrics(ctx), nil
}
