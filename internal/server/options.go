package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-reportform/pkg/gateway"
	"github.com/goliatone/go-reportform/pkg/grammar"
	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/report"
)

// OptionCache shares the remote category and severity lists between
// requests. Concurrent refreshes collapse into one gateway round trip and a
// failed refresh keeps the previous lists.
type OptionCache struct {
	gw     gateway.ReportGateway
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	group   singleflight.Group
	mu      sync.RWMutex
	sets    map[string][]model.Option
	fetched time.Time
}

// NewOptionCache builds a cache that refreshes after ttl.
func NewOptionCache(gw gateway.ReportGateway, ttl time.Duration, logger *zap.Logger) *OptionCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OptionCache{
		gw:     gw,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		sets:   map[string][]model.Option{},
	}
}

// Sets returns the cached lists, refreshing them when stale.
func (o *OptionCache) Sets(ctx context.Context) map[string][]model.Option {
	if o.gw == nil {
		return nil
	}
	o.mu.RLock()
	fresh := !o.fetched.IsZero() && o.now().Sub(o.fetched) < o.ttl
	o.mu.RUnlock()
	if !fresh {
		_, _, _ = o.group.Do("options", func() (any, error) {
			return nil, o.refresh(context.WithoutCancel(ctx))
		})
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string][]model.Option, len(o.sets))
	for name, options := range o.sets {
		out[name] = options
	}
	return out
}

func (o *OptionCache) refresh(ctx context.Context) error {
	var g errgroup.Group
	fetch := func(name string, load func(context.Context) ([]model.Option, error)) {
		g.Go(func() error {
			options, err := load(ctx)
			if err != nil {
				o.logger.Warn("option refresh failed, keeping cached list", zap.String("source", name), zap.Error(err))
				return fmt.Errorf("options %s: %w", name, err)
			}
			o.mu.Lock()
			o.sets[name] = options
			o.mu.Unlock()
			return nil
		})
	}
	fetch(grammar.SourceCategories, o.gw.GetCategoryOptions)
	fetch(grammar.SourceSeverities, o.gw.GetSeverityOptions)
	err := g.Wait()

	o.mu.Lock()
	o.fetched = o.now()
	o.mu.Unlock()
	return err
}

// Apply attaches the cached lists to a controller.
func (o *OptionCache) Apply(ctx context.Context, c *report.Controller) {
	for name, options := range o.Sets(ctx) {
		c.SetOptionSet(name, options)
	}
}
