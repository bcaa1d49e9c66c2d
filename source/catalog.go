// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package source

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/my-vote/count"
	"github.com/danielhkuo/my-vote/metrics"
	"github.com/danielhkuo/my-vote/models"
)

// snapshot is one chamber's decoded records. It is never modified once built.
type snapshot[T any] struct {
	records []T
	index   map[string]int
	names   []string
}

func (s *snapshot[T]) get(name string) (T, bool) {
	i, ok := s.index[strings.ToLower(name)]
	if !ok {
		var zero T
		return zero, false
	}
	return s.records[i], true
}

type dataset[T any] struct {
	mu   sync.Mutex
	snap *snapshot[T]
}

// Catalog caches each chamber's dataset after its first successful load.
// Chambers load independently; concurrent requests for a chamber that is
// still loading wait for that load. A failed load is not cached.
type Catalog struct {
	loader  Loader
	metrics *metrics.Metrics
	house   dataset[models.HouseResult]
	senate  dataset[models.SenateResult]
}

func NewCatalog(loader Loader, m *metrics.Metrics) *Catalog {
	return &Catalog{loader: loader, metrics: m}
}

func (c *Catalog) Driver() string { return c.loader.Driver() }

// Divisions lists the House divisions in name order.
func (c *Catalog) Divisions(ctx context.Context) ([]string, error) {
	snap, err := c.loadHouse(ctx)
	if err != nil {
		return nil, err
	}
	return snap.names, nil
}

// Division returns one division's result. Names match case-insensitively.
func (c *Catalog) Division(ctx context.Context, name string) (models.HouseResult, error) {
	snap, err := c.loadHouse(ctx)
	if err != nil {
		return models.HouseResult{}, err
	}
	r, ok := snap.get(name)
	if !ok {
		return r, fmt.Errorf("division %q: %w", name, ErrNotFound)
	}
	return r, nil
}

// States lists the Senate states in name order.
func (c *Catalog) States(ctx context.Context) ([]string, error) {
	snap, err := c.loadSenate(ctx)
	if err != nil {
		return nil, err
	}
	return snap.names, nil
}

// State returns one state's Senate result. Names match case-insensitively.
func (c *Catalog) State(ctx context.Context, name string) (models.SenateResult, error) {
	snap, err := c.loadSenate(ctx)
	if err != nil {
		return models.SenateResult{}, err
	}
	r, ok := snap.get(name)
	if !ok {
		return r, fmt.Errorf("state %q: %w", name, ErrNotFound)
	}
	return r, nil
}

// Invalidate drops a chamber's cached dataset; the next request loads it again.
func (c *Catalog) Invalidate(chamber string) {
	switch chamber {
	case models.ChamberHouse:
		c.house.reset()
	case models.ChamberSenate:
		c.senate.reset()
	}
}

func (d *dataset[T]) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snap = nil
}

func (c *Catalog) loadHouse(ctx context.Context) (*snapshot[models.HouseResult], error) {
	return load(ctx, c, models.ChamberHouse, &c.house, func(r models.HouseResult) string { return r.Division })
}

func (c *Catalog) loadSenate(ctx context.Context) (*snapshot[models.SenateResult], error) {
	return load(ctx, c, models.ChamberSenate, &c.senate, func(r models.SenateResult) string { return r.State },
		func(r models.SenateResult) {
			if !count.QuotaMatches(r) {
				slog.Warn("senate quota does not match papers and vacancies",
					"state", r.State, "quota", r.Quota, "expected", count.Quota(r.Papers, r.Vacancies))
			}
		})
}

func load[T any](ctx context.Context, c *Catalog, chamber string, d *dataset[T], key func(T) string, checks ...func(T)) (*snapshot[T], error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snap != nil {
		return d.snap, nil
	}

	start := time.Now()
	driver := c.loader.Driver()

	data, err := c.loader.Load(ctx, chamber)
	if err != nil {
		c.metrics.DatasetLoad(chamber, driver, metrics.LoadFailed)
		slog.Error("failed to load dataset", "chamber", chamber, "driver", driver, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var records []T
	if err := decode(data, &records); err != nil {
		c.metrics.DatasetLoad(chamber, driver, metrics.LoadFailed)
		slog.Error("failed to decode dataset", "chamber", chamber, "driver", driver, "error", err)
		return nil, err
	}

	index := make(map[string]int, len(records))
	names := make([]string, 0, len(records))
	for i, r := range records {
		for _, check := range checks {
			check(r)
		}
		name := key(r)
		index[strings.ToLower(name)] = i
		names = append(names, name)
	}
	sort.Strings(names)

	d.snap = &snapshot[T]{records: records, index: index, names: names}

	c.metrics.DatasetLoad(chamber, driver, metrics.LoadOK)
	slog.Info("dataset loaded",
		"chamber", chamber,
		"driver", driver,
		"records", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return d.snap, nil
}
