package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// FetchFunc performs one upstream fetch of a dataset snapshot
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

const backgroundRefreshTimeout = 60 * time.Second

// dataset binds a registered dataset name to its store key and fetcher
type dataset struct {
	name  string
	key   string
	fetch FetchFunc
}

// RefreshResult is the metadata returned by a forced refresh
type RefreshResult struct {
	FetchedAt   time.Time      `json:"fetched_at"`
	Collections map[string]int `json:"collections"`
}

// DatasetStatus describes one dataset's cached state for health reporting
type DatasetStatus struct {
	Freshness string     `json:"freshness"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
}

// SnapshotCoordinator decides whether stored data is fresh, stale-but-usable,
// or absent, deduplicates concurrent refreshes into a single in-flight fetch,
// and triggers background refresh without blocking readers.
//
// The single-flight guarantee is per-process only. Two instances may refresh
// concurrently and both write; the last writer's envelope wins. Snapshots are
// idempotently replaceable, so that race is accepted rather than locked away.
type SnapshotCoordinator struct {
	store   SnapshotStore
	breaker *CircuitBreakerService
	logger  *logrus.Logger
	ttl     time.Duration

	flight singleflight.Group

	mu         sync.Mutex
	refreshing map[string]bool
	datasets   map[string]dataset
}

// NewSnapshotCoordinator creates a coordinator over the given store
func NewSnapshotCoordinator(store SnapshotStore, breaker *CircuitBreakerService, ttl time.Duration, logger *logrus.Logger) *SnapshotCoordinator {
	return &SnapshotCoordinator{
		store:      store,
		breaker:    breaker,
		logger:     logger,
		ttl:        ttl,
		refreshing: make(map[string]bool),
		datasets:   make(map[string]dataset),
	}
}

// Register adds a dataset under a name, bound to its store key and fetcher
func (c *SnapshotCoordinator) Register(name, key string, fetch FetchFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.datasets[name] = dataset{name: name, key: key, fetch: fetch}
}

// Get returns the dataset payload, serving from the store when possible.
// Fresh data is returned without network activity. Stale data is returned
// immediately when allowStale is true, with a refresh kicked off in the
// background. Absent data forces a foreground fetch. Get fails only when
// no usable envelope exists and the foreground fetch also fails.
func (c *SnapshotCoordinator) Get(ctx context.Context, name string, allowStale bool) (json.RawMessage, error) {
	ds, err := c.dataset(name)
	if err != nil {
		return nil, err
	}

	env, err := c.store.Load(ctx, ds.key)
	if err != nil {
		// Store corruption and transport anomalies recover locally as absent
		c.logger.WithError(err).WithFields(logrus.Fields{
			"component": "snapshot_coordinator",
			"dataset":   name,
		}).Warn("Failed to load stored envelope, falling back to fetch")
		env = nil
	}

	switch Classify(time.Now(), env, c.ttl) {
	case FreshnessFresh:
		return env.Payload, nil

	case FreshnessStale:
		if allowStale {
			c.refreshAsync(ds)
			return env.Payload, nil
		}
		fresh, err := c.refresh(ctx, ds)
		if err != nil {
			return nil, err
		}
		return fresh.Payload, nil

	default:
		fresh, err := c.refresh(ctx, ds)
		if err != nil {
			return nil, err
		}
		return fresh.Payload, nil
	}
}

// ForceRefresh bypasses all freshness checks, fetches and stores every
// registered dataset, and returns metadata about the bootstrap snapshot
func (c *SnapshotCoordinator) ForceRefresh(ctx context.Context) (*RefreshResult, error) {
	env, err := c.refreshByName(ctx, DatasetBootstrap)
	if err != nil {
		return nil, err
	}

	result := &RefreshResult{
		FetchedAt:   env.FetchedAt,
		Collections: countCollections(env.Payload),
	}

	if fixtures, err := c.refreshByName(ctx, DatasetFixtures); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"component": "snapshot_coordinator",
			"dataset":   DatasetFixtures,
		}).Warn("Fixtures refresh failed during forced refresh")
	} else {
		var items []json.RawMessage
		if json.Unmarshal(fixtures.Payload, &items) == nil {
			result.Collections["fixtures"] = len(items)
		}
	}

	return result, nil
}

// Status reports each registered dataset's freshness for health checks
func (c *SnapshotCoordinator) Status(ctx context.Context) map[string]DatasetStatus {
	c.mu.Lock()
	names := make([]dataset, 0, len(c.datasets))
	for _, ds := range c.datasets {
		names = append(names, ds)
	}
	c.mu.Unlock()

	status := make(map[string]DatasetStatus, len(names))
	for _, ds := range names {
		env, err := c.store.Load(ctx, ds.key)
		if err != nil {
			env = nil
		}
		s := DatasetStatus{Freshness: Classify(time.Now(), env, c.ttl).String()}
		if env != nil {
			fetchedAt := env.FetchedAt
			s.FetchedAt = &fetchedAt
		}
		status[ds.name] = s
	}
	return status
}

func (c *SnapshotCoordinator) dataset(name string) (dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ds, ok := c.datasets[name]
	if !ok {
		return dataset{}, fmt.Errorf("unknown dataset %q", name)
	}
	return ds, nil
}

func (c *SnapshotCoordinator) refreshByName(ctx context.Context, name string) (*Envelope, error) {
	ds, err := c.dataset(name)
	if err != nil {
		return nil, err
	}
	return c.refresh(ctx, ds)
}

// refresh performs fetch + store through the single-flight group. Concurrent
// callers for the same dataset share one upstream fetch; the in-flight slot is
// cleared by the group on success and failure alike.
func (c *SnapshotCoordinator) refresh(ctx context.Context, ds dataset) (*Envelope, error) {
	v, err, _ := c.flight.Do(ds.name, func() (interface{}, error) {
		return c.fetchAndStore(ctx, ds)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Envelope), nil
}

// refreshAsync kicks off a background refresh unless one is already running.
// The caller never waits on it; its outcome is logged and dropped.
func (c *SnapshotCoordinator) refreshAsync(ds dataset) {
	c.mu.Lock()
	if c.refreshing[ds.name] {
		c.mu.Unlock()
		return
	}
	c.refreshing[ds.name] = true
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.refreshing, ds.name)
			c.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), backgroundRefreshTimeout)
		defer cancel()

		if _, err := c.refresh(ctx, ds); err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"component": "snapshot_coordinator",
				"dataset":   ds.name,
			}).Warn("Background refresh failed, stale data remains in service")
			return
		}

		c.logger.WithFields(logrus.Fields{
			"component": "snapshot_coordinator",
			"dataset":   ds.name,
		}).Info("Background refresh completed")
	}()
}

func (c *SnapshotCoordinator) fetchAndStore(ctx context.Context, ds dataset) (*Envelope, error) {
	var payload json.RawMessage
	var err error

	if c.breaker != nil {
		var v interface{}
		v, err = c.breaker.Execute(func() (interface{}, error) {
			return ds.fetch(ctx)
		})
		if err == nil {
			payload = v.(json.RawMessage)
		}
	} else {
		payload, err = ds.fetch(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset %s: %w", ds.name, err)
	}

	env := &Envelope{
		Payload:   payload,
		FetchedAt: time.Now().UTC(),
	}

	if err := c.store.Save(ctx, ds.key, env); err != nil {
		// The fetched snapshot is still good for this caller; the next reader
		// will simply fetch again
		c.logger.WithError(err).WithFields(logrus.Fields{
			"component": "snapshot_coordinator",
			"dataset":   ds.name,
		}).Warn("Failed to persist fetched snapshot")
	}

	return env, nil
}

// countCollections counts records per named top-level collection of a payload
func countCollections(payload json.RawMessage) map[string]int {
	counts := make(map[string]int)

	var collections map[string]json.RawMessage
	if err := json.Unmarshal(payload, &collections); err != nil {
		return counts
	}

	for name, raw := range collections {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			continue
		}
		counts[name] = len(items)
	}

	return counts
}
