// Package cache owns the resolved-config cache keyed by (service, company).
// The Manager is the only component that mutates the cache map; everything
// else reads through Resolve and writes through Invalidate.
//
// Per-key lifecycle: EMPTY -> LOADING -> CACHED -> (on invalidate) EMPTY.
// Concurrent Resolve calls on a cold key coalesce into one underlying load,
// and a failed load leaves the key EMPTY so the next call retries.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/groundworks/estimator/internal/broadcast"
	"github.com/groundworks/estimator/internal/observability"
	"github.com/groundworks/estimator/model"
)

// Loader fetches a fully resolved config from the config store.
type Loader func(ctx context.Context, serviceID, companyID string) (model.ServiceConfig, error)

type entry struct {
	cfg      model.ServiceConfig
	loadedAt time.Time
}

// Manager caches resolved configs and guarantees the coherence contract:
// after a save's invalidation lands, no Resolve returns the pre-save value.
type Manager struct {
	loader      Loader
	broadcaster *broadcast.Broadcaster
	logger      *zap.Logger
	metrics     *observability.Metrics

	group singleflight.Group

	mu      sync.Mutex
	entries map[string]entry
	// gens counts invalidations per key. A load captures the generation it
	// started under and only populates the cache if the generation is
	// unchanged when it completes, so a load that raced an invalidation can
	// never resurrect a pre-save value.
	gens map[string]uint64
}

// NewManager creates a Manager. broadcaster, logger, and metrics are
// optional; a nil broadcaster disables Subscribe.
func NewManager(loader Loader, broadcaster *broadcast.Broadcaster, logger *zap.Logger, metrics *observability.Metrics) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		loader:      loader,
		broadcaster: broadcaster,
		logger:      logger,
		metrics:     metrics,
		entries:     make(map[string]entry),
		gens:        make(map[string]uint64),
	}
}

func cacheKey(serviceID, companyID string) string {
	return serviceID + "/" + companyID
}

// Resolve returns the cached config for the key, loading it on a miss.
// Concurrent calls during a load share the single in-flight result rather
// than issuing duplicate fetches.
func (m *Manager) Resolve(ctx context.Context, serviceID, companyID string) (model.ServiceConfig, error) {
	key := cacheKey(serviceID, companyID)

	m.mu.Lock()
	if e, ok := m.entries[key]; ok {
		m.mu.Unlock()
		if m.metrics != nil {
			m.metrics.ConfigCacheHitsTotal.Inc()
		}
		return e.cfg, nil
	}
	gen := m.gens[key]
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ConfigCacheMissesTotal.Inc()
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		cfg, err := m.loader(ctx, serviceID, companyID)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	})
	if err != nil {
		// singleflight drops the call on completion, so the key is back to
		// EMPTY and a later Resolve retries the load.
		if m.metrics != nil {
			m.metrics.ConfigLoadsTotal.WithLabelValues("error").Inc()
		}
		m.logger.Debug("config load failed",
			zap.String("service_id", serviceID),
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		return model.ServiceConfig{}, err
	}
	cfg := v.(model.ServiceConfig)
	if m.metrics != nil {
		m.metrics.ConfigLoadsTotal.WithLabelValues("ok").Inc()
	}

	m.mu.Lock()
	if m.gens[key] == gen {
		m.entries[key] = entry{cfg: cfg, loadedAt: time.Now().UTC()}
	}
	m.mu.Unlock()

	return cfg, nil
}

// Invalidate evicts the entry for the key. It is idempotent and safe to call
// for a key that was never cached. Any load in flight when the invalidation
// lands is prevented from repopulating the cache, and later Resolve calls
// start a fresh load instead of joining it.
func (m *Manager) Invalidate(serviceID, companyID string) {
	key := cacheKey(serviceID, companyID)

	m.mu.Lock()
	delete(m.entries, key)
	m.gens[key]++
	m.mu.Unlock()

	m.group.Forget(key)

	m.logger.Debug("config cache entry evicted",
		zap.String("service_id", serviceID),
		zap.String("company_id", companyID),
	)
}

// Subscribe registers a config change handler for the key and returns an
// unsubscribe function.
func (m *Manager) Subscribe(serviceID, companyID string, fn broadcast.Handler) func() {
	if m.broadcaster == nil {
		return func() {}
	}
	return m.broadcaster.Subscribe(serviceID, companyID, fn)
}

// Cached reports whether the key currently holds a cached entry. For
// testing.
func (m *Manager) Cached(serviceID, companyID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[cacheKey(serviceID, companyID)]
	return ok
}
