package schema

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisSnapshotKey = "dealsight:schema:snapshot"

// Refresher fetches a fresh schema snapshot from the live database.
type Refresher interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// Registry serves schema snapshots through a read-through TTL cache:
// in-memory snapshot first, then the optional Redis tier, then a synchronous
// refresh from the database. A nil refresher pins the registry to the static
// compiled-in schema.
type Registry struct {
	refresher Refresher
	redis     *redis.Client
	ttl       time.Duration
	logger    *zap.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

// NewRegistry creates a registry. redisClient may be nil to disable the
// second cache tier; refresher may be nil to disable live refresh entirely.
func NewRegistry(refresher Refresher, redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		refresher: refresher,
		redis:     redisClient,
		ttl:       ttl,
		logger:    logger.Named("schema"),
		snap:      Static(),
	}
}

// Snapshot returns the current schema snapshot. Expired snapshots trigger a
// synchronous refresh; a failed refresh serves the previous snapshot so a
// flaky database never takes prompt construction down with it.
func (r *Registry) Snapshot(ctx context.Context) *Snapshot {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()

	if r.refresher == nil || time.Since(snap.FetchedAt) < r.ttl {
		return snap
	}

	if cached := r.fromRedis(ctx); cached != nil {
		r.store(ctx, cached, false)
		return cached
	}

	fresh, err := r.refresher.Fetch(ctx)
	if err != nil || fresh == nil || len(fresh.Tables) == 0 {
		r.logger.Warn("schema refresh failed, serving stale snapshot", zap.Error(err))
		return snap
	}
	fresh.FetchedAt = time.Now()

	r.store(ctx, fresh, true)
	r.logger.Info("schema snapshot refreshed", zap.Int("tables", len(fresh.Tables)))
	return fresh
}

// Describe renders the current snapshot's compact schema description.
func (r *Registry) Describe(ctx context.Context) string {
	return r.Snapshot(ctx).Describe()
}

// IsKnownIdentifier reports whether name is a table or column of the current
// snapshot. Uses whatever snapshot is in memory without triggering a refresh,
// since validation must not block on the database.
func (r *Registry) IsKnownIdentifier(name string) bool {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()
	return snap.IsKnownIdentifier(name)
}

// store publishes a snapshot to the in-memory tier and, when writeRedis is
// set, to the Redis tier. Last writer wins on concurrent refresh.
func (r *Registry) store(ctx context.Context, snap *Snapshot, writeRedis bool) {
	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()

	if !writeRedis || r.redis == nil {
		return
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, redisSnapshotKey, payload, r.ttl).Err(); err != nil {
		r.logger.Warn("failed to write schema snapshot to redis", zap.Error(err))
	}
}

// fromRedis returns a still-fresh snapshot from the Redis tier, or nil.
func (r *Registry) fromRedis(ctx context.Context) *Snapshot {
	if r.redis == nil {
		return nil
	}

	payload, err := r.redis.Get(ctx, redisSnapshotKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("failed to read schema snapshot from redis", zap.Error(err))
		}
		return nil
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		r.logger.Warn("discarding malformed schema snapshot from redis", zap.Error(err))
		return nil
	}
	if time.Since(snap.FetchedAt) >= r.ttl {
		return nil
	}
	return &snap
}
