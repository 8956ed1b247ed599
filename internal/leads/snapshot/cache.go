// Package snapshot holds the most recent lead and agent collections per
// visibility scope and guards them against out-of-order fetch results.
package snapshot

import (
	"context"
	"sync"
	"time"

	"estate_portal_backend/internal/agents"
	"estate_portal_backend/internal/leads/domain"
	"estate_portal_backend/internal/leads/repository"
	"estate_portal_backend/platform/logger"
	"estate_portal_backend/platform/metrics"

	"golang.org/x/sync/errgroup"
)

const fetchTimeout = 30 * time.Second

// Snapshot is one consistent read of leads and agents.
type Snapshot struct {
	Leads     []domain.Lead
	Agents    []domain.Agent
	FetchedAt time.Time
	RequestID uint64
}

type fetch struct {
	id     uint64
	cancel context.CancelFunc
	done   chan struct{}
	snap   Snapshot
	err    error
}

type scopeState struct {
	latest   uint64
	inflight *fetch
	settled  *fetch
	current  *Snapshot
}

// Cache serves snapshots per scope. Every fetch gets a monotonically
// increasing request id; only the result of the latest fetch for a scope is
// stored, and starting a forced refresh cancels the one in flight.
type Cache struct {
	leads   repository.LeadLister
	agents  agents.Directory
	ttl     time.Duration
	now     func() time.Time
	log     *logger.Logger
	metrics *metrics.Reporting

	mu     sync.Mutex
	seq    uint64
	scopes map[string]*scopeState
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithMetrics records fetch outcomes.
func WithMetrics(m *metrics.Reporting) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates a cache. A ttl of zero disables reuse: every Get fetches.
func New(leads repository.LeadLister, dir agents.Directory, ttl time.Duration, log *logger.Logger, opts ...Option) *Cache {
	c := &Cache{
		leads:  leads,
		agents: dir,
		ttl:    ttl,
		now:    time.Now,
		log:    log,
		scopes: make(map[string]*scopeState),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a fresh enough snapshot for scope, joining a fetch already in
// flight when there is one. refresh forces a new fetch that supersedes any
// in-flight one.
func (c *Cache) Get(ctx context.Context, scope repository.Scope, refresh bool) (Snapshot, error) {
	c.mu.Lock()
	st := c.state(scope.Key())
	if !refresh {
		if st.current != nil && c.ttl > 0 && c.now().Sub(st.current.FetchedAt) < c.ttl {
			snap := *st.current
			c.mu.Unlock()
			return snap, nil
		}
		if st.inflight != nil {
			f := st.inflight
			c.mu.Unlock()
			return c.wait(ctx, st, f)
		}
	}
	f := c.start(ctx, scope, st)
	c.mu.Unlock()

	return c.wait(ctx, st, f)
}

// Invalidate drops the stored snapshot for scope.
func (c *Cache) Invalidate(scope repository.Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.scopes[scope.Key()]; ok {
		st.current = nil
	}
}

func (c *Cache) state(key string) *scopeState {
	st, ok := c.scopes[key]
	if !ok {
		st = &scopeState{}
		c.scopes[key] = st
	}
	return st
}

// start must be called with c.mu held.
func (c *Cache) start(ctx context.Context, scope repository.Scope, st *scopeState) *fetch {
	if st.inflight != nil {
		st.inflight.cancel()
	}

	c.seq++
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
	f := &fetch{id: c.seq, cancel: cancel, done: make(chan struct{})}
	st.latest = f.id
	st.inflight = f

	go c.run(fetchCtx, scope, st, f)
	return f
}

func (c *Cache) run(ctx context.Context, scope repository.Scope, st *scopeState, f *fetch) {
	defer f.cancel()
	started := c.now()
	snap, err := c.load(ctx, scope)
	if c.metrics != nil {
		c.metrics.FetchDuration.Observe(c.now().Sub(started).Seconds())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	defer close(f.done)

	snap.RequestID = f.id
	f.snap, f.err = snap, err

	if st.latest != f.id {
		c.observe("discarded")
		if c.log != nil {
			c.log.SnapshotDiscarded(scope.Key(), f.id, st.latest)
		}
		return
	}

	st.inflight = nil
	st.settled = f
	if err != nil {
		c.observe("failed")
		if c.log != nil {
			c.log.DatabaseError("snapshot.load "+scope.Key(), err)
		}
		return
	}
	c.observe("stored")
	st.current = &snap
}

// wait blocks until f settles. A caller whose fetch was superseded follows
// the newer fetch so it never sees a stale collection.
func (c *Cache) wait(ctx context.Context, st *scopeState, f *fetch) (Snapshot, error) {
	for {
		select {
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		case <-f.done:
		}

		c.mu.Lock()
		if f.id == st.latest {
			c.mu.Unlock()
			return f.snap, f.err
		}
		if st.inflight != nil && st.inflight.id == st.latest {
			f = st.inflight
			c.mu.Unlock()
			continue
		}
		if st.settled != nil && st.settled.id == st.latest {
			latest := st.settled
			c.mu.Unlock()
			return latest.snap, latest.err
		}
		c.mu.Unlock()
		return f.snap, f.err
	}
}

func (c *Cache) load(ctx context.Context, scope repository.Scope) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		leads, err := c.leads.ListLeads(gctx, scope)
		snap.Leads = leads
		return err
	})
	g.Go(func() error {
		list, err := c.agents.ListAgents(gctx)
		snap.Agents = list
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	snap.FetchedAt = c.now()
	return snap, nil
}

func (c *Cache) observe(outcome string) {
	if c.metrics != nil {
		c.metrics.SnapshotFetches.WithLabelValues(outcome).Inc()
	}
}
