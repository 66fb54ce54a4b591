// Package dashboard is the query façade the presentation layers call. It
// resolves the backend once, caches raw record listings for a short TTL and
// hands them to the analytics package.
package dashboard

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/janekbaraniewski/ohmydashboard/internal/analytics"
	"github.com/janekbaraniewski/ohmydashboard/internal/cache"
	"github.com/janekbaraniewski/ohmydashboard/internal/core"
	"github.com/janekbaraniewski/ohmydashboard/internal/detect"
	"github.com/janekbaraniewski/ohmydashboard/internal/storage"
)

const (
	keyProjects        = "projects"
	keySessions        = "sessions"
	keyMessages        = "messages"
	keySessionMessages = "messages:"
)

// maxParallelParts bounds concurrent part lookups in SessionDetail.
const maxParallelParts = 8

type Options struct {
	Detect detect.Options
	// Resolver replaces detection, mostly for tests and for `detect --backend`.
	Resolver  *detect.Resolver
	SQLiteCLI string
	CacheTTL  time.Duration
	Now       func() time.Time
}

// Reader answers dashboard queries. It is safe for concurrent use.
type Reader struct {
	resolver *detect.Resolver
	source   func() storage.Reader
	cache    *cache.Cache[any]
	now      func() time.Time

	closeOnce sync.Once
}

func New(opts Options) *Reader {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = detect.NewResolver(opts.Detect)
	}

	r := &Reader{
		resolver: resolver,
		cache:    cache.NewWithClock[any](opts.CacheTTL, now),
		now:      now,
	}
	r.source = sync.OnceValue(func() storage.Reader {
		b := r.resolver.Backend()
		d := detect.Describe(b)
		log.Printf("dashboard level=info event=backend_resolved kind=%s base=%s db=%s", d.Kind, d.BasePath, d.DBPath)
		return storage.Open(b, storage.Options{SQLiteCLI: opts.SQLiteCLI, Now: now})
	})
	return r
}

// Backend returns the resolved backend descriptor.
func (r *Reader) Backend() detect.Descriptor {
	return detect.Describe(r.resolver.Backend())
}

// InvalidateCache drops every cached listing.
func (r *Reader) InvalidateCache() {
	r.cache.Invalidate()
}

func (r *Reader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.source().Close()
	})
	return err
}

// cached returns the value stored under key or loads and stores it. Two
// concurrent misses both load; the last writer wins. A load whose context
// ended may be partial, so it is returned to its caller but never stored.
func cached[T any](ctx context.Context, r *Reader, key string, load func() T) T {
	if v, ok := r.cache.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed
		}
	}
	v := load()
	if ctx.Err() != nil {
		log.Printf("dashboard level=warn event=cache_store_skipped key=%s error=%v", key, ctx.Err())
		return v
	}
	r.cache.Set(key, v)
	return v
}

func (r *Reader) Projects(ctx context.Context) []core.RawProject {
	return cached(ctx, r, keyProjects, func() []core.RawProject { return r.source().ListProjects(ctx) })
}

func (r *Reader) rawSessions(ctx context.Context) []core.RawSession {
	return cached(ctx, r, keySessions, func() []core.RawSession { return r.source().ListSessions(ctx) })
}

func (r *Reader) rawMessages(ctx context.Context) []core.RawMessage {
	return cached(ctx, r, keyMessages, func() []core.RawMessage { return r.source().ListMessages(ctx, "") })
}

func (r *Reader) sessionMessages(ctx context.Context, sessionID string) []core.RawMessage {
	return cached(ctx, r, keySessionMessages+sessionID, func() []core.RawMessage {
		return r.source().ListMessages(ctx, sessionID)
	})
}

// sessionsAndMessages fetches both listings concurrently.
func (r *Reader) sessionsAndMessages(ctx context.Context) ([]core.RawSession, []core.RawMessage) {
	var (
		sessions []core.RawSession
		messages []core.RawMessage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions = r.rawSessions(gctx)
		return nil
	})
	g.Go(func() error {
		messages = r.rawMessages(gctx)
		return nil
	})
	_ = g.Wait()
	return sessions, messages
}

func (r *Reader) Sessions(ctx context.Context, rng core.DateRange) []core.Session {
	sessions, messages := r.sessionsAndMessages(ctx)
	return analytics.Sessions(sessions, messages, rng, r.now())
}

func (r *Reader) Stats(ctx context.Context, rng core.DateRange) core.DashboardStats {
	sessions, messages := r.sessionsAndMessages(ctx)
	return analytics.Stats(sessions, messages, rng, r.now())
}

func (r *Reader) ActiveAgents(ctx context.Context) []core.AgentActivity {
	sessions, messages := r.sessionsAndMessages(ctx)
	return analytics.ActiveAgents(sessions, messages, r.now())
}

func (r *Reader) AgentUsage(ctx context.Context, rng core.DateRange) []core.AgentUsage {
	return analytics.AgentUsage(r.rawMessages(ctx), rng, r.now())
}

func (r *Reader) CostHistory(ctx context.Context) []core.CostHistoryEntry {
	return analytics.CostHistory(r.rawMessages(ctx), r.now())
}

func (r *Reader) ModelUsage(ctx context.Context) []core.ModelUsage {
	return analytics.ModelUsage(r.rawMessages(ctx))
}

func (r *Reader) HourlyActivity(ctx context.Context) []core.HourlyActivity {
	return analytics.HourlyActivity(r.rawMessages(ctx), r.now().Location())
}

// SessionDetail renders one session's messages. Part listings are always read
// fresh; only the message listing goes through the cache.
func (r *Reader) SessionDetail(ctx context.Context, sessionID string) []core.SessionMessage {
	messages := r.sessionMessages(ctx, sessionID)

	parts := make([][]core.RawPart, len(messages))
	var g errgroup.Group
	g.SetLimit(maxParallelParts)
	for i, m := range messages {
		g.Go(func() error {
			parts[i] = r.source().ListParts(ctx, m.ID)
			return nil
		})
	}
	_ = g.Wait()

	byMessage := make(map[string][]core.RawPart, len(messages))
	for i, m := range messages {
		byMessage[m.ID] = parts[i]
	}
	return analytics.SessionDetail(messages, byMessage)
}
