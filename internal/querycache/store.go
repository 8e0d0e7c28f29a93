package querycache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Fetcher loads the fresh value for one key. Registered per key so that
// invalidation can refetch entries that are actively observed.
type Fetcher func(ctx context.Context) (any, error)

// Subscriber receives push notifications when any key under its prefix is
// written. Callbacks run synchronously on the writing goroutine.
type Subscriber func(key Key, value any)

// Entry is a (key, value) pair returned by prefix reads.
type Entry struct {
	Key       Key
	Value     any
	Stale     bool
	UpdatedAt time.Time
}

// InvalidateOptions controls invalidation behavior.
type InvalidateOptions struct {
	// ActiveOnly marks every matching entry stale but refetches only entries
	// with at least one active observer. When false, every matching entry
	// with a registered fetcher is refetched.
	ActiveOnly bool
}

type entry struct {
	key       Key
	value     any
	stale     bool
	updatedAt time.Time
	observers int
	fetch     Fetcher
}

type subscription struct {
	prefix Key
	fn     Subscriber
}

type refetchOp struct {
	key    Key
	cancel context.CancelFunc
}

// Store is an in-memory cache of query results keyed by structured keys.
// It supports point get/set, prefix multi-get, invalidation that refetches
// only active observers, cancellation of in-flight refetches, and push
// notification to prefix subscribers.
//
// All methods are safe for concurrent use. Subscriber callbacks are invoked
// outside the store lock.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	subs     map[int]subscription
	nextSub  int
	inflight map[string]*refetchOp
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// New creates an empty store.
func New(logger *slog.Logger) *Store {
	return &Store{
		entries:  make(map[string]*entry),
		subs:     make(map[int]subscription),
		inflight: make(map[string]*refetchOp),
		logger:   logger,
	}
}

// Get returns the cached value for the key, if present.
func (s *Store) Get(key Key) (any, bool) {
	s.mu.RLock()
	e, ok := s.entries[key.String()]
	s.mu.RUnlock()

	if !ok {
		cacheMisses.Inc()
		return nil, false
	}
	cacheHits.Inc()
	return e.value, true
}

// Set writes a value at the key, clears any stale mark, and notifies
// subscribers whose prefix covers the key.
func (s *Store) Set(key Key, value any) {
	k := key.String()

	s.mu.Lock()
	e, ok := s.entries[k]
	if !ok {
		e = &entry{key: key.Clone()}
		s.entries[k] = e
	}
	e.value = value
	e.stale = false
	e.updatedAt = time.Now()

	notify := make([]Subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		if key.HasPrefix(sub.prefix) {
			notify = append(notify, sub.fn)
		}
	}
	s.mu.Unlock()

	cacheWrites.Inc()

	for _, fn := range notify {
		fn(key, value)
	}
}

// GetAll returns every cached entry whose key starts with the prefix.
func (s *Store) GetAll(prefix Key) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, e := range s.entries {
		if e.key.HasPrefix(prefix) {
			out = append(out, Entry{
				Key:       e.key.Clone(),
				Value:     e.value,
				Stale:     e.stale,
				UpdatedAt: e.updatedAt,
			})
		}
	}
	return out
}

// SetFetcher registers the refetch function for a key. The entry is created
// if it does not exist yet; its value stays absent until the first Set.
func (s *Store) SetFetcher(key Key, fetch Fetcher) {
	k := key.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[k]
	if !ok {
		e = &entry{key: key.Clone()}
		s.entries[k] = e
	}
	e.fetch = fetch
}

// Observe marks the key as actively observed (a screen is showing it) and
// returns a release function. Invalidation refetches only observed entries
// when ActiveOnly is set.
func (s *Store) Observe(key Key) (release func()) {
	k := key.String()

	s.mu.Lock()
	e, ok := s.entries[k]
	if !ok {
		e = &entry{key: key.Clone()}
		s.entries[k] = e
	}
	e.observers++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if e, ok := s.entries[k]; ok && e.observers > 0 {
				e.observers--
			}
			s.mu.Unlock()
		})
	}
}

// Subscribe registers a push callback for writes under the prefix and
// returns an unsubscribe function.
func (s *Store) Subscribe(prefix Key, fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = subscription{prefix: prefix.Clone(), fn: fn}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Invalidate marks every entry under the prefix stale and starts background
// refetches according to opts. Entries without a fetcher are only marked.
func (s *Store) Invalidate(prefix Key, opts InvalidateOptions) {
	type refetch struct {
		key   Key
		fetch Fetcher
	}

	s.mu.Lock()
	var refetches []refetch
	for _, e := range s.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		e.stale = true
		cacheInvalidations.Inc()

		if e.fetch == nil {
			continue
		}
		if opts.ActiveOnly && e.observers == 0 {
			continue
		}
		refetches = append(refetches, refetch{key: e.key.Clone(), fetch: e.fetch})
	}
	s.mu.Unlock()

	for _, r := range refetches {
		s.startRefetch(r.key, r.fetch)
	}
}

// CancelInFlight cancels every running refetch whose key starts with the
// prefix. A late response from a cancelled refetch never reaches the cache.
func (s *Store) CancelInFlight(prefix Key) {
	s.mu.Lock()
	var cancels []context.CancelFunc
	for k, op := range s.inflight {
		if op.key.HasPrefix(prefix) {
			cancels = append(cancels, op.cancel)
			delete(s.inflight, k)
		}
	}
	s.mu.Unlock()

	for _, cancel := range cancels {
		cacheRefetchesCancelled.Inc()
		cancel()
	}
}

// Wait blocks until all background refetches settle. Intended for shutdown
// and tests.
func (s *Store) Wait() {
	s.wg.Wait()
}

func (s *Store) startRefetch(key Key, fetch Fetcher) {
	k := key.String()

	ctx, cancel := context.WithCancel(context.Background())
	op := &refetchOp{key: key.Clone(), cancel: cancel}

	s.mu.Lock()
	// A newer refetch supersedes a running one for the same key.
	if prev, ok := s.inflight[k]; ok {
		prev.cancel()
	}
	s.inflight[k] = op
	s.mu.Unlock()

	cacheRefetches.Inc()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		value, err := fetch(ctx)

		s.mu.Lock()
		// Only the most recent refetch for the key may publish its result.
		owns := s.inflight[k] == op
		if owns {
			delete(s.inflight, k)
		}
		s.mu.Unlock()

		if !owns || ctx.Err() != nil {
			return
		}

		if err != nil {
			s.logger.Warn("background refetch failed",
				slog.String("key", k),
				slog.String("error", err.Error()),
			)
			return
		}

		s.Set(key, value)
	}()
}
