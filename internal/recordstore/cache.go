package recordstore

import (
	"context"
	"sync"
)

// CachedStore is a read-through cache of whole collections in front of
// another Store. Any Apply drops the cached copy of every collection it
// touches, whether or not the write succeeded.
type CachedStore struct {
	inner Store
	mu    sync.RWMutex
	cache map[Collection][]Record
	// gen changes on every write so a slow read never caches stale data.
	gen uint64
}

func NewCachedStore(inner Store) *CachedStore {
	return &CachedStore{
		inner: inner,
		cache: make(map[Collection][]Record),
	}
}

func (s *CachedStore) List(ctx context.Context, c Collection) ([]Record, error) {
	s.mu.RLock()
	cached, ok := s.cache[c]
	gen := s.gen
	s.mu.RUnlock()
	if ok {
		return append([]Record(nil), cached...), nil
	}

	records, err := s.inner.List(ctx, c)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.cache[c] = records
	}
	s.mu.Unlock()

	return append([]Record(nil), records...), nil
}

func (s *CachedStore) Get(ctx context.Context, c Collection, id string) (Record, error) {
	records, err := s.List(ctx, c)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (s *CachedStore) Apply(ctx context.Context, mutations ...Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	for _, m := range mutations {
		delete(s.cache, m.Collection)
	}
	return s.inner.Apply(ctx, mutations...)
}

func (s *CachedStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

func (s *CachedStore) Close() error {
	return s.inner.Close()
}
