package island

import (
	"context"
	"sync"
)

type scopeKey struct{}

// scope numbers positional islands and tracks keyed identities for one region.
type scope struct {
	mu       sync.Mutex
	counters map[string]int
	keys     map[Identity]struct{}
	dup      func(Identity)
}

// WithScope opens a new identity scope. Regions open one for their children so
// positional indexes are stable regardless of what renders outside the region.
func WithScope(ctx context.Context) context.Context {
	s := &scope{
		counters: make(map[string]int),
		keys:     make(map[Identity]struct{}),
	}
	if c := FromContext(ctx); c != nil {
		s.dup = c.duplicate
	}
	return context.WithValue(ctx, scopeKey{}, s)
}

func scopeFrom(ctx context.Context) *scope {
	s, _ := ctx.Value(scopeKey{}).(*scope)
	return s
}

func (s *scope) next(typ, key string) Identity {
	if s == nil {
		return Identity{Type: typ, Key: key}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if key == "" {
		id := Identity{Type: typ, Index: s.counters[typ]}
		s.counters[typ]++
		return id
	}

	id := Identity{Type: typ, Key: key}
	if _, ok := s.keys[id]; ok && s.dup != nil {
		s.dup(id)
	}
	s.keys[id] = struct{}{}
	return id
}
