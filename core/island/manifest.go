package island

import (
	"context"
	"sync"
)

// Ref is a client-loadable reference to an island component type.
type Ref struct {
	Type string `json:"type"`
	Src  string `json:"src,omitempty"`
}

// Manifest resolves component types to client-loadable references.
// It is supplied by the build pipeline.
type Manifest interface {
	Resolve(typ string) (ref string, ok bool)
}

// MapManifest is a Manifest backed by a map of type to reference.
type MapManifest map[string]string

// Resolve implements Manifest.
func (m MapManifest) Resolve(typ string) (string, bool) {
	ref, ok := m[typ]
	return ref, ok
}

type collectorKey struct{}

// Collector records the island types rendered during one render and any
// duplicate identities.
type Collector struct {
	mu         sync.Mutex
	types      []string
	seen       map[string]struct{}
	duplicates []*DuplicateError
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[string]struct{})}
}

// WithCollector attaches a collector to the render context and opens the root scope.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return WithScope(context.WithValue(ctx, collectorKey{}, c))
}

// FromContext returns the collector attached to the context, if any.
func FromContext(ctx context.Context) *Collector {
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}

func (c *Collector) record(id Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[id.Type]; !ok {
		c.seen[id.Type] = struct{}{}
		c.types = append(c.types, id.Type)
	}
}

func (c *Collector) duplicate(id Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duplicates = append(c.duplicates, &DuplicateError{Identity: id})
}

// Types returns the rendered island types in first-rendered order.
func (c *Collector) Types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.types...)
}

// Duplicates returns the duplicate identities seen during the render.
func (c *Collector) Duplicates() []*DuplicateError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*DuplicateError(nil), c.duplicates...)
}

// Refs resolves the rendered types through the manifest. Types the manifest does
// not know are returned separately. A nil manifest yields refs without sources.
func (c *Collector) Refs(m Manifest) (refs []Ref, unresolved []string) {
	for _, typ := range c.Types() {
		if m == nil {
			refs = append(refs, Ref{Type: typ})
			continue
		}
		src, ok := m.Resolve(typ)
		if !ok {
			unresolved = append(unresolved, typ)
			continue
		}
		refs = append(refs, Ref{Type: typ, Src: src})
	}
	return refs, unresolved
}
