// Package partial implements named regions that can be re-rendered on their own
// and merged into a live page by the client.
//
// A full render emits every region between comment markers:
//
//	<!--frsh-partial:NAME:MODE-->...<!--/frsh-partial:NAME-->
//
// A partial render runs the same component tree with a State naming the requested
// regions. Output outside those regions is discarded and each requested region
// captures exactly the bytes its children produce in a full render.
package partial

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/fresco/core/head"
	"github.com/dmitrymomot/fresco/core/island"
)

// Declaration is a region seen during a render.
type Declaration struct {
	Name string
	Mode Mode
}

type stateKey struct{}

// State tracks the regions of one render.
type State struct {
	mu         sync.Mutex
	requested  []string
	strict     bool
	declared   []Declaration
	seq        int
	latest     map[string]int
	dropped    map[int]struct{}
	captures   []captured
	duplicates []*DuplicateError
}

// captured is the output of a requested region, tagged with its declaration
// sequence number.
type captured struct {
	seq     int
	payload Payload
}

// Option configures a State.
type Option func(*State)

// WithRequested switches the render to partial mode for the named regions.
func WithRequested(names []string) Option {
	return func(s *State) {
		s.requested = names
	}
}

// WithStrictNames makes a duplicate region name a render error instead of a diagnostic.
func WithStrictNames() Option {
	return func(s *State) {
		s.strict = true
	}
}

// NewState creates a render state.
func NewState(opts ...Option) *State {
	s := &State{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithState attaches the state to the render context.
func WithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// FromContext returns the state attached to the context, if any.
func FromContext(ctx context.Context) *State {
	s, _ := ctx.Value(stateKey{}).(*State)
	return s
}

// Partial reports whether the render is a partial render.
func (s *State) Partial() bool {
	return len(s.requested) > 0
}

// Requested returns the requested region names.
func (s *State) Requested() []string {
	return s.requested
}

func (s *State) isRequested(name string) bool {
	return slices.Contains(s.requested, name)
}

// declare records a region and returns its 1-based declaration sequence
// number. Regions are numbered in the order their start markers are written.
func (s *State) declare(name string, mode Mode) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		s.latest = make(map[string]int)
		s.dropped = make(map[int]struct{})
	}
	if prev, ok := s.latest[name]; ok {
		dup := &DuplicateError{Name: name}
		if s.strict {
			return 0, dup
		}
		s.duplicates = append(s.duplicates, dup)
		s.dropped[prev] = struct{}{}
		s.declared = slices.DeleteFunc(s.declared, func(d Declaration) bool { return d.Name == name })
	}
	s.seq++
	s.latest[name] = s.seq
	s.declared = append(s.declared, Declaration{Name: name, Mode: mode})
	return s.seq, nil
}

func (s *State) capture(seq int, p Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captures = append(s.captures, captured{seq: seq, payload: p})
}

// Declared returns the regions seen, in declaration order.
func (s *State) Declared() []Declaration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.declared)
}

// Payloads returns the captured regions in declaration order. Only the last
// declaration of a name is returned, whatever order the regions finished in,
// and markers of dropped declarations are removed from the content.
func (s *State) Payloads() []Payload {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Payload, 0, len(s.captures))
	for _, c := range s.winners() {
		p := c.payload
		p.Content = s.prune(p.Content, c.seq)
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b Payload) int {
		return s.position(a.Name) - s.position(b.Name)
	})
	return out
}

// Prune removes the markers of dropped declarations from a full render.
func (s *State) Prune(doc []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.dropped) == 0 {
		return doc
	}
	return []byte(s.prune(string(doc), 0))
}

func (s *State) winners() []captured {
	var out []captured
	for _, c := range s.captures {
		if s.latest[c.payload.Name] == c.seq {
			out = append(out, c)
		}
	}
	return out
}

// prune removes the markers of dropped declarations from out. The k-th start
// marker in out belongs to declaration base+k; its end marker is found by nesting.
func (s *State) prune(out string, base int) string {
	if len(s.dropped) == 0 {
		return out
	}

	var b strings.Builder
	var open []bool
	seq := base
	rest := out
	for {
		i := strings.Index(rest, "<!--")
		if i < 0 {
			break
		}
		j := strings.Index(rest[i+4:], "-->")
		if j < 0 {
			break
		}
		end := i + 4 + j + 3

		keep := true
		if m, ok, err := ParseMarker(rest[i+4 : i+4+j]); ok && err == nil {
			if m.End {
				if n := len(open); n > 0 {
					keep = !open[n-1]
					open = open[:n-1]
				}
			} else {
				seq++
				_, drop := s.dropped[seq]
				open = append(open, drop)
				keep = !drop
			}
		}

		b.WriteString(rest[:i])
		if keep {
			b.WriteString(rest[i:end])
		}
		rest = rest[end:]
	}
	b.WriteString(rest)
	return b.String()
}

func (s *State) position(name string) int {
	return slices.IndexFunc(s.declared, func(d Declaration) bool { return d.Name == name })
}

// Missing returns the requested names no region declared during the render.
func (s *State) Missing() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var missing []string
	won := s.winners()
	for _, name := range s.requested {
		if !slices.ContainsFunc(won, func(c captured) bool { return c.payload.Name == name }) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Duplicates returns the duplicate-name diagnostics of the render.
func (s *State) Duplicates() []*DuplicateError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.duplicates)
}

// Region renders children as the named region. Islands inside the region are
// numbered in their own scope.
func Region(name string, mode Mode, children templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if !ValidName(name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		m, err := ParseMode(string(mode))
		if err != nil {
			return err
		}
		body := children
		if body == nil {
			body = templ.NopComponent
		}
		ctx = island.WithScope(ctx)

		st := FromContext(ctx)
		if st == nil {
			return writeRegion(ctx, w, name, m, body)
		}
		seq, err := st.declare(name, m)
		if err != nil {
			return err
		}

		// Regions that are not requested keep their markers: a requested
		// ancestor captures them as they appear in a full render.
		if !st.Partial() || !st.isRequested(name) {
			return writeRegion(ctx, w, name, m, body)
		}

		var buf bytes.Buffer
		hc := head.NewCollector()
		if err := body.Render(head.WithCollector(ctx, hc), &buf); err != nil {
			return err
		}
		st.capture(seq, Payload{Name: name, Mode: m, Content: buf.String(), Head: hc.Elements()})

		// Enclosing requested regions see the full-render form.
		return writeRegion(ctx, w, name, m, templ.Raw(buf.String()))
	})
}

func writeRegion(ctx context.Context, w io.Writer, name string, mode Mode, children templ.Component) error {
	if _, err := io.WriteString(w, StartMarker(name, mode)); err != nil {
		return err
	}
	if err := children.Render(ctx, w); err != nil {
		return err
	}
	_, err := io.WriteString(w, EndMarker(name))
	return err
}
