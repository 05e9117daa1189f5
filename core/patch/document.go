package patch

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"

	"github.com/dmitrymomot/fresco/core/island"
	"github.com/dmitrymomot/fresco/core/partial"
)

// LiveRegion is the part of the live document between the markers of a named
// region.
type LiveRegion struct {
	Name string
	Mode partial.Mode

	start *html.Node
	end   *html.Node
}

// Nodes returns the top-level nodes currently inside the region.
func (r *LiveRegion) Nodes() []*html.Node {
	var nodes []*html.Node
	for n := r.start.NextSibling; n != nil && n != r.end; n = n.NextSibling {
		nodes = append(nodes, n)
	}
	return nodes
}

// InnerHTML renders the region content without its markers.
func (r *LiveRegion) InnerHTML() string {
	var b strings.Builder
	for _, n := range r.Nodes() {
		_ = html.Render(&b, n)
	}
	return b.String()
}

// contains reports whether n lies inside the region.
func (r *LiveRegion) contains(n *html.Node) bool {
	for c := r.start.NextSibling; c != nil && c != r.end; c = c.NextSibling {
		if isDescendant(n, c) {
			return true
		}
	}
	return false
}

type islandKey struct {
	region string
	id     island.Identity
}

// Document is a live page: a parsed DOM with its regions and the reconciliation
// table of mounted islands. It is safe for concurrent use.
type Document struct {
	mu sync.Mutex

	root    *html.Node
	rt      Runtime
	buildID string
	refs    []island.Ref
	regions map[string]*LiveRegion
	order   []string
	islands []*Mounted
}

// Parse reads a full-render document, discovers its regions and mounts its
// islands through rt. A nil rt tracks islands without mounting them.
func Parse(r io.Reader, rt Runtime) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	d := &Document{root: root, rt: rt}
	if script := findByID(root, partial.StateScriptID); script != nil {
		state := gjson.Parse(textContent(script))
		d.buildID = state.Get("buildId").String()
		d.refs = decodeRefs(state.Get("islands"))
	}

	res, err := scan([]*html.Node{root}, "")
	if err != nil {
		return nil, err
	}
	d.index(res.regions)

	for _, f := range res.islands {
		m, err := d.mount(f)
		if err != nil {
			d.unmountAll()
			return nil, err
		}
		d.islands = append(d.islands, m)
	}
	return d, nil
}

func decodeRefs(v gjson.Result) []island.Ref {
	var refs []island.Ref
	v.ForEach(func(_, ref gjson.Result) bool {
		refs = append(refs, island.Ref{
			Type: ref.Get("type").String(),
			Src:  ref.Get("src").String(),
		})
		return true
	})
	return refs
}

// BuildID returns the build identifier of the document, empty when the
// document carries no state script.
func (d *Document) BuildID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buildID
}

// Refs returns the client references of every island type the page has loaded.
func (d *Document) Refs() []island.Ref {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.refs)
}

// Region returns the named region.
func (d *Document) Region(name string) (*LiveRegion, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.regions[name]
	return r, ok
}

// RegionNames returns the region names in document order.
func (d *Document) RegionNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.order)
}

// Islands returns a snapshot of the reconciliation table in document order.
func (d *Document) Islands() []Mounted {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Mounted, 0, len(d.islands))
	for _, m := range d.islands {
		out = append(out, *m)
	}
	return out
}

// Render writes the current document.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// HTML returns the current document as a string.
func (d *Document) HTML() string {
	var b strings.Builder
	_ = d.Render(&b)
	return b.String()
}

// Close unmounts every island.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unmountAll()
}

// index replaces the region index. Regions are reported as their end marker
// is reached, so they are reordered by start marker.
func (d *Document) index(regions []*LiveRegion) {
	d.regions = make(map[string]*LiveRegion, len(regions))
	d.order = d.order[:0]

	if len(regions) == 0 {
		return
	}
	byStart := make(map[*html.Node]*LiveRegion, len(regions))
	for _, r := range regions {
		byStart[r.start] = r
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if r, ok := byStart[n]; ok {
			if _, dup := d.regions[r.Name]; !dup {
				d.order = append(d.order, r.Name)
			}
			d.regions[r.Name] = r
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
}

// rescan rebuilds the region index after a patch and refreshes the region of
// every mounted island.
func (d *Document) rescan() error {
	res, err := scan([]*html.Node{d.root}, "")
	if err != nil {
		return err
	}
	d.index(res.regions)

	pos := make(map[*html.Node]int, len(res.islands))
	for i, f := range res.islands {
		pos[f.node] = i
	}
	for _, m := range d.islands {
		if i, ok := pos[m.Node]; ok {
			m.Region = res.islands[i].region
		}
	}
	slices.SortStableFunc(d.islands, func(a, b *Mounted) int {
		return pos[a.Node] - pos[b.Node]
	})
	return nil
}

func (d *Document) mount(f foundIsland) (*Mounted, error) {
	m := &Mounted{
		Identity: f.identity,
		Region:   f.region,
		Node:     f.node,
		Props:    f.props,
	}
	if d.rt == nil {
		return m, nil
	}
	inst, err := d.rt.Mount(f.node, f.props)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMount, f.identity, err)
	}
	m.Instance = inst
	return m, nil
}

func (d *Document) unmountAll() {
	for _, m := range d.islands {
		if m.Instance != nil {
			m.Instance.Unmount()
		}
	}
	d.islands = nil
}
