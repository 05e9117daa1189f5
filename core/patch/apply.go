package patch

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dmitrymomot/fresco/core/island"
	"github.com/dmitrymomot/fresco/core/partial"
)

// step is one validated payload waiting to be patched in.
type step struct {
	payload partial.Payload
	mode    partial.Mode
	context *html.Node
	nodes   []*html.Node
}

// Apply merges a partial envelope into the document. Every payload is validated
// before the first mutation: a payload naming an unknown region or carrying
// unbalanced markup fails the whole envelope and leaves the document untouched.
//
// Replace payloads reconcile islands by identity within the region: an island
// whose identity is still present keeps its instance and receives the new
// props, vanished islands are unmounted and new ones are mounted. Append and
// prepend payloads only mount the islands they bring. Head elements are merged
// last.
func (d *Document) Apply(env *partial.Envelope) error {
	if d == nil {
		return ErrNilDocument
	}
	if env == nil {
		return ErrNilEnvelope
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	steps, err := d.prepare(env.Partials)
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range steps {
		if err := d.patch(s); err != nil {
			errs = append(errs, &RegionError{Name: s.payload.Name, Err: err})
		}
	}
	d.mergeHead(env.HeadElements())
	d.mergeRefs(env.Islands)
	return errors.Join(errs...)
}

// prepare validates payloads in order. A region may be introduced by the
// content of an earlier payload of the same envelope.
func (d *Document) prepare(payloads []partial.Payload) ([]step, error) {
	known := make(map[string]*html.Node, len(d.regions))
	for name, r := range d.regions {
		known[name] = r.start.Parent
	}

	steps := make([]step, 0, len(payloads))
	for _, p := range payloads {
		mode, err := partial.ParseMode(string(p.Mode))
		if err != nil {
			return nil, &RegionError{Name: p.Name, Err: fmt.Errorf("%w: %w", ErrMalformedPayload, err)}
		}
		parent, ok := known[p.Name]
		if !ok {
			return nil, &RegionError{Name: p.Name, Err: ErrMissingRegion}
		}

		nodes, err := parseFragment(p.Content, parent)
		if err != nil {
			return nil, &RegionError{Name: p.Name, Err: err}
		}
		res, err := scan(nodes, p.Name)
		if err != nil {
			return nil, &RegionError{Name: p.Name, Err: fmt.Errorf("%w: %w", ErrInvalidFragment, err)}
		}
		for _, r := range res.regions {
			known[r.Name] = parent
		}

		steps = append(steps, step{payload: p, mode: mode, context: parent, nodes: nodes})
	}
	return steps, nil
}

func parseFragment(content string, parent *html.Node) ([]*html.Node, error) {
	if parent == nil || parent.Type != html.ElementNode {
		parent = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), parent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFragment, err)
	}
	return nodes, nil
}

// patch applies one step. The region is looked up again since an earlier
// step may have replaced it.
func (d *Document) patch(s step) error {
	r, ok := d.regions[s.payload.Name]
	if !ok {
		return ErrMissingRegion
	}

	nodes := s.nodes
	if r.start.Parent != s.context {
		var err error
		if nodes, err = parseFragment(s.payload.Content, r.start.Parent); err != nil {
			return err
		}
	}

	var err error
	switch s.mode {
	case partial.ModeAppend:
		insertBefore(r.end, nodes)
		err = d.mountNew(nodes, r.Name)
	case partial.ModePrepend:
		insertBefore(r.start.NextSibling, nodes)
		err = d.mountNew(nodes, r.Name)
	default:
		err = d.replace(r, nodes)
	}

	if serr := d.rescan(); serr != nil {
		err = errors.Join(err, serr)
	}
	return err
}

// mountNew mounts every island found in freshly inserted nodes.
func (d *Document) mountNew(nodes []*html.Node, region string) error {
	res, err := scan(nodes, region)
	if err != nil {
		return err
	}
	var errs []error
	for _, f := range res.islands {
		m, err := d.mount(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		d.islands = append(d.islands, m)
	}
	return errors.Join(errs...)
}

// replace swaps the region content for nodes and reconciles islands through
// the table of identities previously mounted in the region.
func (d *Document) replace(r *LiveRegion, nodes []*html.Node) error {
	var previous []*Mounted
	for _, m := range d.islands {
		if r.contains(m.Node) {
			previous = append(previous, m)
		}
	}
	// Later declarations win a shared identity.
	table := make(map[islandKey]*Mounted, len(previous))
	for _, m := range previous {
		table[islandKey{region: m.Region, id: m.Identity}] = m
	}

	res, err := scan(nodes, r.Name)
	if err != nil {
		return err
	}

	var (
		reused   []*Mounted
		replaced []*html.Node
		fresh    []foundIsland
	)
	for _, f := range res.islands {
		if slices.ContainsFunc(replaced, func(n *html.Node) bool { return isDescendant(f.node, n) }) {
			continue
		}
		key := islandKey{region: f.region, id: f.identity}
		m, ok := table[key]
		if !ok {
			fresh = append(fresh, f)
			continue
		}
		delete(table, key)
		reused = append(reused, m)
		replaced = append(replaced, f.node)

		// The live node takes the place of the rendered one and keeps its
		// subtree; the instance owns what is inside.
		detach(m.Node)
		if parent := f.node.Parent; parent != nil {
			parent.InsertBefore(m.Node, f.node)
			parent.RemoveChild(f.node)
		} else {
			nodes[slices.Index(nodes, f.node)] = m.Node
		}
		m.Node.Attr = slices.Clone(f.node.Attr)
	}

	keep := make(map[*Mounted]bool, len(reused))
	for _, m := range reused {
		keep[m] = true
	}
	for _, m := range previous {
		if keep[m] {
			continue
		}
		// Islands nested in a reused island stay with it.
		if slices.ContainsFunc(reused, func(o *Mounted) bool { return o != m && isDescendant(m.Node, o.Node) }) {
			keep[m] = true
		}
	}

	var errs []error
	live := d.islands[:0]
	for _, m := range d.islands {
		if slices.Contains(previous, m) && !keep[m] {
			if m.Instance != nil {
				m.Instance.Unmount()
			}
			continue
		}
		live = append(live, m)
	}
	d.islands = live

	removeBetween(r.start, r.end)
	insertBefore(r.end, nodes)

	for _, m := range reused {
		props := island.Props(attrValue(m.Node, island.PropsAttr))
		if bytes.Equal(props, m.Props) {
			continue
		}
		m.Props = props
		if m.Instance != nil {
			if err := m.Instance.Update(props); err != nil {
				errs = append(errs, fmt.Errorf("update %s: %w", m.Identity, err))
			}
		}
	}

	for _, f := range fresh {
		m, err := d.mount(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		d.islands = append(d.islands, m)
	}
	return errors.Join(errs...)
}

func detach(n *html.Node) *html.Node {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	return n
}

// insertBefore inserts nodes, in order, before ref.
func insertBefore(ref *html.Node, nodes []*html.Node) {
	parent := ref.Parent
	for _, n := range nodes {
		parent.InsertBefore(detach(n), ref)
	}
}

// removeBetween removes every sibling strictly between start and end.
func removeBetween(start, end *html.Node) {
	for n := start.NextSibling; n != nil && n != end; {
		next := n.NextSibling
		start.Parent.RemoveChild(n)
		n = next
	}
}

func (d *Document) mergeRefs(refs []island.Ref) {
	for _, ref := range refs {
		i := slices.IndexFunc(d.refs, func(r island.Ref) bool { return r.Type == ref.Type })
		if i < 0 {
			d.refs = append(d.refs, ref)
			continue
		}
		d.refs[i] = ref
	}
}
