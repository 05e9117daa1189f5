package head

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/a-h/templ"
)

// SlotMarker is the placeholder replaced by collected head elements after a full render.
const SlotMarker = "<!--frsh-head-->"

type collectorKey struct{}

// Collector accumulates head elements during one render.
type Collector struct {
	mu    sync.Mutex
	order []string
	elems map[string]Element
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{elems: make(map[string]Element)}
}

// Add records elements. An element whose key was already seen replaces the
// earlier value and keeps its position.
func (c *Collector) Add(elems ...Element) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range elems {
		key := e.DedupKey()
		if _, ok := c.elems[key]; !ok {
			c.order = append(c.order, key)
		}
		c.elems[key] = e
	}
}

// Elements returns the collected elements in first-seen order.
func (c *Collector) Elements() []Element {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Element, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.elems[key])
	}
	return out
}

// Len returns the number of distinct elements.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// WithCollector attaches a collector to the render context.
func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, collectorKey{}, c)
}

// FromContext returns the collector attached to the context, if any.
func FromContext(ctx context.Context) *Collector {
	c, _ := ctx.Value(collectorKey{}).(*Collector)
	return c
}

// Head declares head elements from anywhere in the component tree.
// Without a collector in the context the elements are written inline.
func Head(elems ...Element) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if c := FromContext(ctx); c != nil {
			c.Add(elems...)
			return nil
		}
		_, err := io.WriteString(w, Render(elems))
		return err
	})
}

// Slot marks where collected head elements are written in a full document.
func Slot() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, SlotMarker)
		return err
	})
}

// Fill writes elements into the slot of a rendered document. Without a slot the
// elements are inserted before </head>; without a head the document is unchanged.
func Fill(doc []byte, elems []Element) []byte {
	rendered := []byte(Render(elems))

	if i := bytes.Index(doc, []byte(SlotMarker)); i >= 0 {
		out := make([]byte, 0, len(doc)+len(rendered))
		out = append(out, doc[:i]...)
		out = append(out, rendered...)
		return append(out, doc[i+len(SlotMarker):]...)
	}

	if i := bytes.Index(bytes.ToLower(doc), []byte("</head>")); i >= 0 {
		out := make([]byte, 0, len(doc)+len(rendered))
		out = append(out, doc[:i]...)
		out = append(out, rendered...)
		return append(out, doc[i:]...)
	}

	return doc
}
