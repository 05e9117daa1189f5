package patch

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dmitrymomot/fresco/core/head"
)

// mergeHead merges elements into <head> by dedup key. An element whose key is
// already present replaces it in place, others are appended. Nothing is ever
// removed; the title is a singleton whatever its key.
func (d *Document) mergeHead(elems []head.Element) {
	if len(elems) == 0 {
		return
	}
	h := findElement(d.root, atom.Head)
	if h == nil {
		return
	}

	byKey := make(map[string]*html.Node)
	var title *html.Node
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == atom.Title && title == nil {
			title = c
		}
		byKey[nodeKey(c)] = c
	}

	for _, e := range elems {
		key := e.DedupKey()

		if strings.EqualFold(e.Tag, "title") && title != nil {
			setText(title, e.Content)
			setAttr(title, head.KeyAttr, key)
			byKey[key] = title
			continue
		}

		n := parseHeadElement(e, h)
		if n == nil {
			continue
		}
		if old, ok := byKey[key]; ok && old.Parent == h {
			h.InsertBefore(n, old)
			h.RemoveChild(old)
		} else {
			h.AppendChild(n)
		}
		byKey[key] = n
		if n.DataAtom == atom.Title {
			title = n
		}
	}
}

// nodeKey returns the dedup key of a live head element: the rendered key
// attribute or the semantic identity of the element.
func nodeKey(n *html.Node) string {
	if key := attrValue(n, head.KeyAttr); key != "" {
		return key
	}
	return head.ImplicitKey(n.Data, func(name string) string { return attrValue(n, name) }, textContent(n))
}

func parseHeadElement(e head.Element, h *html.Node) *html.Node {
	nodes, err := html.ParseFragment(strings.NewReader(e.HTML()), h)
	if err != nil {
		return nil
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return n
		}
	}
	return nil
}
