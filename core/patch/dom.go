package patch

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dmitrymomot/fresco/core/island"
	"github.com/dmitrymomot/fresco/core/partial"
)

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func attrValue(n *html.Node, name string) string {
	v, _ := attr(n, name)
	return v
}

func setAttr(n *html.Node, name, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attrValue(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// isDescendant reports whether n is anc or lies below it.
func isDescendant(n, anc *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == anc {
			return true
		}
	}
	return false
}

// foundIsland is an island root discovered in a subtree.
type foundIsland struct {
	node     *html.Node
	identity island.Identity
	region   string
	props    island.Props
}

type scanResult struct {
	regions []*LiveRegion
	islands []foundIsland
}

// scan walks nodes in document order. It pairs every region start marker with
// its end marker and reports every island root with the innermost region
// containing it. outer names the region the nodes already sit in.
func scan(nodes []*html.Node, outer string) (scanResult, error) {
	var (
		res   scanResult
		stack []*LiveRegion
	)

	current := func() string {
		if len(stack) == 0 {
			return outer
		}
		return stack[len(stack)-1].Name
	}

	var walk func(*html.Node) error
	walk = func(n *html.Node) error {
		switch n.Type {
		case html.CommentNode:
			m, ok, err := partial.ParseMarker(n.Data)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if !m.End {
				stack = append(stack, &LiveRegion{Name: m.Name, Mode: m.Mode, start: n})
				return nil
			}
			if len(stack) == 0 || stack[len(stack)-1].Name != m.Name {
				return &RegionError{Name: m.Name, Err: ErrUnbalancedRegion}
			}
			r := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if r.start.Parent != n.Parent {
				return &RegionError{Name: m.Name, Err: ErrUnbalancedRegion}
			}
			r.end = n
			res.regions = append(res.regions, r)

		case html.ElementNode:
			if typ, ok := attr(n, island.TypeAttr); ok {
				res.islands = append(res.islands, foundIsland{
					node:     n,
					identity: identityOf(n, typ),
					region:   current(),
					props:    island.Props(attrValue(n, island.PropsAttr)),
				})
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}

	for _, n := range nodes {
		if err := walk(n); err != nil {
			return scanResult{}, err
		}
	}
	if len(stack) > 0 {
		return scanResult{}, &RegionError{Name: stack[len(stack)-1].Name, Err: ErrUnbalancedRegion}
	}
	return res, nil
}

func identityOf(n *html.Node, typ string) island.Identity {
	if key := attrValue(n, island.KeyAttr); key != "" {
		return island.Identity{Type: typ, Key: key}
	}
	idx, _ := strconv.Atoi(attrValue(n, island.IndexAttr))
	return island.Identity{Type: typ, Index: idx}
}
