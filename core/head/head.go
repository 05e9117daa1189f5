// Package head collects document-head elements (title, meta, link, style, script)
// declared anywhere in a render and serializes them with stable deduplication keys.
//
// Each element carries a dedup key: the explicit key given with WithKey or, when
// omitted, the element's semantic identity (see Element.DedupKey). Collecting two
// elements with the same key keeps the first position and the last value.
package head

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/a-h/templ"
)

// KeyAttr is the attribute carrying an element's dedup key in rendered markup.
const KeyAttr = "data-frsh-key"

// Attr is a single element attribute. Attributes keep declaration order.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Element is one head element.
type Element struct {
	Tag     string `json:"tag"`
	Attrs   []Attr `json:"attrs,omitempty"`
	Content string `json:"content,omitempty"`
	Key     string `json:"key,omitempty"`
}

// Title creates a <title> element. Titles are singletons.
func Title(text string) Element {
	return Element{Tag: "title", Content: text}
}

// Meta creates a <meta name=... content=...> element.
func Meta(name, content string) Element {
	return Element{Tag: "meta", Attrs: []Attr{{"name", name}, {"content", content}}}
}

// MetaProperty creates a <meta property=... content=...> element (Open Graph style).
func MetaProperty(property, content string) Element {
	return Element{Tag: "meta", Attrs: []Attr{{"property", property}, {"content", content}}}
}

// Link creates a <link rel=... href=...> element with optional extra attributes.
func Link(rel, href string, attrs ...Attr) Element {
	return Element{Tag: "link", Attrs: append([]Attr{{"rel", rel}, {"href", href}}, attrs...)}
}

// Style creates an inline <style> element.
func Style(css string, attrs ...Attr) Element {
	return Element{Tag: "style", Attrs: attrs, Content: css}
}

// Script creates an external <script src=...> element.
func Script(src string, attrs ...Attr) Element {
	return Element{Tag: "script", Attrs: append([]Attr{{"src", src}}, attrs...)}
}

// WithKey returns a copy of the element with an explicit dedup key.
func (e Element) WithKey(key string) Element {
	e.Key = key
	return e
}

// Attr returns the value of the named attribute.
func (e Element) Attr(name string) string {
	for _, a := range e.Attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value
		}
	}
	return ""
}

// DedupKey returns the explicit key or the implicit semantic key of the element.
func (e Element) DedupKey() string {
	if e.Key != "" {
		return e.Key
	}
	return ImplicitKey(e.Tag, e.Attr, e.Content)
}

// ImplicitKey computes the semantic identity of a head element from its tag,
// an attribute lookup and its text content:
//
//	<title>                      title
//	<meta name=X>                meta:name=X
//	<meta property=X>            meta:property=X
//	<meta http-equiv=X>          meta:http-equiv=X
//	<meta charset>               meta:charset
//	<link rel=canonical>         link:rel=canonical
//	<link rel=R href=H>          link:rel=R:href=H
//	<style id=X> / <script id=X> style:id=X / script:id=X
//	<script src=S>               script:src=S
//	anything else                tag:content hash
func ImplicitKey(tag string, attr func(string) string, content string) string {
	tag = strings.ToLower(tag)
	switch tag {
	case "title":
		return "title"
	case "meta":
		for _, name := range []string{"name", "property", "http-equiv", "itemprop"} {
			if v := attr(name); v != "" {
				return "meta:" + name + "=" + v
			}
		}
		if attr("charset") != "" {
			return "meta:charset"
		}
	case "link":
		rel := strings.ToLower(attr("rel"))
		if rel == "canonical" || rel == "manifest" {
			return "link:rel=" + rel
		}
		if rel != "" || attr("href") != "" {
			return "link:rel=" + rel + ":href=" + attr("href")
		}
	case "style", "script":
		if id := attr("id"); id != "" {
			return tag + ":id=" + id
		}
		if src := attr("src"); tag == "script" && src != "" {
			return "script:src=" + src
		}
	}
	return fmt.Sprintf("%s:%x", tag, contentHash(content))
}

func contentHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// HTML renders the element with its dedup key attribute.
func (e Element) HTML() string {
	var b strings.Builder
	b.WriteString("<" + e.Tag)
	for _, a := range e.Attrs {
		fmt.Fprintf(&b, ` %s="%s"`, a.Name, templ.EscapeString(a.Value))
	}
	fmt.Fprintf(&b, ` %s="%s">`, KeyAttr, templ.EscapeString(e.DedupKey()))

	switch e.Tag {
	case "meta", "link":
		return b.String()
	case "title":
		b.WriteString(templ.EscapeString(e.Content))
	default:
		b.WriteString(e.Content)
	}
	b.WriteString("</" + e.Tag + ">")
	return b.String()
}

// Render serializes elements in order.
func Render(elems []Element) string {
	var b strings.Builder
	for _, e := range elems {
		b.WriteString(e.HTML())
	}
	return b.String()
}
