package partial

import (
	"github.com/dmitrymomot/fresco/core/head"
	"github.com/dmitrymomot/fresco/core/island"
)

// StateScriptID is the id of the JSON script element carrying the document
// state in a full render.
const StateScriptID = "__FRSH_STATE"

// DocumentState is the payload of the state script.
type DocumentState struct {
	BuildID string       `json:"buildId"`
	Islands []island.Ref `json:"islands,omitempty"`
}

// Payload is the re-rendered content of one region.
type Payload struct {
	Name    string         `json:"name"`
	Mode    Mode           `json:"mode"`
	Content string         `json:"content"`
	Head    []head.Element `json:"head,omitempty"`
}

// Envelope is the body of a partial response.
type Envelope struct {
	BuildID  string         `json:"buildId"`
	Partials []Payload      `json:"partials"`
	Head     []head.Element `json:"head,omitempty"`
	Islands  []island.Ref   `json:"islands,omitempty"`
}

// Payload returns the payload for the named region.
func (e *Envelope) Payload(name string) (Payload, bool) {
	for _, p := range e.Partials {
		if p.Name == name {
			return p, true
		}
	}
	return Payload{}, false
}

// HeadElements returns every head element of the envelope, envelope-level first.
func (e *Envelope) HeadElements() []head.Element {
	out := append([]head.Element(nil), e.Head...)
	for _, p := range e.Partials {
		out = append(out, p.Head...)
	}
	return out
}
