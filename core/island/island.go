// Package island renders interactive components that are revived on the client and
// records which component types a render needs.
//
// An island's identity is its component type plus either an explicit key or its
// positional index among islands of the same type inside the enclosing region scope.
// The client patch engine uses the identity to keep instances alive across patches.
package island

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Markup attributes of an island root element.
const (
	TypeAttr  = "data-frsh-island"
	KeyAttr   = "data-frsh-key"
	IndexAttr = "data-frsh-index"
	PropsAttr = "data-frsh-props"
)

// Props is the JSON-encoded props payload of an island.
type Props = json.RawMessage

// Identity is the stable identity of an island instance.
type Identity struct {
	Type  string
	Key   string
	Index int
}

// Keyed reports whether the identity carries an explicit key.
func (id Identity) Keyed() bool {
	return id.Key != ""
}

func (id Identity) String() string {
	if id.Keyed() {
		return id.Type + "#" + id.Key
	}
	return id.Type + "@" + strconv.Itoa(id.Index)
}

// Island renders an island root element wrapping the server-rendered children.
// An empty key selects the positional identity.
func Island(typ, key string, props any, children templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if typ == "" {
			return ErrEmptyType
		}

		raw, err := json.Marshal(props)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidProps, typ, err)
		}

		id := scopeFrom(ctx).next(typ, key)
		if c := FromContext(ctx); c != nil {
			c.record(id)
		}

		attr := fmt.Sprintf(`%s="%d"`, IndexAttr, id.Index)
		if id.Keyed() {
			attr = fmt.Sprintf(`%s="%s"`, KeyAttr, templ.EscapeString(id.Key))
		}
		if _, err := fmt.Fprintf(w, `<div %s="%s" %s %s="%s">`,
			TypeAttr, templ.EscapeString(typ), attr, PropsAttr, templ.EscapeString(string(raw))); err != nil {
			return err
		}
		if children != nil {
			if err := children.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, "</div>")
		return err
	})
}
