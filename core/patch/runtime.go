package patch

import (
	"golang.org/x/net/html"

	"github.com/dmitrymomot/fresco/core/island"
)

// Runtime revives islands. It is the client component framework and is
// treated as a black box: the engine only mounts, updates and unmounts.
type Runtime interface {
	// Mount revives the island rooted at node with its server-rendered props.
	Mount(node *html.Node, props island.Props) (Instance, error)
}

// Instance is a live island.
type Instance interface {
	// Update hands new props to the instance. Its internal state is kept.
	Update(props island.Props) error
	// Unmount tears the instance down.
	Unmount()
}

// RuntimeFunc adapts a mount function to Runtime.
type RuntimeFunc func(node *html.Node, props island.Props) (Instance, error)

// Mount implements Runtime.
func (f RuntimeFunc) Mount(node *html.Node, props island.Props) (Instance, error) {
	return f(node, props)
}

// Mounted is one entry of the reconciliation table.
type Mounted struct {
	Identity island.Identity
	// Region is the innermost region containing the island, empty outside any region.
	Region   string
	Node     *html.Node
	Props    island.Props
	Instance Instance
}
