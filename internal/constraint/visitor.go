package constraint

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Visitor performs the satisfy pass. It keeps its stack between passes so a
// frame does not allocate.
type Visitor struct {
	stack   []NodeID
	visited []bool

	// Trace, when non-nil, receives every visited node id in order.
	Trace func(NodeID)
}

// Satisfy visits each node exactly once, parent before children, siblings in
// registration order. Reaching a node twice means the arena is corrupt and
// panics.
func (v *Visitor) Satisfy(g *Graph, sys *cloth.System) {
	if cap(v.visited) < len(g.nodes) {
		v.visited = make([]bool, len(g.nodes))
	}
	v.visited = v.visited[:len(g.nodes)]
	for i := range v.visited {
		v.visited[i] = false
	}

	v.stack = append(v.stack[:0], Root)
	for len(v.stack) > 0 {
		id := v.stack[len(v.stack)-1]
		v.stack = v.stack[:len(v.stack)-1]

		if v.visited[id] {
			panic(fmt.Sprintf("constraint: node %d reached twice; graph is not a tree", id))
		}
		v.visited[id] = true

		n := &g.nodes[id]
		satisfyNode(n, sys)
		if v.Trace != nil {
			v.Trace(id)
		}

		for i := len(n.Children) - 1; i >= 0; i-- {
			v.stack = append(v.stack, n.Children[i])
		}
	}
}
