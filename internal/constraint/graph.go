// Package constraint implements the tree of positional constraints applied to
// the cloth after every solver step.
//
// Nodes live in an arena owned by a [Graph] and refer to their children by
// [NodeID]. A node is a tagged variant: its [Kind] selects which payload is
// set and a single dispatch switch applies it. The tree is traversed depth
// first, parent before children and siblings in registration order, so a
// child always sees positions already corrected by its ancestors and has the
// final word over them.
package constraint

import (
	"errors"
	"fmt"

	"github.com/san-kum/clothsim/internal/cloth"
)

var ErrUnknownParticle = errors.New("constraint: unknown particle index")

type NodeID int

// Root is the id of the root node of every graph.
const Root NodeID = 0

type Kind int

const (
	KindRoot Kind = iota
	KindDeformation
	KindPointFix
	KindSphere
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindDeformation:
		return "deformation"
	case KindPointFix:
		return "pointfix"
	case KindSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

type Node struct {
	Kind     Kind
	Children []NodeID

	Deformation *Deformation
	Fix         *PointFix
	Sphere      *Sphere
}

type Graph struct {
	nodes   []Node
	visitor Visitor
}

func New() *Graph {
	return &Graph{nodes: []Node{{Kind: KindRoot}}}
}

func (g *Graph) add(parent NodeID, n Node) NodeID {
	if int(parent) < 0 || int(parent) >= len(g.nodes) {
		panic(fmt.Sprintf("constraint: parent node %d does not exist", parent))
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.nodes[parent].Children = append(g.nodes[parent].Children, id)
	return id
}

func (g *Graph) AddDeformation(parent NodeID, d *Deformation) NodeID {
	return g.add(parent, Node{Kind: KindDeformation, Deformation: d})
}

func (g *Graph) AddPointFix(parent NodeID, f *PointFix) NodeID {
	return g.add(parent, Node{Kind: KindPointFix, Fix: f})
}

func (g *Graph) AddSphere(parent NodeID, s *Sphere) NodeID {
	return g.add(parent, Node{Kind: KindSphere, Sphere: s})
}

func (g *Graph) Node(id NodeID) *Node {
	return &g.nodes[id]
}

func (g *Graph) Len() int { return len(g.nodes) }

// Satisfy runs one full depth-first pass over the graph.
func (g *Graph) Satisfy(sys *cloth.System) {
	g.visitor.Satisfy(g, sys)
}

// Walk calls fn for every node in traversal order.
func (g *Graph) Walk(fn func(id NodeID, n *Node, depth int)) {
	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		fn(id, &g.nodes[id], depth)
		for _, c := range g.nodes[id].Children {
			walk(c, depth+1)
		}
	}
	walk(Root, 0)
}

// satisfyNode is the single dispatch point over node kinds.
func satisfyNode(n *Node, sys *cloth.System) {
	switch n.Kind {
	case KindRoot:
	case KindDeformation:
		n.Deformation.satisfy(sys)
	case KindPointFix:
		n.Fix.satisfy(sys)
	case KindSphere:
		n.Sphere.satisfy(sys)
	default:
		panic(fmt.Sprintf("constraint: unknown node kind %d", n.Kind))
	}
}
