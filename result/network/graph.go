// Package network provides a labeled undirected graph backed by gonum and its GML persistence.
package network

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph is an undirected simple graph whose nodes carry an int or string label. Labels are
// unique within a graph.
type Graph struct {
	g      *simple.UndirectedGraph
	ids    map[any]int64
	labels map[int64]any
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		g:      simple.NewUndirectedGraph(),
		ids:    make(map[any]int64),
		labels: make(map[int64]any),
	}
}

// AddNode adds a node with the given label and returns it. Adding an existing label returns the
// existing node.
func (g *Graph) AddNode(label any) (graph.Node, error) {
	switch label.(type) {
	case int, string:
	default:
		return nil, fmt.Errorf("label %v has type %T, want int or string", label, label)
	}

	if id, ok := g.ids[label]; ok {
		return g.g.Node(id), nil
	}

	n := g.g.NewNode()
	g.g.AddNode(n)
	g.ids[label] = n.ID()
	g.labels[n.ID()] = label

	return n, nil
}

// AddEdge connects the nodes labeled u and v, adding them if needed.
func (g *Graph) AddEdge(u, v any) error {
	if u == v {
		return fmt.Errorf("self loop on %v", u)
	}
	from, err := g.AddNode(u)
	if err != nil {
		return err
	}
	to, err := g.AddNode(v)
	if err != nil {
		return err
	}
	g.g.SetEdge(g.g.NewEdge(from, to))
	return nil
}

// HasEdge reports whether the nodes labeled u and v are connected.
func (g *Graph) HasEdge(u, v any) bool {
	from, ok := g.ids[u]
	if !ok {
		return false
	}
	to, ok := g.ids[v]
	if !ok {
		return false
	}
	return g.g.HasEdgeBetween(from, to)
}

// Label returns the label of the node with the given ID.
func (g *Graph) Label(id int64) (any, bool) {
	label, ok := g.labels[id]
	return label, ok
}

// Order returns the number of nodes.
func (g *Graph) Order() int {
	return len(g.labels)
}

// Size returns the number of edges.
func (g *Graph) Size() int {
	return g.g.Edges().Len()
}

// Labels returns every label, integers first in numeric order, then strings.
func (g *Graph) Labels() []any {
	labels := make([]any, 0, len(g.labels))
	for _, label := range g.labels {
		labels = append(labels, label)
	}
	slices.SortFunc(labels, compareLabels)
	return labels
}

// Edges returns every edge as a pair of labels, smaller label first, in sorted order.
func (g *Graph) Edges() [][2]any {
	edges := make([][2]any, 0)
	it := g.g.Edges()
	for it.Next() {
		e := it.Edge()
		u, v := g.labels[e.From().ID()], g.labels[e.To().ID()]
		if compareLabels(u, v) > 0 {
			u, v = v, u
		}
		edges = append(edges, [2]any{u, v})
	}
	slices.SortFunc(edges, func(a, b [2]any) int {
		if c := compareLabels(a[0], b[0]); c != 0 {
			return c
		}
		return compareLabels(a[1], b[1])
	})
	return edges
}

// Graph returns the underlying gonum graph. Node IDs map to labels through [Graph.Label].
func (g *Graph) Graph() graph.Undirected {
	return g.g
}

func compareLabels(a, b any) int {
	ai, aInt := a.(int)
	bi, bInt := b.(int)
	switch {
	case aInt && bInt:
		return cmp.Compare(ai, bi)
	case aInt:
		return -1
	case bInt:
		return 1
	}
	return cmp.Compare(a.(string), b.(string))
}
