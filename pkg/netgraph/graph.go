// Package netgraph builds undirected node-link graphs from edge tables,
// computes 2-D layouts, and emits renderable network chart specifications.
package netgraph

import (
	"github.com/vizcli/viz/pkg/errors"
	"github.com/vizcli/viz/pkg/table"
)

// WeightPolicy decides how duplicate edges between the same node pair
// combine their weights.
type WeightPolicy string

// Weight aggregation policies.
const (
	// WeightLast keeps the weight of the last occurrence. This mirrors the
	// original tool's behavior and is the default.
	WeightLast WeightPolicy = "last"
	// WeightFirst keeps the first occurrence's weight.
	WeightFirst WeightPolicy = "first"
	// WeightSum adds the weights of all occurrences.
	WeightSum WeightPolicy = "sum"
	// WeightMean averages the weights of all occurrences.
	WeightMean WeightPolicy = "mean"
)

// Edge is one undirected edge between node indices U and V.
type Edge struct {
	U, V      int
	Weight    float64
	HasWeight bool
	count     int // occurrences folded into this edge, for WeightMean
}

// Graph is an undirected simple graph. Nodes are keyed by their raw cell
// value (value equality, not string equality), deduplicated on insertion;
// duplicate edges between the same pair collapse under the configured
// weight policy. Node and edge order is first-insertion order, which makes
// downstream layouts deterministic.
type Graph struct {
	nodes  []table.Value
	index  map[table.Value]int
	edges  []Edge
	byPair map[[2]int]int // canonical (min,max) pair -> index into edges
	policy WeightPolicy
}

// NewGraph creates an empty graph with the given weight policy; an empty
// policy defaults to WeightLast.
func NewGraph(policy WeightPolicy) *Graph {
	if policy == "" {
		policy = WeightLast
	}
	return &Graph{
		index:  map[table.Value]int{},
		byPair: map[[2]int]int{},
		policy: policy,
	}
}

// Build creates a graph from an edge table: one edge per row, nodes
// identified by the raw source/target cell values. weightColumn may be
// empty; non-numeric weight cells are treated as absent.
func Build(t *table.Table, sourceColumn, targetColumn, weightColumn string, policy WeightPolicy) (*Graph, error) {
	src, err := t.Column(sourceColumn)
	if err != nil {
		return nil, err
	}
	dst, err := t.Column(targetColumn)
	if err != nil {
		return nil, err
	}
	var weights table.Column
	hasWeights := weightColumn != ""
	if hasWeights {
		weights, err = t.Column(weightColumn)
		if err != nil {
			return nil, err
		}
	}

	g := NewGraph(policy)
	for r := range t.NumRows() {
		var w float64
		var ok bool
		if hasWeights {
			w, ok = weights.Value(r).Num()
		}
		g.AddEdge(src.Value(r), dst.Value(r), w, ok)
	}
	return g, nil
}

// AddNode inserts a node if it is not already present and returns its index.
func (g *Graph) AddNode(v table.Value) int {
	if i, ok := g.index[v]; ok {
		return i
	}
	i := len(g.nodes)
	g.nodes = append(g.nodes, v)
	g.index[v] = i
	return i
}

// AddEdge inserts an undirected edge, creating missing endpoints. A repeat
// edge between the same pair folds its weight per the graph's policy.
func (g *Graph) AddEdge(u, v table.Value, weight float64, hasWeight bool) {
	ui := g.AddNode(u)
	vi := g.AddNode(v)
	pair := [2]int{min(ui, vi), max(ui, vi)}

	if ei, ok := g.byPair[pair]; ok {
		g.foldWeight(&g.edges[ei], weight, hasWeight)
		return
	}
	g.byPair[pair] = len(g.edges)
	g.edges = append(g.edges, Edge{U: ui, V: vi, Weight: weight, HasWeight: hasWeight, count: 1})
}

// foldWeight merges a duplicate edge's weight into the existing edge.
func (g *Graph) foldWeight(e *Edge, weight float64, hasWeight bool) {
	e.count++
	if !hasWeight {
		// An unweighted duplicate leaves the stored weight alone except
		// under last-wins, where it erases it (the original overwrote the
		// attribute dict wholesale).
		if g.policy == WeightLast {
			e.HasWeight = false
		}
		return
	}
	switch g.policy {
	case WeightFirst:
		if !e.HasWeight {
			e.Weight, e.HasWeight = weight, true
		}
	case WeightSum:
		e.Weight += weight
		e.HasWeight = true
	case WeightMean:
		// Running mean over the weighted occurrences.
		if e.HasWeight {
			e.Weight += (weight - e.Weight) / float64(e.count)
		} else {
			e.Weight, e.HasWeight = weight, true
		}
	default: // WeightLast
		e.Weight, e.HasWeight = weight, true
	}
}

// NodeCount returns the number of distinct nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges after collapsing.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the value of node i.
func (g *Graph) Node(i int) table.Value { return g.nodes[i] }

// Label returns the canonical string form of node i.
func (g *Graph) Label(i int) string { return g.nodes[i].String() }

// Edges returns the collapsed edge list in first-insertion order.
func (g *Graph) Edges() []Edge { return g.edges }

// Degrees returns each node's degree. A self-loop contributes two, matching
// the usual undirected convention.
func (g *Graph) Degrees() []int {
	deg := make([]int, len(g.nodes))
	for _, e := range g.edges {
		deg[e.U]++
		deg[e.V]++
	}
	return deg
}

// Neighbors returns the adjacency list of the graph.
func (g *Graph) Neighbors() [][]int {
	adj := make([][]int, len(g.nodes))
	for _, e := range g.edges {
		adj[e.U] = append(adj[e.U], e.V)
		if e.U != e.V {
			adj[e.V] = append(adj[e.V], e.U)
		}
	}
	return adj
}

// Policy returns the graph's weight aggregation policy.
func (g *Graph) Policy() WeightPolicy { return g.policy }

// ParseWeightPolicy validates a policy name; empty means WeightLast.
func ParseWeightPolicy(s string) (WeightPolicy, error) {
	switch WeightPolicy(s) {
	case "", WeightLast:
		return WeightLast, nil
	case WeightFirst, WeightSum, WeightMean:
		return WeightPolicy(s), nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput,
			"unknown weight policy: %s (supported: last, first, sum, mean)", s)
	}
}
