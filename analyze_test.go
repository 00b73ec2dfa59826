package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func nodes(ids ...string) []Node {
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, Node{ID: id, Type: "customInput", Data: map[string]any{}})
	}
	return out
}

func edge(source, target string) Edge {
	return Edge{ID: source + "-" + target, Source: source, Target: target}
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
		edges []Edge
		want  Result
	}{
		{
			name: "empty",
			want: Result{NumNodes: 0, NumEdges: 0, IsDAG: true},
		},
		{
			name:  "no nodes with dangling edges",
			edges: []Edge{edge("x", "y"), edge("y", "x")},
			want:  Result{NumNodes: 0, NumEdges: 2, IsDAG: true},
		},
		{
			name:  "isolated nodes",
			nodes: nodes("a", "b", "c"),
			want:  Result{NumNodes: 3, NumEdges: 0, IsDAG: true},
		},
		{
			name:  "self loop",
			nodes: nodes("a"),
			edges: []Edge{edge("a", "a")},
			want:  Result{NumNodes: 1, NumEdges: 1, IsDAG: false},
		},
		{
			name:  "chain",
			nodes: nodes("a", "b", "c"),
			edges: []Edge{edge("a", "b"), edge("b", "c")},
			want:  Result{NumNodes: 3, NumEdges: 2, IsDAG: true},
		},
		{
			name:  "triangle",
			nodes: nodes("a", "b", "c"),
			edges: []Edge{edge("a", "b"), edge("b", "c"), edge("c", "a")},
			want:  Result{NumNodes: 3, NumEdges: 3, IsDAG: false},
		},
		{
			name:  "diamond",
			nodes: nodes("a", "b", "c", "d"),
			edges: []Edge{edge("a", "b"), edge("a", "c"), edge("b", "d"), edge("c", "d")},
			want:  Result{NumNodes: 4, NumEdges: 4, IsDAG: true},
		},
		{
			name:  "parallel edges",
			nodes: nodes("a", "b"),
			edges: []Edge{edge("a", "b"), edge("a", "b")},
			want:  Result{NumNodes: 2, NumEdges: 2, IsDAG: true},
		},
		{
			name:  "cycle beside acyclic component",
			nodes: nodes("a", "b", "c", "d"),
			edges: []Edge{edge("a", "b"), edge("c", "d"), edge("d", "c")},
			want:  Result{NumNodes: 4, NumEdges: 3, IsDAG: false},
		},
		{
			// ghost is eliminated too, so three vertices are processed for two nodes.
			name:  "dangling target",
			nodes: nodes("a", "b"),
			edges: []Edge{edge("a", "b"), edge("b", "ghost")},
			want:  Result{NumNodes: 2, NumEdges: 2, IsDAG: false},
		},
		{
			// ghost never enters the worklist, so a keeps an incoming edge.
			name:  "dangling source",
			nodes: nodes("a", "b"),
			edges: []Edge{edge("ghost", "a"), edge("a", "b")},
			want:  Result{NumNodes: 2, NumEdges: 2, IsDAG: false},
		},
		{
			name:  "cycle through undeclared vertex",
			nodes: nodes("a"),
			edges: []Edge{edge("a", "ghost"), edge("ghost", "a")},
			want:  Result{NumNodes: 1, NumEdges: 2, IsDAG: false},
		},
		{
			name:  "duplicate ids count literally",
			nodes: nodes("a", "a", "b"),
			want:  Result{NumNodes: 3, NumEdges: 0, IsDAG: true},
		},
		{
			name:  "duplicate ids in chain",
			nodes: nodes("a", "b", "a"),
			edges: []Edge{edge("a", "b")},
			want:  Result{NumNodes: 3, NumEdges: 1, IsDAG: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Analyze(tt.nodes, tt.edges))
		})
	}
}

func TestAnalyzeWith_IgnoreDangling(t *testing.T) {
	opts := Options{IgnoreDangling: true}

	tests := []struct {
		name  string
		nodes []Node
		edges []Edge
		want  bool
	}{
		{
			name:  "dangling target",
			nodes: nodes("a", "b"),
			edges: []Edge{edge("a", "b"), edge("b", "ghost")},
			want:  true,
		},
		{
			name:  "dangling source",
			nodes: nodes("a", "b"),
			edges: []Edge{edge("ghost", "a"), edge("a", "b")},
			want:  true,
		},
		{
			name:  "cycle through undeclared vertex",
			nodes: nodes("a"),
			edges: []Edge{edge("a", "ghost"), edge("ghost", "a")},
			want:  false,
		},
		{
			name:  "declared cycle",
			nodes: nodes("a", "b"),
			edges: []Edge{edge("a", "b"), edge("b", "a"), edge("b", "ghost")},
			want:  false,
		},
		{
			name:  "duplicate ids without edges",
			nodes: nodes("a", "a"),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := AnalyzeWith(tt.nodes, tt.edges, opts)
			assert.Equal(t, tt.want, res.IsDAG)
			assert.Equal(t, len(tt.nodes), res.NumNodes)
			assert.Equal(t, len(tt.edges), res.NumEdges)
		})
	}
}

func TestAnalyze_ClosingChainMakesCycle(t *testing.T) {
	p := &Pipeline{
		Nodes: nodes("a", "b", "c", "d"),
		Edges: []Edge{edge("a", "b"), edge("b", "c"), edge("c", "d")},
	}
	assert.True(t, p.Analyze().IsDAG)

	p.Edges = append(p.Edges, edge("d", "a"))
	assert.False(t, p.Analyze().IsDAG)
}

func TestAnalyze_Idempotent(t *testing.T) {
	p := &Pipeline{
		Nodes: nodes("a", "b", "c"),
		Edges: []Edge{edge("a", "b"), edge("b", "c"), edge("c", "b")},
	}
	first := p.Analyze()
	second := p.Analyze()
	assert.Equal(t, first, second)
	assert.Len(t, p.Edges, 3)
}

func TestAnalyze_LongChain(t *testing.T) {
	const n = 50000
	ns := make([]Node, n)
	es := make([]Edge, 0, n)
	for i := range ns {
		ns[i] = Node{ID: fmt.Sprintf("n%d", i), Type: "text"}
		if i > 0 {
			es = append(es, edge(ns[i-1].ID, ns[i].ID))
		}
	}

	res := Analyze(ns, es)
	assert.Equal(t, Result{NumNodes: n, NumEdges: n - 1, IsDAG: true}, res)

	es = append(es, edge(ns[n-1].ID, ns[0].ID))
	assert.False(t, Analyze(ns, es).IsDAG)
}

func BenchmarkAnalyze(b *testing.B) {
	const n = 10000
	ns := make([]Node, n)
	es := make([]Edge, 0, 2*n)
	for i := range ns {
		ns[i] = Node{ID: fmt.Sprintf("n%d", i), Type: "text"}
		if i > 0 {
			es = append(es, edge(ns[i-1].ID, ns[i].ID))
		}
		if i > 1 {
			es = append(es, edge(ns[i-2].ID, ns[i].ID))
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Analyze(ns, es)
	}
}
