package pipeline

// Options adjusts how Analyze treats edges that name undeclared nodes.
type Options struct {
	// IgnoreDangling makes every undeclared endpoint an ordinary vertex and
	// judges the graph only by whether the declared nodes can be eliminated.
	// By default a dangling target is counted when eliminated, so it makes the
	// verdict false, and a dangling source never enters the worklist.
	IgnoreDangling bool
}

// Analyze counts the supplied nodes and edges and reports whether the graph
// they form is acyclic.
//
// Counts are literal: duplicate node ids each count once per entry, but form
// a single vertex. The graph is a DAG when the number of eliminated vertices
// equals the number of distinct declared ids.
func Analyze(nodes []Node, edges []Edge) Result {
	return AnalyzeWith(nodes, edges, Options{})
}

// AnalyzeWith is Analyze with explicit options.
func AnalyzeWith(nodes []Node, edges []Edge, opts Options) Result {
	return Result{
		NumNodes: len(nodes),
		NumEdges: len(edges),
		IsDAG:    isAcyclic(nodes, edges, opts),
	}
}

// Analyze reports the structural facts of p.
func (p *Pipeline) Analyze() Result {
	return Analyze(p.Nodes, p.Edges)
}

// AnalyzeWith reports the structural facts of p using opts.
func (p *Pipeline) AnalyzeWith(opts Options) Result {
	return AnalyzeWith(p.Nodes, p.Edges, opts)
}

// isAcyclic runs Kahn's algorithm in O(V+E).
func isAcyclic(nodes []Node, edges []Edge, opts Options) bool {
	if len(nodes) == 0 {
		return true
	}

	// Vertices are kept in first-seen order so the worklist is seeded
	// deterministically; map iteration order is not.
	inDegree := make(map[string]int, len(nodes))
	declared := make(map[string]bool, len(nodes))
	vertices := make([]string, 0, len(nodes))
	addVertex := func(id string) {
		if _, ok := inDegree[id]; !ok {
			inDegree[id] = 0
			vertices = append(vertices, id)
		}
	}

	for _, n := range nodes {
		addVertex(n.ID)
		declared[n.ID] = true
	}

	successors := make(map[string][]string, len(nodes))
	for _, e := range edges {
		if opts.IgnoreDangling {
			addVertex(e.Source)
		}
		addVertex(e.Target)
		successors[e.Source] = append(successors[e.Source], e.Target)
		inDegree[e.Target]++
	}

	queue := make([]string, 0, len(vertices))
	for _, id := range vertices {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	processed := 0
	for head := 0; head < len(queue); head++ {
		current := queue[head]
		if declared[current] || !opts.IgnoreDangling {
			processed++
		}
		for _, next := range successors[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	return processed == len(declared)
}
