package pipeline

// Pipeline is the request payload: the nodes and edges drawn by a client.
// It is built fresh per request and never stored.
type Pipeline struct {
	Nodes []Node `json:"nodes" validate:"required,dive"`
	Edges []Edge `json:"edges" validate:"required,dive"`
}

// Node represents a vertex in the pipeline.
// Type and Data are passed through untouched; only ID takes part in the analysis.
type Node struct {
	ID   string         `json:"id" validate:"required"`
	Type string         `json:"type" validate:"required"`
	Data map[string]any `json:"data"`
}

// Edge represents a directed connection from Source to Target.
// The handles name connection points on the client canvas and are not analyzed.
type Edge struct {
	ID           string  `json:"id" validate:"required"`
	Source       string  `json:"source" validate:"required"`
	Target       string  `json:"target" validate:"required"`
	SourceHandle *string `json:"sourceHandle"`
	TargetHandle *string `json:"targetHandle"`
}

// Result holds the structural facts reported for a pipeline.
type Result struct {
	NumNodes int  `json:"num_nodes"`
	NumEdges int  `json:"num_edges"`
	IsDAG    bool `json:"is_dag"`
}
