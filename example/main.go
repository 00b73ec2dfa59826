package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/meikuraledutech/pipeline"
)

func main() {
	// ── A small LLM pipeline: input → prompt → llm → output ───────────
	flow := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			{ID: "customInput-1", Type: "customInput", Data: map[string]any{"inputName": "question"}},
			{ID: "text-1", Type: "text", Data: map[string]any{"text": "Answer briefly: {{question}}"}},
			{ID: "llm-1", Type: "llm", Data: map[string]any{}},
			{ID: "customOutput-1", Type: "customOutput", Data: map[string]any{"outputName": "answer"}},
		},
		Edges: []pipeline.Edge{
			{ID: "e1", Source: "customInput-1", Target: "text-1"},
			{ID: "e2", Source: "text-1", Target: "llm-1", TargetHandle: handle("llm-1-prompt")},
			{ID: "e3", Source: "llm-1", Target: "customOutput-1"},
		},
	}
	if err := flow.Validate(); err != nil {
		log.Fatalf("validate: %v", err)
	}

	fmt.Println("acyclic pipeline:")
	printJSON(flow.Analyze())

	// ── Feed the output back into the prompt ──────────────────────────
	flow.Edges = append(flow.Edges, pipeline.Edge{ID: "e4", Source: "customOutput-1", Target: "text-1"})
	fmt.Println("\nwith feedback edge:")
	printJSON(flow.Analyze())

	// ── Decode from JSON, as the HTTP handler does ────────────────────
	p, err := pipeline.Decode([]byte(`{"nodes": [{"id": "a", "type": "text"}], "edges": [{"id": "e", "source": "a", "target": "missing"}]}`))
	if err != nil {
		log.Fatalf("decode: %v", err)
	}
	fmt.Println("\ndangling edge (counted as a vertex):")
	printJSON(p.Analyze())

	fmt.Println("\ndangling edge (ignored):")
	printJSON(p.AnalyzeWith(pipeline.Options{IgnoreDangling: true}))

	if err := p.CheckReferences(); err != nil {
		fmt.Println("\nstrict check:")
		printJSON(err)
	}
}

func handle(s string) *string { return &s }

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
