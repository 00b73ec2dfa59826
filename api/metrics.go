package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/meikuraledutech/pipeline"
)

const (
	resultDAG       = "dag"
	resultCyclic    = "cyclic"
	resultInvalid   = "invalid"
	resultMalformed = "malformed"
)

var (
	// parseRequests counts parse requests by outcome
	parseRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_parse_requests_total",
		Help: "Total pipeline parse requests by result",
	}, []string{"result"})

	// parseDuration tracks decode+analyze latency for accepted pipelines
	parseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipeline_parse_duration_seconds",
		Help:    "Pipeline decode and analysis duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14), // 50µs to ~400ms
	})

	// graphSize tracks node and edge counts of accepted pipelines
	graphSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pipeline_parse_graph_size",
		Help:    "Number of nodes or edges per analyzed pipeline",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 1000, 10000, 100000},
	}, []string{"kind"})
)

func observeParse(res pipeline.Result, elapsed time.Duration) {
	result := resultDAG
	if !res.IsDAG {
		result = resultCyclic
	}
	parseRequests.WithLabelValues(result).Inc()
	parseDuration.Observe(elapsed.Seconds())
	graphSize.WithLabelValues("nodes").Observe(float64(res.NumNodes))
	graphSize.WithLabelValues("edges").Observe(float64(res.NumEdges))
}
