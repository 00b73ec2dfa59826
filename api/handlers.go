package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/meikuraledutech/pipeline"
)

type handler struct {
	logger *slog.Logger
	strict bool
	opts   pipeline.Options
}

// parse decodes a pipeline, analyzes it and reports the counts and DAG verdict.
// Malformed JSON is a 400; validation failures are a 422 with per-field details.
func (h *handler) parse(c fiber.Ctx) error {
	start := time.Now()

	p, err := pipeline.Decode(c.Body())
	if err == nil && h.strict {
		err = p.CheckReferences()
	}
	if err != nil {
		return h.reject(c, err)
	}

	res := p.AnalyzeWith(h.opts)
	observeParse(res, time.Since(start))

	h.logger.Debug("pipeline analyzed",
		"request_id", requestid.FromContext(c),
		"num_nodes", res.NumNodes,
		"num_edges", res.NumEdges,
		"is_dag", res.IsDAG,
	)
	return c.JSON(res)
}

func (h *handler) reject(c fiber.Ctx, err error) error {
	var verrs pipeline.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		parseRequests.WithLabelValues(resultInvalid).Inc()
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "validation failed",
			"details": verrs,
		})
	case errors.Is(err, pipeline.ErrMalformedBody):
		parseRequests.WithLabelValues(resultMalformed).Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return err
	}
}
