// Package api implements the REST API for evaluating calculator expressions
// and browsing the evaluation history.
package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lemonberrylabs/calc/pkg/expr"
	"github.com/lemonberrylabs/calc/pkg/store"
	"github.com/lemonberrylabs/calc/pkg/types"
	"github.com/rs/zerolog"
)

// Server is the HTTP API server.
type Server struct {
	app       *fiber.App
	store     *store.Store
	logger    zerolog.Logger
	maxLength int
}

// New creates a new API server. Expressions longer than maxLength are
// rejected.
func New(s *store.Store, maxLength int, logger zerolog.Logger) *Server {
	srv := &Server{
		store:     s,
		logger:    logger,
		maxLength: maxLength,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	app.Use(srv.logRequests)

	app.Post("/v1/evaluations", srv.createEvaluation)
	app.Get("/v1/evaluations", srv.listEvaluations)
	app.Get("/v1/evaluations/:evaluation", srv.getEvaluation)
	app.Delete("/v1/evaluations", srv.clearEvaluations)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("request")
	return err
}

type createEvaluationRequest struct {
	Expression string `json:"expression"`
}

func (s *Server) createEvaluation(c *fiber.Ctx) error {
	var req createEvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidArgument(c, fmt.Sprintf("invalid request body: %v", err), nil)
	}

	if strings.TrimSpace(req.Expression) == "" {
		return invalidArgument(c, "expression is required", nil)
	}
	if strings.ContainsAny(req.Expression, "\n\x00") {
		return invalidArgument(c, "expression must be a single line", nil)
	}
	if len(req.Expression) > s.maxLength {
		return invalidArgument(c,
			fmt.Sprintf("expression exceeds maximum length of %d characters", s.maxLength), nil)
	}

	value, _, err := expr.EvalString(req.Expression)
	if err != nil {
		e, ok := types.AsError(err)
		if !ok || e.Class() != types.TagRuntimeError {
			return invalidArgument(c, err.Error(), e)
		}
		ev := s.store.RecordFailure("http", req.Expression, err)
		s.logger.Info().Str("evaluation", ev.Name).Err(err).Msg("evaluation failed")
		return c.JSON(evaluationToJSON(ev))
	}

	ev := s.store.RecordSuccess("http", req.Expression, value)
	s.logger.Info().Str("evaluation", ev.Name).Int64("result", value).Msg("evaluation succeeded")
	return c.JSON(evaluationToJSON(ev))
}

func (s *Server) getEvaluation(c *fiber.Ctx) error {
	ev, err := s.store.Get(c.Params("evaluation"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    404,
				"message": err.Error(),
				"status":  "NOT_FOUND",
			},
		})
	}
	return c.JSON(evaluationToJSON(ev))
}

func (s *Server) listEvaluations(c *fiber.Ctx) error {
	evals := s.store.List()
	result := make([]fiber.Map, len(evals))
	for i, ev := range evals {
		result[i] = evaluationToJSON(ev)
	}
	return c.JSON(fiber.Map{"evaluations": result})
}

func (s *Server) clearEvaluations(c *fiber.Ctx) error {
	s.store.Clear()
	return c.JSON(fiber.Map{})
}

// invalidArgument writes a 400 response; calcErr adds its tags and position.
func invalidArgument(c *fiber.Ctx, message string, calcErr *types.Error) error {
	body := fiber.Map{
		"code":    400,
		"message": message,
		"status":  "INVALID_ARGUMENT",
	}
	if calcErr != nil {
		for k, v := range calcErr.ToMap() {
			if k != "message" {
				body[k] = v
			}
		}
	}
	return c.Status(400).JSON(fiber.Map{"error": body})
}

func evaluationToJSON(ev *store.Evaluation) fiber.Map {
	m := fiber.Map{
		"name":       ev.Name,
		"expression": ev.Expression,
		"state":      string(ev.State),
		"source":     ev.Source,
		"createTime": ev.CreateTime.Format(time.RFC3339Nano),
	}
	if ev.Result != nil {
		m["result"] = *ev.Result
	}
	if ev.Error != nil {
		m["error"] = fiber.Map{
			"message": ev.Error.Message,
			"tags":    ev.Error.Tags,
		}
	}
	return m
}
