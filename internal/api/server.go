// Package api exposes generation over HTTP. It is glue around the core
// generation loop; the loop itself knows nothing about this surface.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/scrawlml/scrawl/internal/generate"
	"github.com/scrawlml/scrawl/internal/logger"
	"github.com/scrawlml/scrawl/internal/vocab"
)

const defaultTemperature = 0.8

type Server struct {
	provider SessionProvider
	log      logger.Logger
}

func NewServer(provider SessionProvider, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{provider: provider, log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/generate", s.handleGenerate)
	e.GET("/v1/models", s.handleListModels)
	e.GET("/healthz", s.handleHealth)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListModels(c *echo.Context) error {
	list := ModelList{Object: "list", Data: []ModelInfo{}}
	for _, name := range s.provider.ListModels() {
		err := s.provider.WithSession(c.Request().Context(), name, func(sess *generate.Session) error {
			d := sess.Descriptor()
			list.Data = append(list.Data, ModelInfo{
				ID:         name,
				Object:     "model",
				VocabSize:  sess.VocabSize(),
				HiddenSize: d.HiddenSize,
				Layers:     d.Layers,
				Topology:   d.Variant.Topology().String(),
			})
			return nil
		})
		if err != nil {
			return s.writeFailure(c, err)
		}
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleGenerate(c *echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "request body must be valid JSON")
	}
	if err := validateGenerate(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	}

	genReq := generate.Request{
		Seed:        req.Seed,
		Length:      req.Length,
		Temperature: defaultTemperature,
		RNGSeed:     -1,
		Strict:      req.Strict,
	}
	if req.Temperature != nil {
		genReq.Temperature = *req.Temperature
	}
	if req.RNGSeed != nil {
		genReq.RNGSeed = *req.RNGSeed
	}

	var result *generate.Result
	var modelName string
	err := s.provider.WithSession(c.Request().Context(), req.Model, func(sess *generate.Session) error {
		modelName = sess.Descriptor().Variant.String()
		var err error
		result, err = sess.Generate(c.Request().Context(), &genReq, nil)
		return err
	})
	if err != nil {
		return s.writeFailure(c, err)
	}

	return c.JSON(http.StatusOK, GenerateResponse{
		ID:        "gen_" + uuid.NewString(),
		Object:    "generation",
		CreatedAt: time.Now().Unix(),
		Model:     modelName,
		Text:      result.Text,
		Stats: GenerateStats{
			CharsGenerated: result.Stats.CharsGenerated,
			DurationMS:     result.Stats.Duration.Milliseconds(),
			CPS:            result.Stats.CPS,
		},
	})
}

func validateGenerate(req *GenerateRequest) error {
	if req.Length <= 0 {
		return newInvalidRequest("length must be a positive integer")
	}
	if req.Temperature != nil && *req.Temperature <= 0 {
		return newInvalidRequest("temperature must be positive")
	}
	return nil
}

func (s *Server) writeFailure(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, generate.ErrNotReady):
		return writeError(c, http.StatusServiceUnavailable, "not_ready_error", err.Error())
	case errors.Is(err, errModelNotFound):
		return writeError(c, http.StatusNotFound, "not_found_error", err.Error())
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, vocab.ErrUnknownChar):
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	default:
		s.log.Error("generation failed", "error", err)
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{Message: msg, Type: errType},
	})
}
