// Package server exposes the relay pipeline over HTTP.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/elbader17/sheetrelay/pkg/relay"
)

const (
	// HealthMessage is the constant body of the health route.
	HealthMessage      = "API is running!"
	InvalidBodyMessage = "Invalid JSON body"
)

// Relayer runs a relay request.
type Relayer interface {
	Relay(ctx context.Context, req relay.Request) relay.Result
}

// Server represents the HTTP front of the relay
type Server struct {
	app     *fiber.App
	relayer Relayer
	metrics *metrics
	logger  zerolog.Logger
}

// New creates the HTTP server. Metrics are registered on reg and served
// from /metrics when gatherer is not nil.
func New(relayer Relayer, logger zerolog.Logger, reg prometheus.Registerer, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		relayer: relayer,
		metrics: newMetrics(reg),
		logger:  logger.With().Str("component", "http-server").Logger(),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	app.Post("/api", s.handleRelay)
	app.Get("/test", s.handleHealth)
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	s.app = app
	return s
}

// App exposes the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info().Str("address", addr).Msg("Starting HTTP server")
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleRelay(c *fiber.Ctx) error {
	requestID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	logger := s.logger.With().Str("request_id", requestID).Logger()

	var req relay.Request
	if err := c.BodyParser(&req); err != nil {
		logger.Debug().Err(err).Msg("Unreadable relay body")
		return respond(c, relay.Failure(relay.KindValidation, InvalidBodyMessage))
	}

	logger.Info().
		Str("spreadsheet", req.SpreadsheetID).
		Str("range", req.Range).
		Str("db_host", req.DBHost).
		Str("db_name", req.DBName).
		Msg("Relay requested")

	start := time.Now()
	result := s.relayer.Relay(logger.WithContext(c.UserContext()), req)
	s.metrics.observe(result, time.Since(start))

	return respond(c, result)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return respond(c, relay.Success(HealthMessage))
}

// handleError turns anything escaping a handler into the standard envelope.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(relay.Result{Status: relay.StatusError, Message: fe.Message})
	}
	s.logger.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	return respond(c, relay.Failure(relay.KindInternal, err.Error()))
}

func respond(c *fiber.Ctx, result relay.Result) error {
	return c.Status(result.StatusCode()).JSON(result)
}
