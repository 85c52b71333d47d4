// Package relay runs the validate, connect, query and write pipeline that
// copies a query result into a spreadsheet range.
package relay

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/elbader17/sheetrelay/pkg/database"
)

// MissingFieldsMessage is returned when a request lacks a required field.
const MissingFieldsMessage = "Missing required fields"

// Stage names a step of the pipeline.
type Stage string

const (
	StageValidating Stage = "validating"
	StageConnecting Stage = "connecting"
	StageQuerying   Stage = "querying"
	StageWriting    Stage = "writing"
	StageDone       Stage = "done"
)

// Connector opens the database named by a request.
type Connector interface {
	Connect(ctx context.Context, target database.Target) (*sql.DB, error)
}

// Executor runs a query and returns its normalized grid.
type Executor interface {
	Execute(ctx context.Context, db *sql.DB, query string) (database.Grid, error)
}

// Writer overwrites a spreadsheet range with a grid.
type Writer interface {
	Write(ctx context.Context, spreadsheetID, range_ string, grid [][]interface{}) (string, error)
}

// Service wires the pipeline components. It holds no per-request state and
// is safe for concurrent use.
type Service struct {
	connector Connector
	executor  Executor
	writer    Writer
	logger    zerolog.Logger
}

// NewService wires the pipeline components into a Service.
func NewService(connector Connector, executor Executor, writer Writer, logger zerolog.Logger) *Service {
	return &Service{
		connector: connector,
		executor:  executor,
		writer:    writer,
		logger:    logger.With().Str("component", "relay").Logger(),
	}
}

// Relay runs one request to completion. It never panics or returns a bare
// error; every outcome is folded into the Result envelope.
func (s *Service) Relay(ctx context.Context, req Request) (result Result) {
	logger := s.loggerFor(ctx)
	start := time.Now()
	stage := StageValidating

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("stage", string(stage)).Msg("Relay panicked")
			result = Failure(KindInternal, fmt.Sprintf("internal error: %v", r))
		}
		event := logger.Info()
		if !result.OK() {
			event = logger.Warn().Str("kind", result.Kind().String())
		}
		event.Str("stage", string(stage)).
			Dur("elapsed", time.Since(start)).
			Int("status_code", result.StatusCode()).
			Msg("Relay finished")
	}()

	if err := req.Validate(); err != nil {
		logger.Debug().Strs("missing", MissingFields(err)).Msg("Request rejected")
		return Failure(KindValidation, MissingFieldsMessage)
	}

	stage = StageConnecting
	db, err := s.connector.Connect(ctx, req.Target())
	if err != nil {
		return s.fail(KindConnection, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("Closing database connection failed")
		}
	}()

	stage = StageQuerying
	grid, err := s.executor.Execute(ctx, db, req.Query)
	if err != nil {
		return s.fail(KindQuery, err)
	}

	stage = StageWriting
	message, err := s.writer.Write(ctx, req.SpreadsheetID, req.Range, grid)
	if err != nil {
		return s.fail(KindWrite, err)
	}

	stage = StageDone
	return Success(message)
}

// fail classifies err, using the stage kind when the component returned an
// untyped error.
func (s *Service) fail(stageKind Kind, err error) Result {
	if Classify(err) == KindInternal {
		err = &Error{Kind: stageKind, Err: err}
	}
	return FailureFrom(err)
}

func (s *Service) loggerFor(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return s.logger
}
