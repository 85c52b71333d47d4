package database

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"
)

// QueryError reports a query that failed to execute or fetch.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string { return e.Err.Error() }

func (e *QueryError) Unwrap() error { return e.Err }

// Executor runs caller-supplied queries and normalizes their results.
type Executor struct {
	logger zerolog.Logger
}

// NewExecutor returns an Executor logging through logger.
func NewExecutor(logger zerolog.Logger) *Executor {
	return &Executor{
		logger: logger.With().Str("component", "query-executor").Logger(),
	}
}

// Execute runs query verbatim in a transaction and returns the full result
// as a Grid. The transaction commits only after every row was fetched and
// normalized; any failure rolls it back.
func (e *Executor) Execute(ctx context.Context, db *sql.DB, query string) (Grid, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &QueryError{Err: err}
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
				e.logger.Warn().Err(err).Msg("Rollback failed")
			}
		}
	}()

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Err: err}
	}

	records, err := scanRecords(rows)
	if err != nil {
		return nil, &QueryError{Err: err}
	}

	grid, err := Normalize(records)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, &QueryError{Err: err}
	}
	committed = true

	cols := 0
	if len(grid) > 0 {
		cols = len(grid[0])
	}
	e.logger.Debug().Int("rows", len(grid)).Int("columns", cols).Msg("Query fetched")
	return grid, nil
}
