// Package gsheet pushes rectangular value grids into Google Sheets ranges
// using a service account credential that is reloaded on every write.
package gsheet

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// WrittenMessage is the confirmation returned by a successful write.
const WrittenMessage = "Data written successfully"

// SheetsClient defines the Google Sheets operations used by the writer.
type SheetsClient interface {
	Write(ctx context.Context, range_ string, values [][]interface{}) (int64, error)
}

// ClientFactory builds an authenticated client bound to one spreadsheet.
type ClientFactory func(ctx context.Context, spreadsheetID string) (SheetsClient, error)

// WriteError reports a failed write. Its text is the underlying cause,
// verbatim for API failures.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }

// Writer overwrites spreadsheet ranges with value grids.
type Writer struct {
	newClient ClientFactory
	logger    zerolog.Logger
}

// NewWriter creates a Writer that loads a fresh credential from loader for
// every write. opts are appended to the Sheets client options.
func NewWriter(loader *Loader, logger zerolog.Logger, opts ...option.ClientOption) *Writer {
	factory := func(ctx context.Context, spreadsheetID string) (SheetsClient, error) {
		cred, err := loader.Load(ctx)
		if err != nil {
			return nil, err
		}
		srv, err := NewService(ctx, cred, opts...)
		if err != nil {
			return nil, err
		}
		return newSheetsClient(srv, spreadsheetID), nil
	}
	return NewWriterWithFactory(factory, logger)
}

// NewWriterWithFactory creates a Writer backed by an arbitrary client factory.
func NewWriterWithFactory(factory ClientFactory, logger zerolog.Logger) *Writer {
	return &Writer{
		newClient: factory,
		logger:    logger.With().Str("component", "sheets-writer").Logger(),
	}
}

// Write replaces the contents of range_ in spreadsheetID with grid.
func (w *Writer) Write(ctx context.Context, spreadsheetID, range_ string, grid [][]interface{}) (string, error) {
	client, err := w.newClient(ctx, spreadsheetID)
	if err != nil {
		w.logger.Error().Err(err).Str("spreadsheet", spreadsheetID).Msg("Sheets authentication failed")
		return "", &WriteError{Err: errors.Wrap(err, "authentication failed")}
	}

	if grid == nil {
		grid = [][]interface{}{}
	}

	cells, err := client.Write(ctx, range_, grid)
	if err != nil {
		w.logger.Error().Err(err).
			Str("spreadsheet", spreadsheetID).
			Str("range", range_).
			Msg("Sheets update failed")
		return "", &WriteError{Err: err}
	}

	w.logger.Info().
		Str("spreadsheet", spreadsheetID).
		Str("range", range_).
		Int("rows", len(grid)).
		Int64("updated_cells", cells).
		Msg("Range overwritten")
	return WrittenMessage, nil
}
