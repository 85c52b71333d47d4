package gsheet

import (
	"context"

	"google.golang.org/api/sheets/v4"
)

type sheetsClient struct {
	srv           *sheets.Service
	spreadsheetID string
}

func newSheetsClient(srv *sheets.Service, spreadsheetID string) *sheetsClient {
	return &sheetsClient{
		srv:           srv,
		spreadsheetID: spreadsheetID,
	}
}

// Write overwrites range_ with values, taking every value literally. The
// returned count is the number of cells the API reports as updated.
func (c *sheetsClient) Write(ctx context.Context, range_ string, values [][]interface{}) (int64, error) {
	valueRange := &sheets.ValueRange{
		Values: values,
		// An empty grid must still reach the API as "values": [].
		ForceSendFields: []string{"Values"},
	}

	resp, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, range_, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return 0, err
	}
	return resp.UpdatedCells, nil
}
