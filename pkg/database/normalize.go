package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// DateLayout is how date and datetime cells are rendered.
const DateLayout = "2006-01-02"

// Grid is a rectangular block of spreadsheet-ready scalars, rows by columns.
type Grid = [][]interface{}

var dateTextLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	DateLayout,
}

// Normalize flattens records into a Grid following the column order of the
// first record. A record with a different column set is rejected.
func Normalize(records []Record) (Grid, error) {
	grid := make(Grid, 0, len(records))
	if len(records) == 0 {
		return grid, nil
	}

	columns := records[0].Columns()
	for i, rec := range records {
		fields := rec.Fields()
		if len(fields) != len(columns) {
			return nil, &QueryError{Err: errors.Errorf("row %d has %d columns, expected %d", i, len(fields), len(columns))}
		}

		row := make([]interface{}, len(columns))
		for j, col := range columns {
			v, ok := fields[col.Name]
			if !ok {
				return nil, &QueryError{Err: errors.Errorf("row %d is missing column %q", i, col.Name)}
			}
			row[j] = NormalizeValue(v, col.DatabaseType)
		}
		grid = append(grid, row)
	}
	return grid, nil
}

// NormalizeValue reduces a driver value to a string, number, boolean or nil.
// Dates become YYYY-MM-DD and zero dates become nil. DECIMAL text becomes a
// float when it parses.
func NormalizeValue(v interface{}, databaseType string) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		// Zero dates (0000-00-00) have no calendar value.
		if x.IsZero() {
			return nil
		}
		return x.Format(DateLayout)
	case []byte:
		return normalizeText(string(x), databaseType)
	case string:
		return normalizeText(x, databaseType)
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float64:
		return x
	case float32:
		// Widen through the shortest decimal form so 0.1 stays 0.1.
		f, _ := strconv.ParseFloat(strconv.FormatFloat(float64(x), 'g', -1, 32), 64)
		return f
	default:
		return fmt.Sprint(x)
	}
}

func normalizeText(s, databaseType string) interface{} {
	switch strings.ToUpper(databaseType) {
	case "DECIMAL", "NUMERIC", "NEWDECIMAL":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case "DATE", "DATETIME", "TIMESTAMP":
		if strings.HasPrefix(s, "0000-00-00") {
			return nil
		}
		for _, layout := range dateTextLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(DateLayout)
			}
		}
	}
	return s
}
