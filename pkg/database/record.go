package database

import (
	"database/sql"
	"strconv"
)

// Column describes one result column.
type Column struct {
	Name         string
	DatabaseType string
}

// Record is one result row keyed by column name. Columns keeps the order the
// query declared them in.
type Record struct {
	columns []Column
	data    map[string]interface{}
}

// NewRecord builds a Record from its column order and values keyed by name.
func NewRecord(columns []Column, data map[string]interface{}) Record {
	return Record{columns: columns, data: data}
}

// Columns returns the columns in result order.
func (r Record) Columns() []Column {
	return r.columns
}

// Fields returns the values keyed by column name.
func (r Record) Fields() map[string]interface{} {
	return r.data
}

// resultColumns reads column names and types from rows. Repeated names get a
// positional suffix so that no value is lost when keyed by name.
func resultColumns(rows *sql.Rows) ([]Column, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	// Drivers without type metadata leave DatabaseType empty.
	var types []*sql.ColumnType
	if ct, err := rows.ColumnTypes(); err == nil && len(ct) == len(names) {
		types = ct
	}

	// Original names are reserved up front so a suffixed key never shadows a
	// column that appears later in the result.
	taken := make(map[string]bool, len(names))
	for _, name := range names {
		taken[name] = true
	}

	used := make(map[string]bool, len(names))
	columns := make([]Column, len(names))
	for i, name := range names {
		key := name
		if used[name] {
			for n := 2; ; n++ {
				key = name + "_" + strconv.Itoa(n)
				if !taken[key] {
					break
				}
			}
			taken[key] = true
		}
		used[key] = true

		columns[i] = Column{Name: key}
		if types != nil {
			columns[i].DatabaseType = types[i].DatabaseTypeName()
		}
	}
	return columns, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	defer rows.Close()

	columns, err := resultColumns(rows)
	if err != nil {
		return nil, err
	}

	var records []Record
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		data := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			data[col.Name] = values[i]
		}
		records = append(records, NewRecord(columns, data))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
