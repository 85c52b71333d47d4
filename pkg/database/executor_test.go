package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_Execute(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	rows := mock.NewRowsWithColumnDefinition(
		mock.NewColumn("id").OfType("BIGINT", int64(0)),
		mock.NewColumn("name").OfType("VARCHAR", ""),
		mock.NewColumn("created").OfType("DATE", time.Time{}),
		mock.NewColumn("price").OfType("DECIMAL", []byte{}),
	).
		AddRow(int64(1), "a", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), []byte("9.99")).
		AddRow(int64(2), "b", nil, []byte("10"))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, created, price FROM t").WillReturnRows(rows)
	mock.ExpectCommit()

	grid, err := NewExecutor(zerolog.Nop()).Execute(ctx, db, "SELECT id, name, created, price FROM t")
	require.NoError(t, err)
	assert.Equal(t, Grid{
		{int64(1), "a", "2024-01-02", 9.99},
		{int64(2), "b", nil, 10.0},
	}, grid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_EmptyResult(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM t WHERE 1=0").
		WillReturnRows(mock.NewRowsWithColumnDefinition(mock.NewColumn("id").OfType("BIGINT", int64(0))))
	mock.ExpectCommit()

	grid, err := NewExecutor(zerolog.Nop()).Execute(context.Background(), db, "SELECT id FROM t WHERE 1=0")
	require.NoError(t, err)
	assert.NotNil(t, grid)
	assert.Len(t, grid, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_DuplicateColumnNames(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT a.id, b.id FROM a JOIN b").
		WillReturnRows(mock.NewRowsWithColumnDefinition(
			mock.NewColumn("id").OfType("BIGINT", int64(0)),
			mock.NewColumn("id").OfType("BIGINT", int64(0)),
		).AddRow(int64(1), int64(2)))
	mock.ExpectCommit()

	grid, err := NewExecutor(zerolog.Nop()).Execute(context.Background(), db, "SELECT a.id, b.id FROM a JOIN b")
	require.NoError(t, err)
	assert.Equal(t, Grid{{int64(1), int64(2)}}, grid)
}

func TestExecutor_DuplicateColumnSuffixCollision(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	query := "SELECT 1 AS a, 2 AS a, 3 AS a_2"
	mock.ExpectBegin()
	mock.ExpectQuery(query).
		WillReturnRows(mock.NewRowsWithColumnDefinition(
			mock.NewColumn("a").OfType("BIGINT", int64(0)),
			mock.NewColumn("a").OfType("BIGINT", int64(0)),
			mock.NewColumn("a_2").OfType("BIGINT", int64(0)),
		).AddRow(int64(1), int64(2), int64(3)))
	mock.ExpectCommit()

	grid, err := NewExecutor(zerolog.Nop()).Execute(context.Background(), db, query)
	require.NoError(t, err)
	assert.Equal(t, Grid{{int64(1), int64(2), int64(3)}}, grid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_Failures(t *testing.T) {
	boom := errors.New("Error 1064 (42000): You have an error in your SQL syntax")

	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
	}{
		{
			name: "begin fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(boom)
			},
		},
		{
			name: "query fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELEC broken").WillReturnError(boom)
				mock.ExpectRollback()
			},
		},
		{
			name: "row iteration fails",
			setup: func(mock sqlmock.Sqlmock) {
				rows := mock.NewRowsWithColumnDefinition(mock.NewColumn("id").OfType("BIGINT", int64(0))).
					AddRow(int64(1)).
					AddRow(int64(2)).
					RowError(1, boom)
				mock.ExpectBegin()
				mock.ExpectQuery("SELEC broken").WillReturnRows(rows)
				mock.ExpectRollback()
			},
		},
		{
			name: "commit fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("SELEC broken").
					WillReturnRows(mock.NewRowsWithColumnDefinition(mock.NewColumn("id").OfType("BIGINT", int64(0))))
				mock.ExpectCommit().WillReturnError(boom)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
			require.NoError(t, err)
			defer db.Close()
			tt.setup(mock)

			grid, err := NewExecutor(zerolog.Nop()).Execute(context.Background(), db, "SELEC broken")
			assert.Nil(t, grid)

			var queryErr *QueryError
			require.True(t, errors.As(err, &queryErr), "got %v", err)
			assert.Equal(t, boom.Error(), err.Error())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
