package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dbassist/dbassist-mcp/internal/qerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCollectsResultsInOrder(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT 1").
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT name FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("ada").AddRow("grace"))

	var ex Executor
	results, err := ex.Execute(context.Background(), mockDB, []string{"SELECT 1", "SELECT name FROM users"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "SELECT 1", results[0].Statement)
	assert.Equal(t, []string{"one"}, results[0].Columns)
	assert.Equal(t, []map[string]any{{"one": int64(1)}}, results[0].Rows)

	assert.Equal(t, []string{"name"}, results[1].Columns)
	require.Len(t, results[1].Rows, 2)
	assert.Equal(t, "ada", results[1].Rows[0]["name"])
	assert.Equal(t, "grace", results[1].Rows[1]["name"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteStatementCap(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	stmts := make([]string, DefaultMaxStatements+1)
	for i := range stmts {
		stmts[i] = fmt.Sprintf("SELECT %d", i)
	}

	var ex Executor
	results, err := ex.Execute(context.Background(), mockDB, stmts)
	assert.Nil(t, results)
	assert.Equal(t, qerr.ResourceLimitExceeded, qerr.KindOf(err))
	// nothing may have reached the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteConfiguredCap(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	ex := Executor{MaxStatements: 2}
	_, err = ex.Execute(context.Background(), mockDB, []string{"SELECT 1", "SELECT 2", "SELECT 3"})
	assert.Equal(t, qerr.ResourceLimitExceeded, qerr.KindOf(err))

	mock2DB, mock2, err := sqlmock.New()
	require.NoError(t, err)
	defer mock2DB.Close()
	mock2.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"x"}))
	mock2.ExpectQuery("SELECT 2").WillReturnRows(sqlmock.NewRows([]string{"x"}))
	_, err = ex.Execute(context.Background(), mock2DB, []string{"SELECT 1", "SELECT 2"})
	assert.NoError(t, err)
}

func TestExecuteStopsAtFailingStatement(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT 1").
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT bogus").
		WillReturnError(errors.New(`column "bogus" does not exist`))

	var ex Executor
	results, err := ex.Execute(context.Background(), mockDB,
		[]string{"SELECT 1", "SELECT bogus", "SELECT 3"})

	// earlier results are discarded, the third statement never runs
	assert.Nil(t, results)
	var qe *qerr.Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, qerr.ExecutionFailed, qe.Kind)
	assert.Equal(t, 1, qe.Index)
	assert.Contains(t, qe.Message, `column "bogus" does not exist`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteTimeoutKind(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectQuery("SELECT pg_sleep").WillReturnError(context.DeadlineExceeded)

	ex := Executor{Timeout: 50 * time.Millisecond}
	_, err = ex.Execute(context.Background(), mockDB, []string{"SELECT pg_sleep(60)"})
	var qe *qerr.Error
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, qerr.Timeout, qe.Kind)
	assert.Equal(t, 0, qe.Index)
}

func TestExecuteIdempotentRead(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT 1").
			WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(int64(1)))
	}

	var ex Executor
	first, err := ex.Execute(context.Background(), mockDB, []string{"SELECT 1"})
	require.NoError(t, err)
	second, err := ex.Execute(context.Background(), mockDB, []string{"SELECT 1"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExecuteEmptyBatch(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	var ex Executor
	results, err := ex.Execute(context.Background(), mockDB, nil)
	assert.NoError(t, err)
	assert.Empty(t, results)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutePreservesClassifiedErrors(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	unavailable := qerr.New(qerr.ConnectionUnavailable, "cannot reach postgres database")
	mock.ExpectQuery("SELECT 1").WillReturnError(unavailable)

	var ex Executor
	_, err = ex.Execute(context.Background(), mockDB, []string{"SELECT 1"})
	assert.Equal(t, qerr.ConnectionUnavailable, qerr.KindOf(err))
}
