package postgres

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchema = `
-- requests table
CREATE TABLE IF NOT EXISTS a (id INT);

-- index
CREATE INDEX IF NOT EXISTS idx_a ON a (id);
   ;
`

func TestSplitStatements(t *testing.T) {
	statements := SplitStatements(sampleSchema)

	require.Len(t, statements, 2)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS a (id INT)", statements[0])
	assert.Equal(t, "CREATE INDEX IF NOT EXISTS idx_a ON a (id)", statements[1])
}

func TestExecuteStatements_ContinuesPastFailures(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "postgres")

	mock.ExpectExec("CREATE TABLE").WillReturnError(assert.AnError)
	mock.ExpectExec("CREATE INDEX").WillReturnResult(sqlmock.NewResult(0, 0))

	count := ExecuteStatements(db, SplitStatements(sampleSchema))

	assert.Equal(t, 1, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSchema_ExplicitPathMissing(t *testing.T) {
	_, err := findSchema("/does/not/exist.sql")
	assert.Error(t, err)
}
