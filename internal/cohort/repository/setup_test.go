package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benidevo/mentormatch/internal/storage/sqlite"
)

// newTestDB opens an in-memory database with the full schema applied, so
// these tests exercise the real SQLite dialect (JSON columns, ON CONFLICT
// upserts, foreign keys) rather than a mocked driver.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(":memory:", 1, 1)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlite.Migrate(db, "../../storage/sqlite/migrations"))

	return db
}
