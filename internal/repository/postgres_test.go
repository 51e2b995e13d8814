package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// Runs against a real database only when LEDGER_TEST_DATABASE_URL is set.
func TestPostgresRepository_Contract(t *testing.T) {
	dsn := os.Getenv("LEDGER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("LEDGER_TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.PingContext(ctx))

	repo := NewPostgresRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))
	_, err = db.ExecContext(ctx, `TRUNCATE accounts`)
	require.NoError(t, err)

	runContract(t, repo)
}
