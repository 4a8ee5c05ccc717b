package testutils

import (
	"context"
	"crypto/rand"
	"fmt"
	"testing"
	"time"

	"github.com/icinga/icingadb/pkg/logging"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// GetTestDB opens a new in-memory SQLite database, applies the given schema statements and returns it.
//
// The database is closed automatically when the test finishes.
func GetTestDB(ctx context.Context, t *testing.T, schema ...string) *sqlx.DB {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err, "opening in-memory database should not fail")

	// Every connection of an in-memory database sees its own empty database, so stick to a single one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.PingContext(ctx), "pinging the database should not fail")

	for _, stmt := range schema {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, "applying schema should not fail")
	}

	return db
}

// MakeRandomString returns a 20 byte random hex string.
func MakeRandomString(t *testing.T) string {
	buf := make([]byte, 20)
	_, err := rand.Read(buf)
	require.NoError(t, err, "failed to generate random string")

	return fmt.Sprintf("%x", buf)
}

// NewTestLogger creates a new logger for testing purposes that writes to the test log at debug level.
func NewTestLogger(t *testing.T) *logging.Logger {
	return logging.NewLogger(zaptest.NewLogger(t).Sugar(), time.Hour)
}
