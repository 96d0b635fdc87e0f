package pgx

import (
	"os"
	"testing"

	"github.com/lborres/ticketflow/adapters/storagetest"
	"github.com/lborres/ticketflow/core"
)

// Set TICKETFLOW_TEST_DATABASE_URL to run against a real PostgreSQL.
func TestAdapterContract(t *testing.T) {
	dsn := os.Getenv("TICKETFLOW_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TICKETFLOW_TEST_DATABASE_URL not set")
	}

	a, err := Connect(t.Context(), dsn)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(a.Close)

	storagetest.Run(t, func(t *testing.T) core.Storage {
		if _, err := a.pool.Exec(t.Context(), `TRUNCATE ticketflow_kv`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return a
	})
}

func TestConnectRejectsBadURL(t *testing.T) {
	if _, err := Connect(t.Context(), "://not-a-url"); err == nil {
		t.Fatal("Connect() with malformed url should fail")
	}
}
