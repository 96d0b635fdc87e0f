package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/lborres/ticketflow/adapters/storagetest"
	"github.com/lborres/ticketflow/core"
)

// Set TICKETFLOW_TEST_REDIS_URL to run against a real server.
func TestAdapterContract(t *testing.T) {
	url := os.Getenv("TICKETFLOW_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TICKETFLOW_TEST_REDIS_URL not set")
	}

	storagetest.Run(t, func(t *testing.T) core.Storage {
		// A fresh namespace per subtest keeps runs isolated.
		a, err := Connect(t.Context(), url, "ticketflow-test-"+uuid.NewString())
		if err != nil {
			t.Fatalf("Connect() error = %v", err)
		}
		t.Cleanup(func() {
			for _, k := range []string{core.KeySession, core.KeyUsers, core.KeyTickets, core.KeyActivities, "absent"} {
				a.client.Del(context.Background(), a.key(k))
			}
			a.Close()
		})
		return a
	})
}

func TestAdapterKeyNamespace(t *testing.T) {
	tests := []struct {
		namespace string
		want      string
	}{
		{namespace: "", want: "tickets"},
		{namespace: "tf", want: "tf:tickets"},
	}
	for _, test := range tests {
		a := New(nil, test.namespace)
		if got := a.key(core.KeyTickets); got != test.want {
			t.Errorf("key() = %q, want %q", got, test.want)
		}
	}
}

func TestConnectRejectsBadURL(t *testing.T) {
	if _, err := Connect(t.Context(), "not-a-url", ""); err == nil {
		t.Fatal("Connect() with malformed url should fail")
	}
}
