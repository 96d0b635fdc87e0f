package ticketflow

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lborres/ticketflow/adapters/memory"
	"github.com/lborres/ticketflow/core"
)

type countingStorage struct {
	*memory.Adapter
	mu     sync.Mutex
	gets   int
	getErr error
}

func newCountingStorage() *countingStorage {
	return &countingStorage{Adapter: memory.New()}
}

func (c *countingStorage) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	c.gets++
	err := c.getErr
	c.mu.Unlock()
	if err != nil {
		return "", err
	}
	return c.Adapter.Get(ctx, key)
}

func (c *countingStorage) Gets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets
}

func instant() *LatencyConfig { return &LatencyConfig{} }

func TestNewShouldReturnErrStorageRequired(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, ErrStorageRequired) {
		t.Fatalf("expected ErrStorageRequired, got %v", err)
	}
}

// Requirement: with caching on, repeated reads hit the cache; with
// DisableCache every read reaches the backend.
func TestNewCacheSelection(t *testing.T) {
	tests := []struct {
		name         string
		disableCache bool
		wantGets     int
		wantStats    bool
	}{
		{name: "default cache", wantGets: 1, wantStats: true},
		{name: "cache disabled", disableCache: true, wantGets: 3, wantStats: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			storage := newCountingStorage()
			storage.Set(context.Background(), core.KeyTickets, "[]")
			app, err := New(Config{Storage: storage, DisableCache: test.disableCache, Latency: instant()})
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}

			// Act
			for i := 0; i < 3; i++ {
				if _, err := app.Storage.Get(context.Background(), core.KeyTickets); err != nil {
					t.Fatalf("Get() error = %v", err)
				}
			}

			// Assert
			if storage.Gets() != test.wantGets {
				t.Errorf("backend reads = %d, want %d", storage.Gets(), test.wantGets)
			}
			if _, ok := app.CacheStats(); ok != test.wantStats {
				t.Errorf("CacheStats() ok = %v, want %v", ok, test.wantStats)
			}
		})
	}
}

// Requirement: the users ledger is read from the backend on every login,
// so accounts written there by another process can sign in.
func TestNewUsersLedgerSkipsCache(t *testing.T) {
	// Arrange
	storage := newCountingStorage()
	ctx := context.Background()
	app, err := New(Config{Storage: storage, Latency: instant(), KeyPrefix: "tf_"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := app.Sessions.Signup(ctx, "first@example.com", "secret1", "secret1").Await(ctx); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	ledger, err := app.Sessions.Users(ctx)
	if err != nil {
		t.Fatalf("Users() error = %v", err)
	}

	// Act
	ledger = append(ledger, core.User{ID: "u2", Email: "second@example.com", Password: "secret2"})
	data, err := json.Marshal(ledger)
	if err != nil {
		t.Fatal(err)
	}
	storage.Adapter.Set(ctx, "tf_"+core.KeyUsers, string(data))
	session, err := app.Sessions.Login(ctx, "second@example.com", "secret2").Await(ctx)

	// Assert
	if err != nil {
		t.Fatalf("Login() error = %v, want the externally written account accepted", err)
	}
	if session.ID != "u2" {
		t.Errorf("Login() = %+v, want u2", session)
	}
}

func TestNewShouldRejectConflictingRoutes(t *testing.T) {
	_, err := New(Config{
		Storage: memory.New(),
		Routes:  []Route{{Name: "Home", Path: "/"}},
	})
	if !errors.Is(err, ErrRouteConflict) {
		t.Fatalf("expected ErrRouteConflict, got %v", err)
	}
}

func TestNewShouldUseCustomNotifier(t *testing.T) {
	custom := &recordingNotifier{}
	app, err := New(Config{Storage: memory.New(), Notifier: custom, Latency: instant()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if app.Notifications != nil {
		t.Error("built-in notifier should not be created")
	}

	app.Sessions.Logout(context.Background())
	if len(custom.messages) != 1 {
		t.Errorf("custom notifier got %v", custom.messages)
	}
}

func TestBootstrapInitializesManagers(t *testing.T) {
	app, err := New(Config{Storage: memory.New(), Latency: instant()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := app.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	if !app.Sessions.Initialized() || !app.Tickets.Initialized() {
		t.Error("Bootstrap should initialize both managers")
	}
	if len(app.Tickets.AllTickets()) != 4 {
		t.Errorf("expected demo tickets, got %d", len(app.Tickets.AllTickets()))
	}
}

func TestBootstrapReportsStorageFailure(t *testing.T) {
	storage := newCountingStorage()
	storage.getErr = errors.New("offline")
	app, _ := New(Config{Storage: storage, DisableCache: true, Latency: instant()})

	err := app.Bootstrap(context.Background())

	if err == nil {
		t.Fatal("Bootstrap should report the storage failure")
	}
	if app.Tickets.Initialized() {
		t.Error("tickets should stay uninitialized")
	}
}

// Requirement: signup, ticket work and logout through the application context.
func TestAppEndToEnd(t *testing.T) {
	// Arrange
	storage := memory.New()
	app, err := New(Config{Storage: storage, Latency: instant(), KeyPrefix: "tf_", DisableDemoData: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	app.Bootstrap(ctx)

	// Act
	session, err := app.Sessions.Signup(ctx, "dana@example.com", "hunter22", "hunter22").Await(ctx)
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	ticket, err := app.Tickets.CreateTicket(ctx, TicketInput{Title: "VPN down", Status: core.StatusOpen}).Await(ctx)
	if err != nil {
		t.Fatalf("CreateTicket failed: %v", err)
	}
	app.Sessions.Logout(ctx)

	// Assert
	if ticket.CreatedBy != session.ID {
		t.Errorf("CreatedBy = %q, want %q", ticket.CreatedBy, session.ID)
	}
	if _, err := storage.Get(ctx, "tf_tickets"); err != nil {
		t.Errorf("tickets should be persisted under the prefix: %v", err)
	}
	if d := app.Guard.CheckPath(ctx, "/tickets"); d.Allow || d.Redirect != "/auth/login" {
		t.Errorf("CheckPath after logout = %+v", d)
	}

	messages := app.Notifications.List()
	if len(messages) != 3 {
		t.Fatalf("notifications = %+v", messages)
	}
	if messages[2].Severity != core.SeverityInfo {
		t.Errorf("logout notification = %+v", messages[2])
	}
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) Show(message string, _ Severity, _ time.Duration) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return message
}
