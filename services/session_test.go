package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lborres/ticketflow/core"
)

func seedUsers(t *testing.T, env *testEnv, users ...core.User) {
	t.Helper()
	data, err := json.Marshal(users)
	if err != nil {
		t.Fatal(err)
	}
	env.storage.Put(core.KeyUsers, string(data))
}

func storedUsers(t *testing.T, env *testEnv) []core.User {
	t.Helper()
	raw, ok := env.storage.Value(core.KeyUsers)
	if !ok {
		return nil
	}
	var users []core.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		t.Fatalf("ledger is not valid JSON: %v", err)
	}
	return users
}

// Requirement: Initialize restores a persisted session and degrades to
// anonymous on corrupt data.
func TestSessionManager_Initialize(t *testing.T) {
	tests := []struct {
		name        string
		stored      string
		store       bool
		wantAuth    bool
		wantRemoved bool
	}{
		{name: "no persisted session", wantAuth: false},
		{name: "valid session", stored: `{"id":"u1","email":"a@b.c"}`, store: true, wantAuth: true},
		{name: "corrupt session", stored: `{"id":`, store: true, wantAuth: false, wantRemoved: true},
		{name: "null session", stored: `null`, store: true, wantAuth: false, wantRemoved: true},
		{name: "empty session", stored: `{}`, store: true, wantAuth: false, wantRemoved: true},
		{name: "session without email", stored: `{"id":"u1"}`, store: true, wantAuth: false, wantRemoved: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			env := newTestEnv()
			if test.store {
				env.storage.Put(core.KeySession, test.stored)
			}
			m := NewSessionManager(env.deps, 0)
			if !m.Loading() || m.Initialized() {
				t.Fatal("new manager should be loading and uninitialized")
			}

			// Act
			err := m.Initialize(context.Background())

			// Assert
			if err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}
			if m.IsAuthenticated() != test.wantAuth {
				t.Errorf("IsAuthenticated() = %v, want %v", m.IsAuthenticated(), test.wantAuth)
			}
			if m.Loading() || !m.Initialized() {
				t.Error("Initialize() should clear loading and set initialized")
			}
			if _, ok := env.storage.Value(core.KeySession); test.wantRemoved && ok {
				t.Error("unusable session entry should be removed")
			}
			if _, ok := m.Current(); ok != test.wantAuth {
				t.Errorf("Current() ok = %v, want %v", ok, test.wantAuth)
			}
		})
	}
}

// Requirement: Initialize runs only once.
func TestSessionManager_InitializeIsIdempotent(t *testing.T) {
	env := newTestEnv()
	m := NewSessionManager(env.deps, 0)

	m.Initialize(context.Background())
	env.storage.Put(core.KeySession, `{"id":"u1","email":"a@b.c"}`)
	m.Initialize(context.Background())

	if m.IsAuthenticated() {
		t.Error("second Initialize() should not re-read storage")
	}
	if env.storage.GetCount() != 1 {
		t.Errorf("storage reads = %d, want 1", env.storage.GetCount())
	}
}

func TestSessionManager_InitializeStorageFailure(t *testing.T) {
	env := newTestEnv()
	env.storage.SetGetError(errors.New("unavailable"))
	m := NewSessionManager(env.deps, 0)

	if err := m.Initialize(context.Background()); err == nil {
		t.Fatal("Initialize() should report the storage failure")
	}
	if !m.Initialized() || m.IsAuthenticated() {
		t.Error("manager should settle anonymous")
	}
}

// Requirement: a valid signup followed by login with the same credentials
// yields a session for that email.
func TestSessionManager_SignupThenLogin(t *testing.T) {
	tests := []struct {
		email    string
		password string
	}{
		{email: "alice@example.com", password: "secret1"},
		{email: "Bob@Example.com", password: "a much longer passphrase"},
		{email: "x@y", password: "123456"},
	}

	for _, test := range tests {
		t.Run(test.email, func(t *testing.T) {
			// Arrange
			env := newTestEnv()
			m := NewSessionManager(env.deps, 0)
			ctx := context.Background()
			m.Initialize(ctx)

			// Act
			signedUp, err := await(t, m.Signup(ctx, test.email, test.password, test.password))
			if err != nil {
				t.Fatalf("Signup() error = %v", err)
			}
			m.Logout(ctx)
			loggedIn, err := await(t, m.Login(ctx, test.email, test.password))

			// Assert
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if loggedIn.Email != test.email || loggedIn.ID != signedUp.ID {
				t.Errorf("Login() = %+v, want id %q email %q", loggedIn, signedUp.ID, test.email)
			}
			if got := lastNotification(t, env.notifier); got.Message != msgLoginSuccess || got.Severity != core.SeveritySuccess {
				t.Errorf("notification = %+v", got)
			}
			if current, ok := m.Current(); !ok || current != *loggedIn {
				t.Errorf("Current() = %+v, %v", current, ok)
			}
		})
	}
}

// Requirement: signup checks run in order and a failure leaves the
// ledger and session untouched.
func TestSessionManager_SignupValidation(t *testing.T) {
	existing := core.User{ID: "u0", Email: "taken@example.com", Password: "secret0", CreatedAt: testEpoch}

	tests := []struct {
		name        string
		email       string
		password    string
		confirm     string
		wantErr     error
		wantMessage string
	}{
		{name: "password mismatch", email: "new@example.com", password: "secret1", confirm: "secret2", wantErr: core.ErrPasswordMismatch, wantMessage: msgPasswordMismatch},
		{name: "mismatch checked before duplicate", email: existing.Email, password: "secret1", confirm: "other", wantErr: core.ErrPasswordMismatch, wantMessage: msgPasswordMismatch},
		{name: "duplicate email", email: existing.Email, password: "secret1", confirm: "secret1", wantErr: core.ErrUserExists, wantMessage: msgUserExists},
		{name: "duplicate checked before length", email: existing.Email, password: "abc", confirm: "abc", wantErr: core.ErrUserExists, wantMessage: msgUserExists},
		{name: "empty email", email: "", password: "secret1", confirm: "secret1", wantErr: core.ErrMissingFields, wantMessage: msgMissingFields},
		{name: "empty password", email: "new@example.com", password: "", confirm: "", wantErr: core.ErrMissingFields, wantMessage: msgMissingFields},
		{name: "short password", email: "new@example.com", password: "abcde", confirm: "abcde", wantErr: core.ErrPasswordTooShort, wantMessage: msgPasswordTooShort},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			env := newTestEnv()
			seedUsers(t, env, existing)
			m := NewSessionManager(env.deps, 0)

			// Act
			session, err := await(t, m.Signup(context.Background(), test.email, test.password, test.confirm))

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Signup() error = %v, want %v", err, test.wantErr)
			}
			if session != nil {
				t.Errorf("Signup() session = %+v, want nil", session)
			}
			if users := storedUsers(t, env); len(users) != 1 || users[0] != existing {
				t.Errorf("ledger = %+v, want unchanged", users)
			}
			if m.IsAuthenticated() {
				t.Error("failed signup must not authenticate")
			}
			if _, ok := env.storage.Value(core.KeySession); ok {
				t.Error("failed signup must not persist a session")
			}
			got := lastNotification(t, env.notifier)
			if got.Message != test.wantMessage || got.Severity != core.SeverityError {
				t.Errorf("notification = %+v, want error %q", got, test.wantMessage)
			}
		})
	}
}

// Requirement: a successful signup appends to the ledger and persists
// the session.
func TestSessionManager_SignupPersists(t *testing.T) {
	env := newTestEnv()
	seedUsers(t, env, core.User{ID: "u0", Email: "first@example.com", Password: "secret0", CreatedAt: testEpoch})
	m := NewSessionManager(env.deps, 0)

	session, err := await(t, m.Signup(context.Background(), "second@example.com", "secret1", "secret1"))
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	users := storedUsers(t, env)
	if len(users) != 2 {
		t.Fatalf("ledger len = %d, want 2", len(users))
	}
	want := core.User{ID: "id-1", Email: "second@example.com", Password: "secret1", CreatedAt: testEpoch}
	if users[1] != want {
		t.Errorf("new user = %+v, want %+v", users[1], want)
	}
	if session.ID != "id-1" {
		t.Errorf("session id = %q, want the user id", session.ID)
	}
	if raw, _ := env.storage.Value(core.KeySession); raw != `{"id":"id-1","email":"second@example.com"}` {
		t.Errorf("persisted session = %q", raw)
	}
	if got := lastNotification(t, env.notifier); got.Message != msgSignupSuccess {
		t.Errorf("notification = %+v", got)
	}

	// Survives a restart.
	restarted := NewSessionManager(env.deps, 0)
	restarted.Initialize(context.Background())
	if current, ok := restarted.Current(); !ok || current != *session {
		t.Errorf("restored session = %+v, %v", current, ok)
	}
}

// Requirement: login without a ledger match fails and changes nothing.
func TestSessionManager_LoginInvalidCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown email", email: "nobody@example.com", password: "secret0"},
		{name: "wrong password", email: "a@example.com", password: "wrong"},
		{name: "email is case sensitive", email: "A@example.com", password: "secret0"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			env := newTestEnv()
			seedUsers(t, env, core.User{ID: "u0", Email: "a@example.com", Password: "secret0"})
			m := NewSessionManager(env.deps, 0)

			_, err := await(t, m.Login(context.Background(), test.email, test.password))

			if !errors.Is(err, core.ErrInvalidCredentials) {
				t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
			}
			if m.IsAuthenticated() {
				t.Error("failed login must not authenticate")
			}
			got := lastNotification(t, env.notifier)
			if got.Message != msgInvalidCredentials || got.Severity != core.SeverityError {
				t.Errorf("notification = %+v", got)
			}
		})
	}
}

func TestSessionManager_LoginWithCorruptLedger(t *testing.T) {
	env := newTestEnv()
	env.storage.Put(core.KeyUsers, "not json")
	m := NewSessionManager(env.deps, 0)

	_, err := await(t, m.Login(context.Background(), "a@example.com", "secret0"))

	if !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if _, ok := env.storage.Value(core.KeyUsers); ok {
		t.Error("corrupt ledger should be discarded")
	}
}

func TestSessionManager_LedgerReadFailure(t *testing.T) {
	env := newTestEnv()
	env.storage.SetGetError(errors.New("io"))
	m := NewSessionManager(env.deps, 0)

	_, loginErr := await(t, m.Login(context.Background(), "a@example.com", "secret0"))
	_, signupErr := await(t, m.Signup(context.Background(), "a@example.com", "secret0", "secret0"))

	if loginErr == nil || errors.Is(loginErr, core.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want storage failure", loginErr)
	}
	if signupErr == nil {
		t.Error("Signup() should fail when the ledger cannot be read")
	}
	if got := lastNotification(t, env.notifier); got.Severity != core.SeverityError {
		t.Errorf("notification = %+v", got)
	}
}

func TestSessionManager_SignupIDFailure(t *testing.T) {
	env := newTestEnv()
	env.deps.NewID = func() (string, error) { return "", errTestID }
	m := NewSessionManager(env.deps, 0)

	_, err := await(t, m.Signup(context.Background(), "a@example.com", "secret0", "secret0"))

	if !errors.Is(err, errTestID) {
		t.Fatalf("Signup() error = %v, want wrapped id error", err)
	}
	if len(storedUsers(t, env)) != 0 {
		t.Error("ledger should be untouched")
	}
}

// Requirement: logout clears the session, persisted token included, and
// is idempotent.
func TestSessionManager_Logout(t *testing.T) {
	env := newTestEnv()
	env.storage.Put(core.KeySession, `{"id":"u1","email":"a@b.c"}`)
	m := NewSessionManager(env.deps, 0)
	ctx := context.Background()
	m.Initialize(ctx)

	m.Logout(ctx)
	m.Logout(ctx)

	if m.IsAuthenticated() {
		t.Error("IsAuthenticated() should be false after Logout()")
	}
	if _, ok := env.storage.Value(core.KeySession); ok {
		t.Error("Logout() should remove the persisted session")
	}
	got := lastNotification(t, env.notifier)
	if got.Message != msgLoggedOut || got.Severity != core.SeverityInfo {
		t.Errorf("notification = %+v", got)
	}
}

// Requirement: login waits for the simulated latency.
func TestSessionManager_LoginLatency(t *testing.T) {
	env := newTestEnv()
	seedUsers(t, env, core.User{ID: "u0", Email: "a@example.com", Password: "secret0"})
	m := NewSessionManager(env.deps, 1500*time.Millisecond)

	future := m.Login(context.Background(), "a@example.com", "secret0")

	env.clock.Advance(1499 * time.Millisecond)
	select {
	case <-future.Done():
		t.Fatal("Login() completed before the latency elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	env.clock.Advance(time.Millisecond)
	if _, err := await(t, future); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !m.IsAuthenticated() {
		t.Error("IsAuthenticated() should be true after login")
	}
}

func TestSessionManager_Users(t *testing.T) {
	env := newTestEnv()
	seedUsers(t, env, core.User{ID: "u0", Email: "a@example.com"}, core.User{ID: "u1", Email: "b@example.com"})
	m := NewSessionManager(env.deps, 0)

	users, err := m.Users(context.Background())
	if err != nil {
		t.Fatalf("Users() error = %v", err)
	}
	if len(users) != 2 || users[1].Email != "b@example.com" {
		t.Errorf("Users() = %+v", users)
	}
}
