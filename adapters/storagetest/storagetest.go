// Package storagetest holds the behavior every core.Storage backend must
// share. Backend packages call Run from their own tests.
package storagetest

import (
	"errors"
	"testing"

	"github.com/lborres/ticketflow/core"
)

// Factory returns an empty backend for one subtest.
type Factory func(t *testing.T) core.Storage

func Run(t *testing.T, newStorage Factory) {
	t.Helper()

	// Requirement: a missing key reports ErrKeyNotFound.
	t.Run("get missing key", func(t *testing.T) {
		s := newStorage(t)

		_, err := s.Get(t.Context(), "absent")

		if !errors.Is(err, core.ErrKeyNotFound) {
			t.Fatalf("Get() error = %v, want ErrKeyNotFound", err)
		}
	})

	// Requirement: Set then Get returns the exact text.
	t.Run("set then get", func(t *testing.T) {
		tests := []struct {
			name  string
			value string
		}{
			{name: "json array", value: `[{"id":"1","title":"Login bug"}]`},
			{name: "empty string", value: ""},
			{name: "unicode", value: `{"icon":"🗑️"}`},
		}
		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				s := newStorage(t)
				ctx := t.Context()

				if err := s.Set(ctx, core.KeyTickets, test.value); err != nil {
					t.Fatalf("Set() error = %v", err)
				}
				got, err := s.Get(ctx, core.KeyTickets)

				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if got != test.value {
					t.Errorf("Get() = %q, want %q", got, test.value)
				}
			})
		}
	})

	// Requirement: Set overwrites an existing value.
	t.Run("overwrite", func(t *testing.T) {
		s := newStorage(t)
		ctx := t.Context()

		s.Set(ctx, core.KeySession, `{"id":"a"}`)
		s.Set(ctx, core.KeySession, `{"id":"b"}`)
		got, err := s.Get(ctx, core.KeySession)

		if err != nil || got != `{"id":"b"}` {
			t.Fatalf("Get() = %q, %v; want overwritten value", got, err)
		}
	})

	// Requirement: Remove deletes the key and is idempotent.
	t.Run("remove", func(t *testing.T) {
		s := newStorage(t)
		ctx := t.Context()

		s.Set(ctx, core.KeyActivities, "[]")
		if err := s.Remove(ctx, core.KeyActivities); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if err := s.Remove(ctx, core.KeyActivities); err != nil {
			t.Fatalf("second Remove() error = %v", err)
		}
		if _, err := s.Get(ctx, core.KeyActivities); !errors.Is(err, core.ErrKeyNotFound) {
			t.Fatalf("Get() after Remove error = %v, want ErrKeyNotFound", err)
		}
	})

	// Requirement: keys are independent.
	t.Run("independent keys", func(t *testing.T) {
		s := newStorage(t)
		ctx := t.Context()

		s.Set(ctx, core.KeyTickets, "tickets")
		s.Set(ctx, core.KeyUsers, "users")
		s.Remove(ctx, core.KeyTickets)

		got, err := s.Get(ctx, core.KeyUsers)
		if err != nil || got != "users" {
			t.Fatalf("Get(users) = %q, %v; want \"users\"", got, err)
		}
	})
}
