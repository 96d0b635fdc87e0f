package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lborres/ticketflow/core"
	"github.com/lborres/ticketflow/pkg/clock"
	"github.com/lborres/ticketflow/pkg/task"
)

var errTestID = errors.New("id source exhausted")

type testEnv struct {
	storage  *FakeStorage
	notifier *RecordingNotifier
	clock    *clock.FakeClock
	deps     Deps
}

// newTestEnv wires fakes into Deps. Runners built from these deps with
// zero latency never wait on the fake clock.
func newTestEnv() *testEnv {
	env := &testEnv{
		storage:  NewFakeStorage(),
		notifier: &RecordingNotifier{},
		clock:    clock.Fake(testEpoch),
	}
	env.deps = Deps{
		Store:    NewStore(env.storage, "", zerolog.Nop()),
		Notifier: env.notifier,
		Clock:    env.clock,
		NewID:    sequentialIDs("id"),
		Logger:   zerolog.Nop(),
	}
	return env
}

// await resolves a future with a bounded wait.
func await[T any](t *testing.T, f *task.Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := f.Await(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("operation did not complete")
	}
	return v, err
}

func lastNotification(t *testing.T, n *RecordingNotifier) core.Notification {
	t.Helper()
	got, ok := n.Last()
	if !ok {
		t.Fatal("expected a notification")
	}
	return got
}
