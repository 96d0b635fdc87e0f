package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/lborres/ticketflow/core"
)

// NewUUIDv7 returns a time-ordered UUID string.
func NewUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// timestamp normalizes t to the precision that survives a JSON round trip
// through the persisted format.
func timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

type discardNotifier struct{}

func (discardNotifier) Show(string, core.Severity, time.Duration) string { return "" }
