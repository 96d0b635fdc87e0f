package core

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/lborres/ticketflow/pkg/clock"
)

type Config struct {
	Storage Storage

	// Optional config
	Cache           Cache
	DisableCache    bool
	Notifier        Notifier
	Clock           clock.Clock
	Logger          *zerolog.Logger
	Latency         *LatencyConfig
	NewID           IDFunc
	KeyPrefix       string
	DisableDemoData bool
	LoginPath       string
	Routes          []Route
}

// LatencyConfig is the simulated round-trip applied to asynchronous
// operations. Zero values run the operation without waiting.
type LatencyConfig struct {
	Auth    time.Duration
	Tickets time.Duration
}

func DefaultLatencyConfig() LatencyConfig {
	return LatencyConfig{
		Auth:    1500 * time.Millisecond,
		Tickets: 500 * time.Millisecond,
	}
}
