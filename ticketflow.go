package ticketflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lborres/ticketflow/core"
	"github.com/lborres/ticketflow/pkg/cache"
	"github.com/lborres/ticketflow/pkg/clock"
	"github.com/lborres/ticketflow/services"
)

// interfaces
type (
	Storage  = core.Storage
	Cache    = core.Cache
	Notifier = core.Notifier
)

// structs
type (
	Config        = core.Config
	LatencyConfig = core.LatencyConfig
	CacheConfig   = core.CacheConfig
)

type (
	User          = core.User
	Session       = core.Session
	Ticket        = core.Ticket
	Comment       = core.Comment
	TicketInput   = core.TicketInput
	TicketPatch   = core.TicketPatch
	Activity      = core.Activity
	Stats         = core.Stats
	Notification  = core.Notification
	Route         = core.Route
	Decision      = core.Decision
	ErrorResponse = core.ErrorResponse
	CacheStats    = core.CacheStats

	Status     = core.Status
	Priority   = core.Priority
	Filter     = core.Filter
	Severity   = core.Severity
	ActionKind = core.ActionKind
)

const (
	defaultCacheTTL     = 5 * time.Minute
	defaultCacheMaxSize = 500
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache     = cache.NewInMemoryCache
	DefaultLatencyConfig = core.DefaultLatencyConfig
	NewUUIDv7            = services.NewUUIDv7
)

var (
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrPasswordMismatch   = core.ErrPasswordMismatch
	ErrUserExists         = core.ErrUserExists
	ErrMissingFields      = core.ErrMissingFields
	ErrPasswordTooShort   = core.ErrPasswordTooShort
)

var (
	ErrCreateFailed   = core.ErrCreateFailed
	ErrUpdateFailed   = core.ErrUpdateFailed
	ErrDeleteFailed   = core.ErrDeleteFailed
	ErrTicketNotFound = core.ErrTicketNotFound
)

var (
	ErrTitleRequired   = core.ErrTitleRequired
	ErrInvalidStatus   = core.ErrInvalidStatus
	ErrInvalidPriority = core.ErrInvalidPriority
	ErrInvalidFilter   = core.ErrInvalidFilter
	ErrCommentRequired = core.ErrCommentRequired
)

var (
	ErrKeyNotFound     = core.ErrKeyNotFound
	ErrCacheNotFound   = core.ErrCacheNotFound
	ErrRouteNotFound   = core.ErrRouteNotFound
	ErrRouteConflict   = core.ErrRouteConflict
	ErrStorageRequired = core.ErrStorageRequired
)

// App is the application context a host constructs once at bootstrap and
// hands to its presentation layer.
type App struct {
	Sessions *services.SessionManager
	Tickets  *services.TicketManager
	Routes   *services.RouteRegistry
	Guard    *services.Guard

	// Notifier receives every user-facing message. Notifications is the
	// built-in sink and is nil when Config.Notifier replaced it.
	Notifier      core.Notifier
	Notifications *services.Notifier

	// Storage is the backend in use, wrapped by the read cache unless
	// caching is disabled.
	Storage core.Storage
	Logger  zerolog.Logger
}

func New(config Config) (*App, error) {
	if config.Storage == nil {
		return nil, ErrStorageRequired
	}

	// Set Defaults

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	newID := config.NewID
	if newID == nil {
		newID = services.NewUUIDv7
	}

	latency := DefaultLatencyConfig()
	if config.Latency != nil {
		latency = *config.Latency
	}

	storage := config.Storage
	cacheAdapter := config.Cache
	if cacheAdapter == nil && !config.DisableCache {
		cacheAdapter = cache.NewInMemoryCacheWithClock(CacheConfig{
			TTL:     defaultCacheTTL,
			MaxSize: defaultCacheMaxSize,
		}, clk)
	}
	if cacheAdapter != nil {
		// The users ledger may be written by other processes sharing the backend.
		storage = services.NewCachedStorage(storage, cacheAdapter, config.KeyPrefix+core.KeyUsers)
	}

	app := &App{Storage: storage, Logger: logger}

	notifier := config.Notifier
	if notifier == nil {
		app.Notifications = services.NewNotifier(clk, newID, logger)
		notifier = app.Notifications
	}
	app.Notifier = notifier

	routes := services.NewRouteRegistry()
	if err := routes.Register(config.Routes); err != nil {
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}
	app.Routes = routes

	deps := services.Deps{
		Store:    services.NewStore(storage, config.KeyPrefix, logger),
		Notifier: notifier,
		Clock:    clk,
		NewID:    newID,
		Logger:   logger,
	}

	app.Sessions = services.NewSessionManager(deps, latency.Auth)
	app.Tickets = services.NewTicketManager(deps, services.TicketManagerConfig{
		Latency:         latency.Tickets,
		DisableDemoData: config.DisableDemoData,
	}, app.Sessions)
	app.Guard = services.NewGuard(app.Sessions, routes, config.LoginPath, logger)

	return app, nil
}

// Bootstrap initializes the session and ticket managers. Both run even if
// the first fails.
func (a *App) Bootstrap(ctx context.Context) error {
	sessionErr := a.Sessions.Initialize(ctx)
	if sessionErr != nil {
		sessionErr = fmt.Errorf("failed to initialize sessions: %w", sessionErr)
	}
	ticketErr := a.Tickets.Initialize(ctx)
	if ticketErr != nil {
		ticketErr = fmt.Errorf("failed to initialize tickets: %w", ticketErr)
	}
	return errors.Join(sessionErr, ticketErr)
}

// CacheStats reports the storage read cache counters, if a counting cache
// is in use.
func (a *App) CacheStats() (CacheStats, bool) {
	if cached, ok := a.Storage.(*services.CachedStorage); ok {
		return cached.Stats()
	}
	return CacheStats{}, false
}
