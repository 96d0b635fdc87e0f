package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/lborres/ticketflow/core"
)

// DefaultLoginPath is where the guard sends anonymous visitors.
const DefaultLoginPath = "/auth/login"

// BaseRoutes returns the views every host exposes. Dashboard and Tickets
// require an authenticated session.
func BaseRoutes() []core.Route {
	return []core.Route{
		{Name: "Landing", Path: "/"},
		{Name: "Login", Path: DefaultLoginPath},
		{Name: "Signup", Path: "/auth/signup"},
		{Name: "Dashboard", Path: "/dashboard", RequiresAuth: true},
		{Name: "Tickets", Path: "/tickets", RequiresAuth: true},
	}
}

// RouteRegistry holds the route table and rejects duplicate paths or
// names.
type RouteRegistry struct {
	// routes stores registered routes keyed by path
	routes map[string]core.Route
	names  map[string]string
}

// NewRouteRegistry creates a registry with BaseRoutes pre-registered.
func NewRouteRegistry() *RouteRegistry {
	reg := &RouteRegistry{
		routes: make(map[string]core.Route),
		names:  make(map[string]string),
	}
	for _, r := range BaseRoutes() {
		reg.add(r)
	}
	return reg
}

func (r *RouteRegistry) add(route core.Route) {
	r.routes[route.Path] = route
	r.names[route.Name] = route.Path
}

// Register adds routes to the table. If any route conflicts with an
// existing one, or with another route in the same batch, nothing is
// registered.
func (r *RouteRegistry) Register(routes []core.Route) error {
	seenPaths := make(map[string]bool)
	seenNames := make(map[string]bool)
	for _, route := range routes {
		if route.Path == "" || route.Name == "" {
			return fmt.Errorf("%w: route needs a name and a path", core.ErrRouteConflict)
		}
		if _, exists := r.routes[route.Path]; exists || seenPaths[route.Path] {
			return fmt.Errorf("%w: path %s already registered", core.ErrRouteConflict, route.Path)
		}
		if _, exists := r.names[route.Name]; exists || seenNames[route.Name] {
			return fmt.Errorf("%w: name %s already registered", core.ErrRouteConflict, route.Name)
		}
		seenPaths[route.Path] = true
		seenNames[route.Name] = true
	}

	for _, route := range routes {
		r.add(route)
	}
	return nil
}

// Lookup finds a route by path.
func (r *RouteRegistry) Lookup(path string) (core.Route, error) {
	route, ok := r.routes[path]
	if !ok {
		return core.Route{}, fmt.Errorf("%w: %s", core.ErrRouteNotFound, path)
	}
	return route, nil
}

// Routes returns every registered route sorted by path.
func (r *RouteRegistry) Routes() []core.Route {
	result := make([]core.Route, 0, len(r.routes))
	for _, route := range r.routes {
		result = append(result, route)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result
}

// Guard decides whether a route transition may proceed.
type Guard struct {
	sessions  core.SessionState
	routes    *RouteRegistry
	loginPath string
	logger    zerolog.Logger
}

func NewGuard(sessions core.SessionState, routes *RouteRegistry, loginPath string, logger zerolog.Logger) *Guard {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &Guard{
		sessions:  sessions,
		routes:    routes,
		loginPath: loginPath,
		logger:    logger.With().Str("component", "guard").Logger(),
	}
}

// Check initializes the session manager on first use, then redirects
// anonymous visitors away from protected routes.
func (g *Guard) Check(ctx context.Context, route core.Route) core.Decision {
	if !g.sessions.Initialized() {
		if err := g.sessions.Initialize(ctx); err != nil {
			g.logger.Error().Err(err).Msg("failed to initialize sessions")
		}
	}

	if route.RequiresAuth && !g.sessions.IsAuthenticated() {
		g.logger.Debug().Str("path", route.Path).Msg("redirecting to login")
		return core.Decision{Redirect: g.loginPath}
	}
	return core.Decision{Allow: true}
}

// CheckPath resolves path through the registry before checking it.
// Unknown paths are treated as public.
func (g *Guard) CheckPath(ctx context.Context, path string) core.Decision {
	route, err := g.routes.Lookup(path)
	if err != nil {
		route = core.Route{Path: path}
	}
	return g.Check(ctx, route)
}

// LoginPath returns the redirect target for anonymous visitors.
func (g *Guard) LoginPath() string { return g.loginPath }
