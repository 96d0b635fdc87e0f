package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/lborres/ticketflow"
)

// DefaultAPIPath is where the JSON API is mounted.
const DefaultAPIPath = "/api"

type Adapter struct {
	app     *fiber.App
	tf      *ticketflow.App
	apiPath string
}

func New(app *fiber.App, tf *ticketflow.App) *Adapter {
	return &Adapter{app: app, tf: tf, apiPath: DefaultAPIPath}
}

// RegisterRoutes mounts every registered page route behind the navigation
// guard, then the JSON API.
func (a *Adapter) RegisterRoutes() error {
	a.app.Use(a.requestLogger)

	for _, route := range a.tf.Routes.Routes() {
		a.app.Get(route.Path, a.guardPage(route), a.page(route))
	}

	api := a.app.Group(a.apiPath)

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/login", a.login)
	auth.Post("/signup", a.signup)
	auth.Post("/logout", a.logout)
	auth.Get("/session", a.session)

	api.Get("/notifications", a.notifications)
	api.Delete("/notifications/:id", a.dismissNotification)

	// Protected routes
	tickets := api.Group("/tickets", a.requireSession)
	tickets.Get("/", a.listTickets)
	tickets.Post("/", a.createTicket)
	tickets.Get("/:id", a.getTicket)
	tickets.Patch("/:id", a.updateTicket)
	tickets.Delete("/:id", a.deleteTicket)
	tickets.Post("/:id/resolve", a.resolveTicket)
	tickets.Post("/:id/comments", a.addComment)

	api.Get("/stats", a.requireSession, a.stats)
	api.Get("/activities", a.requireSession, a.activities)
	api.Get("/filter", a.requireSession, a.getFilter)
	api.Put("/filter", a.requireSession, a.setFilter)

	return nil
}
