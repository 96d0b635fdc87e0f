package fiber

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/ticketflow"
)

// guardPage redirects anonymous visitors away from routes that require a
// session. The session manager is initialized on first use.
func (a *Adapter) guardPage(route ticketflow.Route) fiber.Handler {
	return func(c fiber.Ctx) error {
		decision := a.tf.Guard.Check(c.Context(), route)
		if !decision.Allow {
			return c.Redirect().Status(fiber.StatusFound).To(decision.Redirect)
		}
		return c.Next()
	}
}

// requireSession rejects API calls made without a current session and
// loads tickets if bootstrap could not.
func (a *Adapter) requireSession(c fiber.Ctx) error {
	if !a.tf.Sessions.Initialized() {
		// Initialization failures settle anonymous and are logged there.
		_ = a.tf.Sessions.Initialize(c.Context())
	}

	if !a.tf.Sessions.IsAuthenticated() {
		return c.Status(fiber.StatusUnauthorized).JSON(ticketflow.ErrorResponse{
			Error: "authentication required",
			Code:  fiber.StatusUnauthorized,
		})
	}

	if !a.tf.Tickets.Initialized() {
		if err := a.tf.Tickets.Initialize(c.Context()); err != nil {
			a.tf.Logger.Error().Err(err).Msg("failed to load tickets")
			return c.Status(fiber.StatusServiceUnavailable).JSON(ticketflow.ErrorResponse{
				Error: "tickets unavailable",
				Code:  fiber.StatusServiceUnavailable,
			})
		}
	}

	return c.Next()
}

func (a *Adapter) requestLogger(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	a.tf.Logger.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("request")

	return err
}
