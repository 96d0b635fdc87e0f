package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/ticketflow"
)

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type commentInput struct {
	Text string `json:"text"`
}

type filterInput struct {
	Filter string `json:"filter"`
}

type sessionResponse struct {
	Authenticated bool                `json:"authenticated"`
	Session       *ticketflow.Session `json:"session,omitempty"`
}

type pageResponse struct {
	Route   ticketflow.Route    `json:"route"`
	Session *ticketflow.Session `json:"session,omitempty"`
}

// page describes the view a presentation layer should render for route.
func (a *Adapter) page(route ticketflow.Route) fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(pageResponse{
			Route:   route,
			Session: a.currentSession(),
		})
	}
}

func (a *Adapter) login(c fiber.Ctx) error {
	var input loginInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c)
	}

	session, err := a.tf.Sessions.Login(c.Context(), input.Email, input.Password).Await(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(session)
}

func (a *Adapter) signup(c fiber.Ctx) error {
	var input signupInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c)
	}

	session, err := a.tf.Sessions.Signup(c.Context(), input.Email, input.Password, input.ConfirmPassword).Await(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(session)
}

func (a *Adapter) logout(c fiber.Ctx) error {
	a.tf.Sessions.Logout(c.Context())

	return c.Status(http.StatusOK).JSON(map[string]string{
		"message": "logged out successfully",
	})
}

func (a *Adapter) session(c fiber.Ctx) error {
	if !a.tf.Sessions.Initialized() {
		_ = a.tf.Sessions.Initialize(c.Context())
	}

	s := a.currentSession()
	return c.Status(http.StatusOK).JSON(sessionResponse{
		Authenticated: s != nil,
		Session:       s,
	})
}

// listTickets returns the filtered view, or every ticket with ?all=true.
func (a *Adapter) listTickets(c fiber.Ctx) error {
	if c.Query("all") == "true" {
		return c.Status(http.StatusOK).JSON(a.tf.Tickets.AllTickets())
	}
	return c.Status(http.StatusOK).JSON(a.tf.Tickets.FilteredTickets())
}

func (a *Adapter) createTicket(c fiber.Ctx) error {
	var input ticketflow.TicketInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c)
	}

	ticket, err := a.tf.Tickets.CreateTicket(c.Context(), input).Await(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(ticket)
}

func (a *Adapter) getTicket(c fiber.Ctx) error {
	ticket, ok := a.tf.Tickets.TicketByID(c.Params("id"))
	if !ok {
		return handleError(c, ticketflow.ErrTicketNotFound)
	}
	return c.Status(http.StatusOK).JSON(ticket)
}

func (a *Adapter) updateTicket(c fiber.Ctx) error {
	var patch ticketflow.TicketPatch
	if err := c.Bind().Body(&patch); err != nil {
		return badRequest(c)
	}

	ticket, err := a.tf.Tickets.UpdateTicket(c.Context(), c.Params("id"), patch).Await(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(ticket)
}

func (a *Adapter) deleteTicket(c fiber.Ctx) error {
	if _, err := a.tf.Tickets.DeleteTicket(c.Context(), c.Params("id")).Await(c.Context()); err != nil {
		return handleError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (a *Adapter) resolveTicket(c fiber.Ctx) error {
	ticket, err := a.tf.Tickets.ResolveTicket(c.Context(), c.Params("id")).Await(c.Context())
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(ticket)
}

func (a *Adapter) addComment(c fiber.Ctx) error {
	var input commentInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c)
	}

	ticket, err := a.tf.Tickets.AddComment(c.Context(), c.Params("id"), input.Text).Await(c.Context())
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(ticket)
}

func (a *Adapter) stats(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(a.tf.Tickets.Stats())
}

func (a *Adapter) activities(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(a.tf.Tickets.Activities())
}

func (a *Adapter) getFilter(c fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(filterInput{Filter: string(a.tf.Tickets.Filter())})
}

func (a *Adapter) setFilter(c fiber.Ctx) error {
	var input filterInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c)
	}

	if err := a.tf.Tickets.SetFilter(input.Filter); err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(filterInput{Filter: string(a.tf.Tickets.Filter())})
}

// notifications lists the live messages of the built-in sink. A host that
// supplied its own notifier gets an empty list.
func (a *Adapter) notifications(c fiber.Ctx) error {
	if a.tf.Notifications == nil {
		return c.Status(http.StatusOK).JSON([]ticketflow.Notification{})
	}
	return c.Status(http.StatusOK).JSON(a.tf.Notifications.List())
}

func (a *Adapter) dismissNotification(c fiber.Ctx) error {
	if a.tf.Notifications != nil {
		a.tf.Notifications.Remove(c.Params("id"))
	}
	return c.SendStatus(http.StatusNoContent)
}

func (a *Adapter) currentSession() *ticketflow.Session {
	s, ok := a.tf.Sessions.Current()
	if !ok {
		return nil
	}
	return &s
}

func badRequest(c fiber.Ctx) error {
	return c.Status(http.StatusBadRequest).JSON(ticketflow.ErrorResponse{
		Error: "invalid request body",
		Code:  http.StatusBadRequest,
	})
}

// handleError maps domain errors to appropriate HTTP responses
func handleError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	return c.Status(status).JSON(ticketflow.ErrorResponse{
		Error: err.Error(),
		Code:  status,
	})
}

// mapErrorToStatus maps ticketflow error types to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, ticketflow.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, ticketflow.ErrPasswordMismatch),
		errors.Is(err, ticketflow.ErrMissingFields),
		errors.Is(err, ticketflow.ErrPasswordTooShort),
		errors.Is(err, ticketflow.ErrTitleRequired),
		errors.Is(err, ticketflow.ErrInvalidStatus),
		errors.Is(err, ticketflow.ErrInvalidPriority),
		errors.Is(err, ticketflow.ErrInvalidFilter),
		errors.Is(err, ticketflow.ErrCommentRequired):
		return http.StatusBadRequest

	case errors.Is(err, ticketflow.ErrTicketNotFound):
		return http.StatusNotFound

	case errors.Is(err, ticketflow.ErrUserExists):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
