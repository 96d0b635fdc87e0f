package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lborres/ticketflow/core"
	"github.com/lborres/ticketflow/pkg/clock"
	"github.com/lborres/ticketflow/pkg/task"
)

const (
	// MaxActivities bounds the activity log.
	MaxActivities = 10

	defaultAssignee = "Unassigned"
	defaultActor    = "You"
	defaultCreator  = "current-user"
	systemActor     = "system"
)

type TicketManagerConfig struct {
	Latency         time.Duration
	DisableDemoData bool
}

// TicketManager owns the ticket collection, the activity log and the
// active filter. Mutations run through a task.Runner, so they apply one
// at a time in the order they were issued, and each successful mutation
// is written through to storage.
type TicketManager struct {
	store    *Store
	notify   core.Notifier
	runner   *task.Runner
	clock    clock.Clock
	newID    core.IDFunc
	logger   zerolog.Logger
	sessions core.SessionReader
	demoData bool

	mu          sync.RWMutex
	tickets     []core.Ticket // newest first
	activities  []core.Activity
	filter      core.Filter
	loading     bool
	initialized bool
}

// NewTicketManager creates a ticket manager. sessions may be nil, in which
// case tickets are attributed to a generic creator.
func NewTicketManager(deps Deps, config TicketManagerConfig, sessions core.SessionReader) *TicketManager {
	deps = deps.withDefaults()
	return &TicketManager{
		store:    deps.Store,
		notify:   deps.Notifier,
		runner:   task.NewRunner(deps.Clock, config.Latency),
		clock:    deps.Clock,
		newID:    deps.NewID,
		logger:   deps.Logger.With().Str("component", "tickets").Logger(),
		sessions: sessions,
		demoData: !config.DisableDemoData,
		filter:   core.FilterAll,
		loading:  true,
	}
}

// Initialize loads tickets and activities from storage, seeding the demo
// dataset when no tickets were persisted. It runs once. A storage read
// error leaves the manager uninitialized so the caller can retry without
// the seed overwriting persisted data.
func (m *TicketManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		return nil
	}

	var tickets []core.Ticket
	found, err := m.store.Load(ctx, core.KeyTickets, &tickets)
	if err != nil {
		return fmt.Errorf("failed to load tickets: %w", err)
	}

	var activities []core.Activity
	if !found && m.demoData {
		tickets, activities = demoData(m.clock.Now())
		m.logger.Info().Int("tickets", len(tickets)).Msg("seeded demo data")
	}

	var saved []core.Activity
	found, err = m.store.Load(ctx, core.KeyActivities, &saved)
	if err != nil {
		return fmt.Errorf("failed to load activities: %w", err)
	}
	if found {
		activities = saved
	}
	if len(activities) > MaxActivities {
		activities = activities[:MaxActivities]
	}

	m.tickets = tickets
	m.activities = activities
	m.loading = false
	m.initialized = true
	m.logger.Debug().Int("tickets", len(tickets)).Int("activities", len(activities)).Msg("tickets initialized")
	return nil
}

// CreateTicket adds a ticket at the front of the collection. Title and a
// valid status are required; priority defaults to medium and assignee to
// Unassigned.
func (m *TicketManager) CreateTicket(ctx context.Context, input core.TicketInput) *task.Future[*core.Ticket] {
	ctx = context.WithoutCancel(ctx)
	return task.Run(m.runner, func() (_ *core.Ticket, err error) {
		defer m.recoverFailure(msgCreateFailed, core.ErrCreateFailed, &err)

		if err := validateInput(&input); err != nil {
			return nil, m.fail(msgCreateFailed, fmt.Errorf("%w: %w", core.ErrCreateFailed, err))
		}
		if err := m.Initialize(ctx); err != nil {
			return nil, m.fail(msgCreateFailed, fmt.Errorf("%w: %w", core.ErrCreateFailed, err))
		}

		id, err := m.newID()
		if err != nil {
			return nil, m.fail(msgCreateFailed, fmt.Errorf("%w: failed to generate id: %w", core.ErrCreateFailed, err))
		}

		now := timestamp(m.clock.Now())
		ticket := core.Ticket{
			ID:          id,
			Title:       input.Title,
			Description: input.Description,
			Status:      input.Status,
			Priority:    input.Priority,
			Assignee:    input.Assignee,
			CreatedAt:   now,
			UpdatedAt:   now,
			CreatedBy:   m.creator(),
		}

		tickets, activities := m.insert(ticket, now)

		m.persist(ctx, tickets, activities)
		m.notify.Show(msgTicketCreated, core.SeveritySuccess, 0)
		m.logger.Info().Str("ticket_id", id).Msg("ticket created")
		return &ticket, nil
	})
}

// UpdateTicket merges the non-nil fields of patch onto the ticket and
// bumps UpdatedAt. An unknown id fails with ErrTicketNotFound and leaves
// the collection and activity log untouched.
func (m *TicketManager) UpdateTicket(ctx context.Context, id string, patch core.TicketPatch) *task.Future[*core.Ticket] {
	ctx = context.WithoutCancel(ctx)
	return task.Run(m.runner, func() (_ *core.Ticket, err error) {
		defer m.recoverFailure(msgUpdateFailed, core.ErrUpdateFailed, &err)

		if err := validatePatch(patch); err != nil {
			return nil, m.fail(msgUpdateFailed, fmt.Errorf("%w: %w", core.ErrUpdateFailed, err))
		}

		return m.mutate(ctx, id, core.ActionUpdated, msgTicketUpdated, func(t *core.Ticket) {
			applyPatch(t, patch)
		})
	})
}

// ResolveTicket closes the ticket and records a resolved activity.
func (m *TicketManager) ResolveTicket(ctx context.Context, id string) *task.Future[*core.Ticket] {
	ctx = context.WithoutCancel(ctx)
	return task.Run(m.runner, func() (_ *core.Ticket, err error) {
		defer m.recoverFailure(msgUpdateFailed, core.ErrUpdateFailed, &err)

		return m.mutate(ctx, id, core.ActionResolved, msgTicketResolved, func(t *core.Ticket) {
			t.Status = core.StatusClosed
		})
	})
}

// AddComment appends a comment to the ticket's thread.
func (m *TicketManager) AddComment(ctx context.Context, id, text string) *task.Future[*core.Ticket] {
	ctx = context.WithoutCancel(ctx)
	return task.Run(m.runner, func() (_ *core.Ticket, err error) {
		defer m.recoverFailure(msgUpdateFailed, core.ErrUpdateFailed, &err)

		text = strings.TrimSpace(text)
		if text == "" {
			return nil, m.fail(msgUpdateFailed, fmt.Errorf("%w: %w", core.ErrUpdateFailed, core.ErrCommentRequired))
		}

		commentID, err := m.newID()
		if err != nil {
			return nil, m.fail(msgUpdateFailed, fmt.Errorf("%w: failed to generate id: %w", core.ErrUpdateFailed, err))
		}

		author := m.author()
		return m.mutate(ctx, id, core.ActionCommented, msgCommentAdded, func(t *core.Ticket) {
			t.Comments = append(t.Comments, core.Comment{
				ID:        commentID,
				Text:      text,
				Author:    author,
				CreatedAt: t.UpdatedAt,
			})
		})
	})
}

// mutate applies change to the ticket with the given id, stamps
// UpdatedAt, records action and persists. It must run inside a runner
// body. Every failure is an ErrUpdateFailed.
func (m *TicketManager) mutate(ctx context.Context, id string, action core.ActionKind, success string, change func(*core.Ticket)) (*core.Ticket, error) {
	if err := m.Initialize(ctx); err != nil {
		return nil, m.fail(msgUpdateFailed, fmt.Errorf("%w: %w", core.ErrUpdateFailed, err))
	}

	ticket, tickets, activities, ok := m.apply(id, action, change)
	if !ok {
		return nil, m.fail(msgTicketNotFound, fmt.Errorf("%w: %w: %s", core.ErrUpdateFailed, core.ErrTicketNotFound, id))
	}

	m.persist(ctx, tickets, activities)
	m.notify.Show(success, core.SeveritySuccess, 0)
	m.logger.Info().Str("ticket_id", id).Str("action", string(action)).Msg("ticket changed")
	return &ticket, nil
}

// DeleteTicket removes the ticket if present. Deleting an unknown id
// succeeds without recording an activity.
func (m *TicketManager) DeleteTicket(ctx context.Context, id string) *task.Future[struct{}] {
	ctx = context.WithoutCancel(ctx)
	return task.Run(m.runner, func() (_ struct{}, err error) {
		defer m.recoverFailure(msgDeleteFailed, core.ErrDeleteFailed, &err)

		if err := m.Initialize(ctx); err != nil {
			return struct{}{}, m.fail(msgDeleteFailed, fmt.Errorf("%w: %w", core.ErrDeleteFailed, err))
		}

		tickets, activities, removed := m.remove(id)
		if removed {
			m.persist(ctx, tickets, activities)
			m.logger.Info().Str("ticket_id", id).Msg("ticket deleted")
		}
		m.notify.Show(msgTicketDeleted, core.SeveritySuccess, 0)
		return struct{}{}, nil
	})
}

// insert prepends ticket and its created activity and returns snapshots
// of both collections.
func (m *TicketManager) insert(ticket core.Ticket, now time.Time) ([]core.Ticket, []core.Activity) {
	entry := m.newActivity(core.ActionCreated, ticket, now)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets = append([]core.Ticket{ticket}, m.tickets...)
	m.prependActivityLocked(entry)
	return m.snapshotLocked()
}

// apply runs change against a copy of the ticket and commits the copy
// together with its activity. ok is false when no ticket has the id.
func (m *TicketManager) apply(id string, action core.ActionKind, change func(*core.Ticket)) (ticket core.Ticket, tickets []core.Ticket, activities []core.Activity, ok bool) {
	now := timestamp(m.clock.Now())

	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(id)
	if i < 0 {
		return core.Ticket{}, nil, nil, false
	}

	ticket = m.tickets[i].Clone()
	if now.Before(ticket.CreatedAt) {
		now = ticket.CreatedAt
	}
	ticket.UpdatedAt = now
	change(&ticket)
	entry := m.newActivity(action, ticket, now)

	m.tickets[i] = ticket
	m.prependActivityLocked(entry)
	tickets, activities = m.snapshotLocked()
	return ticket.Clone(), tickets, activities, true
}

// remove drops the ticket with the given id and records the deletion.
func (m *TicketManager) remove(id string) ([]core.Ticket, []core.Activity, bool) {
	now := timestamp(m.clock.Now())

	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(id)
	if i < 0 {
		return nil, nil, false
	}

	entry := m.newActivity(core.ActionDeleted, m.tickets[i], now)
	m.tickets = append(m.tickets[:i:i], m.tickets[i+1:]...)
	m.prependActivityLocked(entry)
	tickets, activities := m.snapshotLocked()
	return tickets, activities, true
}

// TicketByID returns a copy of the ticket with the given id.
func (m *TicketManager) TicketByID(id string) (core.Ticket, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.indexLocked(id); i >= 0 {
		return m.tickets[i].Clone(), true
	}
	return core.Ticket{}, false
}

// SetFilter selects the derived ticket view. Unknown values are rejected
// and leave the current filter in place.
func (m *TicketManager) SetFilter(value string) error {
	f, err := core.ParseFilter(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.filter = f
	m.mu.Unlock()
	return nil
}

func (m *TicketManager) Filter() core.Filter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filter
}

// FilteredTickets returns the tickets matching the active filter,
// newest first.
func (m *TicketManager) FilteredTickets() []core.Ticket {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		if m.filter.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// AllTickets returns every ticket regardless of the filter.
func (m *TicketManager) AllTickets() []core.Ticket {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneTickets(m.tickets)
}

// Stats counts the whole collection; the active filter does not apply.
func (m *TicketManager) Stats() core.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := core.Stats{Total: len(m.tickets)}
	for _, t := range m.tickets {
		switch t.Status {
		case core.StatusOpen:
			s.Open++
		case core.StatusInProgress:
			s.InProgress++
		case core.StatusClosed:
			s.Closed++
		}
		switch t.Priority {
		case core.PriorityHigh:
			s.High++
		case core.PriorityMedium:
			s.Medium++
		case core.PriorityLow:
			s.Low++
		}
	}
	return s
}

// Activities returns the activity log, newest first.
func (m *TicketManager) Activities() []core.Activity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]core.Activity(nil), m.activities...)
}

func (m *TicketManager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *TicketManager) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

func (m *TicketManager) newActivity(action core.ActionKind, t core.Ticket, now time.Time) core.Activity {
	return core.Activity{
		ID:       m.activityID(now),
		Action:   action,
		Ticket:   t.Title,
		TicketID: t.ID,
		User:     m.author(),
		Time:     now,
		Icon:     action.Icon(),
	}
}

// prependActivityLocked adds entry at the front and drops anything past
// MaxActivities.
func (m *TicketManager) prependActivityLocked(entry core.Activity) {
	keep := min(len(m.activities), MaxActivities-1)
	activities := make([]core.Activity, 0, keep+1)
	activities = append(activities, entry)
	m.activities = append(activities, m.activities[:keep]...)
}

func (m *TicketManager) activityID(now time.Time) string {
	if id, err := m.newID(); err == nil {
		return id
	}
	return strconv.FormatInt(now.UnixMilli(), 10)
}

func (m *TicketManager) indexLocked(id string) int {
	for i := range m.tickets {
		if m.tickets[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *TicketManager) snapshotLocked() ([]core.Ticket, []core.Activity) {
	return cloneTickets(m.tickets), append([]core.Activity(nil), m.activities...)
}

// persist writes both collections. Failures are logged; the in-memory
// mutation stands.
func (m *TicketManager) persist(ctx context.Context, tickets []core.Ticket, activities []core.Activity) {
	if err := m.store.Save(ctx, core.KeyTickets, tickets); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist tickets")
	}
	if err := m.store.Save(ctx, core.KeyActivities, activities); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist activities")
	}
}

// recoverFailure turns a panic in an operation body into that operation's
// failure, reported like any other.
func (m *TicketManager) recoverFailure(message string, class error, err *error) {
	if rec := recover(); rec != nil {
		*err = m.fail(message, fmt.Errorf("%w: %w: %v", class, task.ErrPanic, rec))
	}
}

func (m *TicketManager) fail(message string, err error) error {
	m.notify.Show(message, core.SeverityError, 0)
	m.logger.Warn().Err(err).Msg("ticket operation failed")
	return err
}

func (m *TicketManager) creator() string {
	if m.sessions != nil {
		if s, ok := m.sessions.Current(); ok {
			return s.ID
		}
	}
	return defaultCreator
}

func (m *TicketManager) author() string {
	if m.sessions != nil {
		if s, ok := m.sessions.Current(); ok {
			return s.Email
		}
	}
	return defaultActor
}

func cloneTickets(in []core.Ticket) []core.Ticket {
	out := make([]core.Ticket, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

func validateInput(in *core.TicketInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return core.ErrTitleRequired
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidStatus, in.Status)
	}
	if in.Priority == "" {
		in.Priority = core.PriorityMedium
	}
	if !in.Priority.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidPriority, in.Priority)
	}
	if in.Assignee == "" {
		in.Assignee = defaultAssignee
	}
	return nil
}

func validatePatch(p core.TicketPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return core.ErrTitleRequired
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidStatus, *p.Status)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidPriority, *p.Priority)
	}
	return nil
}

func applyPatch(t *core.Ticket, p core.TicketPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
}
