package core

import "fmt"

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Filter selects the derived ticket view. Status filters match on Status,
// priority filters on Priority, FilterAll matches everything.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterOpen       Filter = "open"
	FilterInProgress Filter = "in_progress"
	FilterClosed     Filter = "closed"
	FilterHigh       Filter = "high"
	FilterMedium     Filter = "medium"
	FilterLow        Filter = "low"
)

// Filters lists every accepted filter value in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterOpen, FilterInProgress, FilterClosed, FilterHigh, FilterMedium, FilterLow}
}

// ParseFilter validates a raw filter value.
func ParseFilter(value string) (Filter, error) {
	for _, f := range Filters() {
		if string(f) == value {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, value)
}

// Matches reports whether t belongs to the view selected by f.
func (f Filter) Matches(t Ticket) bool {
	switch f {
	case FilterOpen:
		return t.Status == StatusOpen
	case FilterInProgress:
		return t.Status == StatusInProgress
	case FilterClosed:
		return t.Status == StatusClosed
	case FilterHigh:
		return t.Priority == PriorityHigh
	case FilterMedium:
		return t.Priority == PriorityMedium
	case FilterLow:
		return t.Priority == PriorityLow
	default:
		return true
	}
}

type ActionKind string

const (
	ActionCreated   ActionKind = "created"
	ActionUpdated   ActionKind = "updated"
	ActionDeleted   ActionKind = "deleted"
	ActionResolved  ActionKind = "resolved"
	ActionCommented ActionKind = "commented"
)

// Icon returns the glyph shown next to an activity entry.
func (a ActionKind) Icon() string {
	switch a {
	case ActionCreated:
		return "➕"
	case ActionUpdated:
		return "✏️"
	case ActionDeleted:
		return "🗑️"
	case ActionResolved:
		return "✅"
	case ActionCommented:
		return "💬"
	default:
		return "📝"
	}
}

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)
