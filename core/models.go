package core

import "time"

// User is an entry in the registered-users ledger.
//
// Email is the identity key. Password is kept as entered; the ledger is a
// local, single-user store and is not meant to protect credentials.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the reduced projection of a User that marks "logged in".
// It is mirrored to storage so a login survives a restart.
type Session struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Ticket is a single support ticket.
type Ticket struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Assignee    string    `json:"assignee"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	CreatedBy   string    `json:"createdBy"`
	Comments    []Comment `json:"comments,omitempty"`
}

// Clone returns a deep copy so callers never share the comment slice.
func (t Ticket) Clone() Ticket {
	if t.Comments != nil {
		t.Comments = append([]Comment(nil), t.Comments...)
	}
	return t
}

type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// TicketInput carries the fields accepted by CreateTicket. Status is
// required; Priority and Assignee fall back to defaults when empty.
type TicketInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Assignee    string   `json:"assignee"`
}

// TicketPatch holds the fields to merge onto an existing ticket.
// Nil fields are left untouched.
type TicketPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Assignee    *string   `json:"assignee,omitempty"`
}

// Activity is one entry of the bounded, newest-first audit trail.
//
// The JSON names follow the persisted "activities" format.
type Activity struct {
	ID       string     `json:"id"`
	Action   ActionKind `json:"action"`
	Ticket   string     `json:"ticket"`
	TicketID string     `json:"ticketId"`
	User     string     `json:"user"`
	Time     time.Time  `json:"time"`
	Icon     string     `json:"icon"`
}

// Stats are counts over the full, unfiltered ticket collection.
type Stats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
	High       int `json:"high"`
	Medium     int `json:"medium"`
	Low        int `json:"low"`
}

// Notification is a transient, user-facing message.
type Notification struct {
	ID        string        `json:"id"`
	Message   string        `json:"message"`
	Severity  Severity      `json:"type"`
	Duration  time.Duration `json:"-"`
	CreatedAt time.Time     `json:"createdAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
}
