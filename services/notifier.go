package services

import (
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lborres/ticketflow/core"
	"github.com/lborres/ticketflow/pkg/clock"
)

// DefaultNotificationDuration applies when Show gets a non-positive duration.
const DefaultNotificationDuration = 4 * time.Second

// Notifier keeps the list of visible notifications and removes each one
// when its duration elapses.
type Notifier struct {
	clock  clock.Clock
	newID  core.IDFunc
	logger zerolog.Logger

	mu     sync.Mutex
	items  []core.Notification
	timers map[string]*clock.Timer
}

var _ core.Notifier = (*Notifier)(nil)

func NewNotifier(c clock.Clock, newID core.IDFunc, logger zerolog.Logger) *Notifier {
	if c == nil {
		c = clock.Real()
	}
	return &Notifier{
		clock:  c,
		newID:  newID,
		logger: logger.With().Str("component", "notifier").Logger(),
		timers: make(map[string]*clock.Timer),
	}
}

// Show appends a notification and schedules its removal. It returns the
// notification id.
func (n *Notifier) Show(message string, severity core.Severity, duration time.Duration) string {
	if severity == "" {
		severity = core.SeveritySuccess
	}
	if duration <= 0 {
		duration = DefaultNotificationDuration
	}

	now := n.clock.Now().UTC()
	id := n.nextID(now)

	n.mu.Lock()
	n.items = append(n.items, core.Notification{
		ID:        id,
		Message:   message,
		Severity:  severity,
		Duration:  duration,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	})
	n.mu.Unlock()

	timer := n.clock.AfterFunc(duration, func() { n.expire(id) })

	n.mu.Lock()
	// The notification may already be gone if Remove raced the timer setup.
	if n.indexLocked(id) >= 0 {
		n.timers[id] = timer
	} else {
		timer.Stop()
	}
	n.mu.Unlock()

	n.logger.Debug().Str("id", id).Str("severity", string(severity)).Msg(message)
	return id
}

func (n *Notifier) nextID(now time.Time) string {
	if n.newID != nil {
		if id, err := n.newID(); err == nil {
			return id
		}
	}
	return strconv.FormatInt(now.UnixNano(), 10)
}

// Remove drops a notification immediately. Unknown ids are ignored.
func (n *Notifier) Remove(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if timer, ok := n.timers[id]; ok {
		timer.Stop()
		delete(n.timers, id)
	}
	n.removeLocked(id)
}

func (n *Notifier) expire(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.timers, id)
	n.removeLocked(id)
}

func (n *Notifier) removeLocked(id string) {
	if i := n.indexLocked(id); i >= 0 {
		n.items = append(n.items[:i:i], n.items[i+1:]...)
	}
}

func (n *Notifier) indexLocked(id string) int {
	for i := range n.items {
		if n.items[i].ID == id {
			return i
		}
	}
	return -1
}

// List returns the visible notifications in the order they were shown.
func (n *Notifier) List() []core.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]core.Notification(nil), n.items...)
}
