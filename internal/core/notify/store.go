// Package notify holds the notification bookkeeping of feedback sessions:
// which reminder emails are enabled and which one-time emails were sent.
package notify

import (
	"context"
	"time"
)

// Kind is the type of reminder sent to participants.
type Kind string

const (
	KindOpening   Kind = "opening"
	KindClosing   Kind = "closing"
	KindPublished Kind = "published"
)

// State is the notification bookkeeping of one session, keyed by session ID.
type State struct {
	SessionID        string
	SentOpen         bool
	SentPublished    bool
	OpeningEnabled   bool
	ClosingEnabled   bool
	PublishedEnabled bool
	UpdatedAt        time.Time
}

// DefaultState returns the state of a new session: nothing sent, every
// reminder enabled.
func DefaultState(sessionID string) State {
	return State{
		SessionID:        sessionID,
		OpeningEnabled:   true,
		ClosingEnabled:   true,
		PublishedEnabled: true,
	}
}

// Enabled reports whether reminders of kind k may be sent.
func (s State) Enabled(k Kind) bool {
	switch k {
	case KindOpening:
		return s.OpeningEnabled
	case KindClosing:
		return s.ClosingEnabled
	case KindPublished:
		return s.PublishedEnabled
	default:
		return false
	}
}

// Reminder is one notification emitted for a session.
type Reminder struct {
	ID        int64
	SessionID string
	Kind      Kind
	Message   string
	CreatedAt time.Time
}

// Store persists notification state and the reminder outbox.
type Store interface {
	// GetState returns the state of a session, or DefaultState if none was saved.
	GetState(ctx context.Context, sessionID string) (State, error)
	SaveState(ctx context.Context, s State) error
	DeleteState(ctx context.Context, sessionID string) error

	// AppendReminder persists a reminder and returns its auto-generated ID.
	AppendReminder(ctx context.Context, r Reminder) (int64, error)
	// ListReminders returns reminders for a session, newest first. An empty
	// sessionID lists every reminder.
	ListReminders(ctx context.Context, sessionID string) ([]Reminder, error)
}
