package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/feedback/internal/core/logging"
	"github.com/colonyops/feedback/internal/core/notify"
	"github.com/colonyops/feedback/internal/core/session"
)

// Sender delivers one reminder about a session.
type Sender interface {
	Send(ctx context.Context, sess session.Session, kind notify.Kind, at time.Time) error
}

// OutboxSender records reminders in the notification store for a mailer to
// pick up, and logs each one.
type OutboxSender struct {
	store notify.Store
	log   zerolog.Logger
}

// NewOutboxSender creates a sender that appends to store.
func NewOutboxSender(store notify.Store) *OutboxSender {
	return &OutboxSender{
		store: store,
		log:   logging.Component("outbox"),
	}
}

func (o *OutboxSender) Send(ctx context.Context, sess session.Session, kind notify.Kind, at time.Time) error {
	r := notify.Reminder{
		SessionID: sess.ID(),
		Kind:      kind,
		Message:   Message(sess, kind),
		CreatedAt: at,
	}

	id, err := o.store.AppendReminder(ctx, r)
	if err != nil {
		return fmt.Errorf("queue %s reminder: %w", kind, err)
	}

	o.log.Info().Ctx(ctx).
		Int64("reminder_id", id).
		Str("kind", string(kind)).
		Msg(r.Message)
	return nil
}

// Message is the subject line of a reminder.
func Message(sess session.Session, kind notify.Kind) string {
	name := sess.Identification()
	switch kind {
	case notify.KindOpening:
		return fmt.Sprintf("Feedback session %s is now open", name)
	case notify.KindClosing:
		return fmt.Sprintf("Feedback session %s is closing soon", name)
	case notify.KindPublished:
		return fmt.Sprintf("Responses for feedback session %s have been published", name)
	default:
		return fmt.Sprintf("Feedback session %s: %s", name, kind)
	}
}
