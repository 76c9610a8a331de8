package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/feedback/internal/core/notify"
	"github.com/colonyops/feedback/internal/data/db"
)

// NotifyStore implements notify.Store using SQLite.
type NotifyStore struct {
	db  *db.DB
	now func() time.Time
}

var _ notify.Store = (*NotifyStore)(nil)

// NewNotifyStore creates a new SQLite-backed notification store.
func NewNotifyStore(db *db.DB) *NotifyStore {
	return &NotifyStore{db: db, now: time.Now}
}

// GetState returns the saved state of a session, or notify.DefaultState if
// nothing was saved yet.
func (s *NotifyStore) GetState(ctx context.Context, sessionID string) (notify.State, error) {
	row, err := s.db.Queries().GetNotificationState(ctx, sessionID)
	if IsNotFoundError(err) {
		return notify.DefaultState(sessionID), nil
	}
	if err != nil {
		return notify.State{}, fmt.Errorf("get notification state: %w", err)
	}

	return notify.State{
		SessionID:        row.SessionID,
		SentOpen:         row.SentOpen,
		SentPublished:    row.SentPublished,
		OpeningEnabled:   row.OpeningEnabled,
		ClosingEnabled:   row.ClosingEnabled,
		PublishedEnabled: row.PublishedEnabled,
		UpdatedAt:        fromNanos(row.UpdatedAt),
	}, nil
}

// SaveState creates or replaces the state of a session.
func (s *NotifyStore) SaveState(ctx context.Context, st notify.State) error {
	err := retryBusy(ctx, func() error {
		return s.db.Queries().UpsertNotificationState(ctx, db.NotificationState{
			SessionID:        st.SessionID,
			SentOpen:         st.SentOpen,
			SentPublished:    st.SentPublished,
			OpeningEnabled:   st.OpeningEnabled,
			ClosingEnabled:   st.ClosingEnabled,
			PublishedEnabled: st.PublishedEnabled,
			UpdatedAt:        s.now().UnixNano(),
		})
	})
	if err != nil {
		return fmt.Errorf("save notification state: %w", err)
	}
	return nil
}

// DeleteState drops the state and reminders of a session.
func (s *NotifyStore) DeleteState(ctx context.Context, sessionID string) error {
	return s.db.WithTx(ctx, func(q *db.Queries) error {
		if err := q.DeleteNotificationState(ctx, sessionID); err != nil {
			return fmt.Errorf("delete notification state: %w", err)
		}
		if err := q.DeleteReminders(ctx, sessionID); err != nil {
			return fmt.Errorf("delete reminders: %w", err)
		}
		return nil
	})
}

// AppendReminder persists a reminder and returns its auto-generated ID.
func (s *NotifyStore) AppendReminder(ctx context.Context, r notify.Reminder) (int64, error) {
	var id int64
	err := retryBusy(ctx, func() (err error) {
		id, err = s.db.Queries().InsertReminder(ctx, db.Reminder{
			SessionID: r.SessionID,
			Kind:      string(r.Kind),
			Message:   r.Message,
			CreatedAt: r.CreatedAt.UnixNano(),
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert reminder: %w", err)
	}
	return id, nil
}

// ListReminders returns reminders newest first. An empty sessionID lists all.
func (s *NotifyStore) ListReminders(ctx context.Context, sessionID string) ([]notify.Reminder, error) {
	rows, err := s.db.Queries().ListReminders(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}

	var result []notify.Reminder
	for _, row := range rows {
		result = append(result, notify.Reminder{
			ID:        row.ID,
			SessionID: row.SessionID,
			Kind:      notify.Kind(row.Kind),
			Message:   row.Message,
			CreatedAt: fromNanos(row.CreatedAt),
		})
	}
	return result, nil
}
