package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/feedback/internal/core/session"
	"github.com/colonyops/feedback/internal/core/window"
	"github.com/colonyops/feedback/internal/data/db"
)

// SessionStore implements session.Store using SQLite.
type SessionStore struct {
	db  *db.DB
	now func() time.Time
}

var _ session.Store = (*SessionStore)(nil)

// NewSessionStore creates a new SQLite-backed session store.
func NewSessionStore(db *db.DB) *SessionStore {
	return &SessionStore{db: db, now: time.Now}
}

// List returns all sessions.
func (s *SessionStore) List(ctx context.Context) ([]session.Session, error) {
	rows, err := s.db.Queries().ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return rowsToSessions(rows)
}

// ListByCourse returns the sessions of one course.
func (s *SessionStore) ListByCourse(ctx context.Context, courseID string) ([]session.Session, error) {
	rows, err := s.db.Queries().ListSessionsByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for course %q: %w", courseID, err)
	}
	return rowsToSessions(rows)
}

// Get returns a session by ID. Returns ErrNotFound if not found.
func (s *SessionStore) Get(ctx context.Context, id string) (session.Session, error) {
	row, err := s.db.Queries().GetSession(ctx, id)
	if IsNotFoundError(err) {
		return session.Session{}, session.ErrNotFound
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	return rowToSession(row)
}

// Save creates or updates a session.
func (s *SessionStore) Save(ctx context.Context, sess session.Session) error {
	w := sess.Window

	kind := w.Kind
	if kind == "" {
		kind = window.KindNormal
	}

	visibleAt, _ := w.Visibility.Time()
	publishAt, _ := w.Publish.Time()

	row := db.Session{
		ID:             sess.ID(),
		Name:           sess.Name,
		CourseID:       sess.CourseID,
		CreatorEmail:   sess.CreatorEmail,
		Instructions:   sess.Instructions,
		CreatedAt:      sess.CreatedAt.UnixNano(),
		StartTime:      nullTime(w.Start),
		EndTime:        nullTime(w.End),
		VisibilityKind: string(w.Visibility.Kind()),
		VisibleAt:      nullTime(visibleAt),
		PublishKind:    string(w.Publish.Kind()),
		PublishAt:      nullTime(publishAt),
		TimeZone:       w.TimeZone,
		GracePeriod:    int64(w.GracePeriod),
		Kind:           string(kind),
		UpdatedAt:      s.now().UnixNano(),
	}

	err := retryBusy(ctx, func() error {
		return s.db.Queries().UpsertSession(ctx, row)
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Delete removes a session by ID. Returns ErrNotFound if not found.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	n, err := s.db.Queries().DeleteSession(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return session.ErrNotFound
	}

	return nil
}

func rowsToSessions(rows []db.Session) ([]session.Session, error) {
	sessions := make([]session.Session, 0, len(rows))
	for _, row := range rows {
		sess, err := rowToSession(row)
		if err != nil {
			return nil, fmt.Errorf("failed to convert session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// rowToSession converts a sessions row to a session.Session.
func rowToSession(row db.Session) (session.Session, error) {
	visibility, err := visibilityFromRow(row.VisibilityKind, row.VisibleAt)
	if err != nil {
		return session.Session{}, fmt.Errorf("session %q: %w", row.ID, err)
	}

	publish, err := publishFromRow(row.PublishKind, row.PublishAt)
	if err != nil {
		return session.Session{}, fmt.Errorf("session %q: %w", row.ID, err)
	}

	return session.Session{
		Name:         row.Name,
		CourseID:     row.CourseID,
		CreatorEmail: row.CreatorEmail,
		Instructions: row.Instructions,
		CreatedAt:    fromNanos(row.CreatedAt),
		Window: window.Window{
			Start:       fromNull(row.StartTime),
			End:         fromNull(row.EndTime),
			Visibility:  visibility,
			Publish:     publish,
			TimeZone:    row.TimeZone,
			GracePeriod: int(row.GracePeriod),
			Kind:        window.Kind(row.Kind),
		},
	}, nil
}

func visibilityFromRow(kind string, at sql.NullInt64) (window.VisibilityPolicy, error) {
	switch window.VisibilityKind(kind) {
	case "":
		return window.VisibilityPolicy{}, nil
	case window.VisibilityFollowOpening:
		return window.FollowOpening, nil
	case window.VisibilityNever:
		return window.VisibleNever, nil
	case window.VisibilityAt:
		if !at.Valid {
			return window.VisibilityPolicy{}, fmt.Errorf("visibility %q has no instant", kind)
		}
		return window.VisibleAt(fromNanos(at.Int64)), nil
	default:
		return window.VisibilityPolicy{}, fmt.Errorf("unknown visibility kind %q", kind)
	}
}

func publishFromRow(kind string, at sql.NullInt64) (window.PublishPolicy, error) {
	switch window.PublishKind(kind) {
	case "":
		return window.PublishPolicy{}, nil
	case window.PublishFollowVisibility:
		return window.FollowVisibility, nil
	case window.PublishKindLater:
		return window.PublishLater, nil
	case window.PublishKindNever:
		return window.PublishNever, nil
	case window.PublishKindNow:
		return window.PublishNow, nil
	case window.PublishAtTime:
		if !at.Valid {
			return window.PublishPolicy{}, fmt.Errorf("publish %q has no instant", kind)
		}
		return window.PublishAt(fromNanos(at.Int64)), nil
	default:
		return window.PublishPolicy{}, fmt.Errorf("unknown publish kind %q", kind)
	}
}

func nullTime(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromNull(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return fromNanos(n.Int64)
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
