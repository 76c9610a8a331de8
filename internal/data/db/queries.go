package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the typed statements the stores run.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q that runs its statements inside tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// sessions

const sessionColumns = `id, name, course_id, creator_email, instructions, created_at,
	start_time, end_time, visibility_kind, visible_at, publish_kind, publish_at,
	time_zone, grace_period, kind, updated_at`

func scanSession(row interface{ Scan(...any) error }) (Session, error) {
	var s Session
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.CourseID,
		&s.CreatorEmail,
		&s.Instructions,
		&s.CreatedAt,
		&s.StartTime,
		&s.EndTime,
		&s.VisibilityKind,
		&s.VisibleAt,
		&s.PublishKind,
		&s.PublishAt,
		&s.TimeZone,
		&s.GracePeriod,
		&s.Kind,
		&s.UpdatedAt,
	)
	return s, err
}

func collectSessions(rows *sql.Rows, err error) ([]Session, error) {
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (q *Queries) ListSessions(ctx context.Context) ([]Session, error) {
	return collectSessions(q.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY course_id, name`))
}

func (q *Queries) ListSessionsByCourse(ctx context.Context, courseID string) ([]Session, error) {
	return collectSessions(q.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE course_id = ? ORDER BY name`, courseID))
}

func (q *Queries) GetSession(ctx context.Context, id string) (Session, error) {
	return scanSession(q.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
}

// UpsertSession inserts a session or updates every column but its identity.
func (q *Queries) UpsertSession(ctx context.Context, s Session) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			creator_email   = excluded.creator_email,
			instructions    = excluded.instructions,
			created_at      = excluded.created_at,
			start_time      = excluded.start_time,
			end_time        = excluded.end_time,
			visibility_kind = excluded.visibility_kind,
			visible_at      = excluded.visible_at,
			publish_kind    = excluded.publish_kind,
			publish_at      = excluded.publish_at,
			time_zone       = excluded.time_zone,
			grace_period    = excluded.grace_period,
			kind            = excluded.kind,
			updated_at      = excluded.updated_at`,
		s.ID,
		s.Name,
		s.CourseID,
		s.CreatorEmail,
		s.Instructions,
		s.CreatedAt,
		s.StartTime,
		s.EndTime,
		s.VisibilityKind,
		s.VisibleAt,
		s.PublishKind,
		s.PublishAt,
		s.TimeZone,
		s.GracePeriod,
		s.Kind,
		s.UpdatedAt,
	)
	return err
}

// DeleteSession returns the number of rows removed.
func (q *Queries) DeleteSession(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// notification state and reminders

func (q *Queries) GetNotificationState(ctx context.Context, sessionID string) (NotificationState, error) {
	st := NotificationState{SessionID: sessionID}
	err := q.db.QueryRowContext(ctx, `
		SELECT sent_open, sent_published, opening_enabled, closing_enabled, published_enabled, updated_at
		FROM notification_state WHERE session_id = ?`, sessionID,
	).Scan(&st.SentOpen, &st.SentPublished, &st.OpeningEnabled, &st.ClosingEnabled, &st.PublishedEnabled, &st.UpdatedAt)
	return st, err
}

func (q *Queries) UpsertNotificationState(ctx context.Context, st NotificationState) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO notification_state
			(session_id, sent_open, sent_published, opening_enabled, closing_enabled, published_enabled, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			sent_open         = excluded.sent_open,
			sent_published    = excluded.sent_published,
			opening_enabled   = excluded.opening_enabled,
			closing_enabled   = excluded.closing_enabled,
			published_enabled = excluded.published_enabled,
			updated_at        = excluded.updated_at`,
		st.SessionID, st.SentOpen, st.SentPublished, st.OpeningEnabled, st.ClosingEnabled, st.PublishedEnabled,
		st.UpdatedAt,
	)
	return err
}

func (q *Queries) DeleteNotificationState(ctx context.Context, sessionID string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM notification_state WHERE session_id = ?`, sessionID)
	return err
}

// InsertReminder returns the ID assigned to the new row.
func (q *Queries) InsertReminder(ctx context.Context, r Reminder) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO reminders (session_id, kind, message, created_at) VALUES (?, ?, ?, ?)`,
		r.SessionID, r.Kind, r.Message, r.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListReminders returns reminders newest first. An empty sessionID lists all.
func (q *Queries) ListReminders(ctx context.Context, sessionID string) ([]Reminder, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, session_id, kind, message, created_at FROM reminders
		WHERE ? = '' OR session_id = ?
		ORDER BY created_at DESC, id DESC`, sessionID, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Kind, &r.Message, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (q *Queries) DeleteReminders(ctx context.Context, sessionID string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM reminders WHERE session_id = ?`, sessionID)
	return err
}

// responders

type ResponderParams struct {
	SessionID string
	Role      string
	Email     string
}

// AddResponder ignores a responder that is already recorded.
func (q *Queries) AddResponder(ctx context.Context, arg ResponderParams, createdAt int64) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO responders (session_id, role, email, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, role, email) DO NOTHING`,
		arg.SessionID, arg.Role, arg.Email, createdAt,
	)
	return err
}

func (q *Queries) RemoveResponder(ctx context.Context, arg ResponderParams) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM responders WHERE session_id = ? AND role = ? AND email = ?`,
		arg.SessionID, arg.Role, arg.Email,
	)
	return err
}

func (q *Queries) HasResponder(ctx context.Context, arg ResponderParams) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM responders WHERE session_id = ? AND role = ? AND email = ?`,
		arg.SessionID, arg.Role, arg.Email,
	).Scan(&n)
	return n, err
}

func (q *Queries) ListResponders(ctx context.Context, sessionID, role string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT email FROM responders WHERE session_id = ? AND role = ? ORDER BY email`,
		sessionID, role,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	emails := []string{}
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// CountRespondersByRole returns how many responders of each role a session has.
func (q *Queries) CountRespondersByRole(ctx context.Context, sessionID, first, second string) (int64, int64, error) {
	var a, b int64
	err := q.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0)
		FROM responders WHERE session_id = ?`,
		first, second, sessionID,
	).Scan(&a, &b)
	return a, b, err
}

func (q *Queries) ClearResponders(ctx context.Context, sessionID string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM responders WHERE session_id = ?`, sessionID)
	return err
}
