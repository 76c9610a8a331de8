package db

import "database/sql"

// Session is a row of the sessions table. Instants are unix nanoseconds.
type Session struct {
	ID             string
	Name           string
	CourseID       string
	CreatorEmail   string
	Instructions   string
	CreatedAt      int64
	StartTime      sql.NullInt64
	EndTime        sql.NullInt64
	VisibilityKind string
	VisibleAt      sql.NullInt64
	PublishKind    string
	PublishAt      sql.NullInt64
	TimeZone       float64
	GracePeriod    int64
	Kind           string
	UpdatedAt      int64
}

type NotificationState struct {
	SessionID        string
	SentOpen         bool
	SentPublished    bool
	OpeningEnabled   bool
	ClosingEnabled   bool
	PublishedEnabled bool
	UpdatedAt        int64
}

type Reminder struct {
	ID        int64
	SessionID string
	Kind      string
	Message   string
	CreatedAt int64
}
