package logging

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	courseIDKey  contextKey = "course_id"
)

// WithSession tags the context with a feedback session and its course.
func WithSession(ctx context.Context, sessionID, courseID string) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return context.WithValue(ctx, courseIDKey, courseID)
}

// WithCourseID tags the context with a course only.
func WithCourseID(ctx context.Context, courseID string) context.Context {
	return context.WithValue(ctx, courseIDKey, courseID)
}

// SessionID returns the session ID stored in ctx, or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// CourseID returns the course ID stored in ctx, or "".
func CourseID(ctx context.Context) string {
	id, _ := ctx.Value(courseIDKey).(string)
	return id
}
