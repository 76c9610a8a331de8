package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// Store persists feedback sessions.
type Store interface {
	// List returns every session.
	List(ctx context.Context) ([]Session, error)

	// ListByCourse returns the sessions of one course.
	ListByCourse(ctx context.Context, courseID string) ([]Session, error)

	// Get returns a session by ID. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (Session, error)

	// Save creates or replaces a session.
	Save(ctx context.Context, s Session) error

	// Delete removes a session by ID. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}
