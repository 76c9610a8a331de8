// Package responders tracks which users have submitted responses to a
// feedback session.
package responders

import (
	"context"
	"fmt"
)

// Role separates instructor responders from student responders.
type Role string

const (
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

// ParseRole converts user input to a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleInstructor, RoleStudent:
		return r, nil
	default:
		return "", fmt.Errorf("invalid role %q: want %s or %s", s, RoleInstructor, RoleStudent)
	}
}

// Counts is the number of responders per role.
type Counts struct {
	Instructors int `json:"instructors"`
	Students    int `json:"students"`
}

// Store is the responder set of every session, keyed by session ID. Only the
// response submission workflow writes to it.
type Store interface {
	// Add records email as a responder. Adding twice is a no-op.
	Add(ctx context.Context, sessionID string, role Role, email string) error
	// Remove forgets a responder. Removing an unknown responder is a no-op.
	Remove(ctx context.Context, sessionID string, role Role, email string) error
	Has(ctx context.Context, sessionID string, role Role, email string) (bool, error)
	// List returns the responders of one role sorted by email.
	List(ctx context.Context, sessionID string, role Role) ([]string, error)
	Count(ctx context.Context, sessionID string) (Counts, error)
	// Clear drops every responder of a session.
	Clear(ctx context.Context, sessionID string) error
}
