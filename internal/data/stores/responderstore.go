package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/feedback/internal/core/responders"
	"github.com/colonyops/feedback/internal/data/db"
)

// ResponderStore implements responders.Store using SQLite.
type ResponderStore struct {
	db  *db.DB
	now func() time.Time
}

var _ responders.Store = (*ResponderStore)(nil)

// NewResponderStore creates a new SQLite-backed responder store.
func NewResponderStore(db *db.DB) *ResponderStore {
	return &ResponderStore{db: db, now: time.Now}
}

func (s *ResponderStore) Add(ctx context.Context, sessionID string, role responders.Role, email string) error {
	err := retryBusy(ctx, func() error {
		return s.db.Queries().AddResponder(ctx, responderParams(sessionID, role, email), s.now().UnixNano())
	})
	if err != nil {
		return fmt.Errorf("add responder: %w", err)
	}
	return nil
}

func (s *ResponderStore) Remove(ctx context.Context, sessionID string, role responders.Role, email string) error {
	if err := s.db.Queries().RemoveResponder(ctx, responderParams(sessionID, role, email)); err != nil {
		return fmt.Errorf("remove responder: %w", err)
	}
	return nil
}

func (s *ResponderStore) Has(ctx context.Context, sessionID string, role responders.Role, email string) (bool, error) {
	n, err := s.db.Queries().HasResponder(ctx, responderParams(sessionID, role, email))
	if err != nil {
		return false, fmt.Errorf("check responder: %w", err)
	}
	return n > 0, nil
}

func (s *ResponderStore) List(ctx context.Context, sessionID string, role responders.Role) ([]string, error) {
	emails, err := s.db.Queries().ListResponders(ctx, sessionID, string(role))
	if err != nil {
		return nil, fmt.Errorf("list responders: %w", err)
	}
	return emails, nil
}

func (s *ResponderStore) Count(ctx context.Context, sessionID string) (responders.Counts, error) {
	instructors, students, err := s.db.Queries().CountRespondersByRole(ctx, sessionID,
		string(responders.RoleInstructor), string(responders.RoleStudent))
	if err != nil {
		return responders.Counts{}, fmt.Errorf("count responders: %w", err)
	}
	return responders.Counts{Instructors: int(instructors), Students: int(students)}, nil
}

func (s *ResponderStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.db.Queries().ClearResponders(ctx, sessionID); err != nil {
		return fmt.Errorf("clear responders: %w", err)
	}
	return nil
}

func responderParams(sessionID string, role responders.Role, email string) db.ResponderParams {
	return db.ResponderParams{SessionID: sessionID, Role: string(role), Email: email}
}
