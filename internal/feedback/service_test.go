package feedback

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/feedback/internal/core/notify"
	"github.com/colonyops/feedback/internal/core/responders"
	"github.com/colonyops/feedback/internal/core/session"
	"github.com/colonyops/feedback/internal/core/window"
	"github.com/colonyops/feedback/internal/data/db"
	"github.com/colonyops/feedback/internal/data/stores"
)

var (
	start = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end   = start.Add(72 * time.Hour)
)

type testEnv struct {
	svc        *SessionService
	notify     *stores.NotifyStore
	responders *stores.ResponderStore
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	notifyStore := stores.NewNotifyStore(database)
	responderStore := stores.NewResponderStore(database)
	svc := NewSessionService(stores.NewSessionStore(database), notifyStore, responderStore)
	svc.now = func() time.Time { return start.Add(-48 * time.Hour) }

	return testEnv{svc: svc, notify: notifyStore, responders: responderStore}
}

func validSession(name string) session.Session {
	return session.Session{
		Name:         name,
		CourseID:     "CS101",
		CreatorEmail: "prof@example.edu",
		Instructions: `<p onclick="x()">Be honest<script>alert(1)</script></p>`,
		Window: window.Window{
			Start:       start,
			End:         end,
			Visibility:  window.FollowOpening,
			Publish:     window.PublishLater,
			GracePeriod: 30,
		},
	}
}

func TestSessionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("sanitizes and defaults", func(t *testing.T) {
		env := newTestEnv(t)

		sess, err := env.svc.Create(ctx, validSession("week-1"))
		require.NoError(t, err)

		assert.Equal(t, "<p>Be honest</p>", sess.Instructions)
		assert.Equal(t, window.KindNormal, sess.Window.Kind)
		assert.True(t, start.Add(-48*time.Hour).Equal(sess.CreatedAt))

		stored, err := env.svc.Get(ctx, sess.ID())
		require.NoError(t, err)
		assert.Equal(t, sess.Instructions, stored.Instructions)

		st, err := env.notify.GetState(ctx, sess.ID())
		require.NoError(t, err)
		assert.True(t, st.OpeningEnabled)
		assert.False(t, st.UpdatedAt.IsZero(), "state row is saved")
	})

	t.Run("rejects invalid", func(t *testing.T) {
		env := newTestEnv(t)
		sess := validSession("week-1")
		sess.Window.End = start

		_, err := env.svc.Create(ctx, sess)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"The end time for this feedback session must be later than the start time."}, verr.Messages)

		_, err = env.svc.Get(ctx, sess.ID())
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("rejects duplicate", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.Create(ctx, validSession("week-1"))
		require.NoError(t, err)

		_, err = env.svc.Create(ctx, validSession("week-1"))
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})
}

func TestSessionService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps creator and creation time", func(t *testing.T) {
		env := newTestEnv(t)
		created, err := env.svc.Create(ctx, validSession("week-1"))
		require.NoError(t, err)

		edit := validSession("week-1")
		edit.CreatorEmail = "someone@example.edu"
		edit.CreatedAt = start
		edit.Window.GracePeriod = 5

		updated, err := env.svc.Update(ctx, edit)
		require.NoError(t, err)
		assert.Equal(t, "prof@example.edu", updated.CreatorEmail)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
		assert.Equal(t, 5, updated.Window.GracePeriod)
	})

	t.Run("missing", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.Update(ctx, validSession("ghost"))
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("moving start re-arms opening reminder", func(t *testing.T) {
		env := newTestEnv(t)
		sess, err := env.svc.Create(ctx, validSession("week-1"))
		require.NoError(t, err)

		st := notify.DefaultState(sess.ID())
		st.SentOpen = true
		require.NoError(t, env.notify.SaveState(ctx, st))

		edit := validSession("week-1")
		edit.Window.Start = start.Add(time.Hour)
		_, err = env.svc.Update(ctx, edit)
		require.NoError(t, err)

		got, err := env.notify.GetState(ctx, sess.ID())
		require.NoError(t, err)
		assert.False(t, got.SentOpen)
	})
}

func TestSessionService_Save(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, created, err := env.svc.Save(ctx, validSession("week-1"))
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = env.svc.Save(ctx, validSession("week-1"))
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSessionService_PublishUnpublish(t *testing.T) {
	ctx := context.Background()

	t.Run("manual session", func(t *testing.T) {
		env := newTestEnv(t)
		sess, err := env.svc.Create(ctx, validSession("week-1"))
		require.NoError(t, err)

		published, err := env.svc.Publish(ctx, sess.ID())
		require.NoError(t, err)
		assert.Equal(t, window.PublishKindNow, published.Window.Publish.Kind())
		assert.True(t, published.Window.IsPublished(start))

		unpublished, err := env.svc.Unpublish(ctx, sess.ID())
		require.NoError(t, err)
		assert.Equal(t, window.PublishKindLater, unpublished.Window.Publish.Kind())
		assert.False(t, unpublished.Window.IsPublished(end.Add(time.Hour)))

		stored, err := env.svc.Get(ctx, sess.ID())
		require.NoError(t, err)
		assert.Equal(t, window.PublishKindLater, stored.Window.Publish.Kind())
	})

	t.Run("scheduled session", func(t *testing.T) {
		env := newTestEnv(t)
		in := validSession("week-1")
		in.Window.Publish = window.PublishAt(end.Add(time.Hour))
		sess, err := env.svc.Create(ctx, in)
		require.NoError(t, err)

		_, err = env.svc.Publish(ctx, sess.ID())
		assert.ErrorIs(t, err, ErrNotManual)
		_, err = env.svc.Unpublish(ctx, sess.ID())
		assert.ErrorIs(t, err, ErrNotManual)
	})
}

func TestSessionService_Respond(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sess, err := env.svc.Create(ctx, validSession("week-1"))
	require.NoError(t, err)
	id := sess.ID()

	tests := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{"before start", start.Add(-time.Minute), true},
		{"at start", start, true},
		{"open", start.Add(time.Hour), false},
		{"at end", end, true},
		{"grace", end.Add(10 * time.Minute), false},
		{"after grace", end.Add(31 * time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := strings.ReplaceAll(tt.name, " ", "-") + "@example.edu"
			err := env.svc.Respond(ctx, id, responders.RoleStudent, email, tt.at)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotAcceptingResponses)
				return
			}
			require.NoError(t, err)

			has, err := env.responders.Has(ctx, id, responders.RoleStudent, email)
			require.NoError(t, err)
			assert.True(t, has)
		})
	}

	t.Run("private", func(t *testing.T) {
		in := validSession("secret")
		in.Window.Visibility = window.VisibleNever
		priv, err := env.svc.Create(ctx, in)
		require.NoError(t, err)

		err = env.svc.Respond(ctx, priv.ID(), responders.RoleStudent, "s@example.edu", start.Add(time.Hour))
		assert.ErrorIs(t, err, ErrNotAcceptingResponses)
	})

	t.Run("invalid email", func(t *testing.T) {
		err := env.svc.Respond(ctx, id, responders.RoleStudent, "not an email", start.Add(time.Hour))
		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		require.Len(t, fieldErrs, 1)
		assert.Equal(t, "email", fieldErrs[0].Field)

		counts, err := env.responders.Count(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 2, counts.Students)
	})
}

func TestSessionService_Status(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	in := validSession("week-1")
	in.Window.TimeZone = -5
	sess, err := env.svc.Create(ctx, in)
	require.NoError(t, err)

	require.NoError(t, env.responders.Add(ctx, sess.ID(), responders.RoleStudent, "a@example.edu"))
	require.NoError(t, env.responders.Add(ctx, sess.ID(), responders.RoleInstructor, "ta@example.edu"))

	// 12:00 UTC is 07:00 session-local, before the 09:00 start.
	st, err := env.svc.Status(ctx, sess.ID(), start.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, window.PhaseAwaiting, st.Window.Phase)
	assert.Equal(t, responders.Counts{Instructors: 1, Students: 1}, st.Responders)

	st, err = env.svc.Status(ctx, sess.ID(), start.Add(6*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, window.PhaseOpen, st.Window.Phase)
	assert.True(t, st.Window.Visible)
	assert.False(t, st.Window.Published)
}

func TestSessionService_SetReminder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sess, err := env.svc.Create(ctx, validSession("week-1"))
	require.NoError(t, err)

	require.NoError(t, env.svc.SetReminder(ctx, sess.ID(), notify.KindClosing, false))

	st, err := env.notify.GetState(ctx, sess.ID())
	require.NoError(t, err)
	assert.False(t, st.ClosingEnabled)
	assert.True(t, st.OpeningEnabled)

	assert.Error(t, env.svc.SetReminder(ctx, sess.ID(), notify.Kind("weekly"), true))
	assert.ErrorIs(t, env.svc.SetReminder(ctx, "ghost%CS101", notify.KindOpening, true), session.ErrNotFound)
}

func TestSessionService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sess, err := env.svc.Create(ctx, validSession("week-1"))
	require.NoError(t, err)
	require.NoError(t, env.responders.Add(ctx, sess.ID(), responders.RoleStudent, "a@example.edu"))

	require.NoError(t, env.svc.Delete(ctx, sess.ID()))

	_, err = env.svc.Get(ctx, sess.ID())
	assert.ErrorIs(t, err, session.ErrNotFound)

	counts, err := env.responders.Count(ctx, sess.ID())
	require.NoError(t, err)
	assert.Zero(t, counts.Students)

	assert.ErrorIs(t, env.svc.Delete(ctx, sess.ID()), session.ErrNotFound)
}

// stuckNotify fails every DeleteState call.
type stuckNotify struct {
	notify.Store
}

func (stuckNotify) DeleteState(context.Context, string) error {
	return errors.New("disk I/O error")
}

func TestSessionService_Delete_KeepsSessionWhenCleanupFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	sess, err := env.svc.Create(ctx, validSession("week-1"))
	require.NoError(t, err)

	st, err := env.notify.GetState(ctx, sess.ID())
	require.NoError(t, err)
	st.SentOpen = true
	require.NoError(t, env.notify.SaveState(ctx, st))

	broken := NewSessionService(env.svc.sessions, stuckNotify{Store: env.notify}, env.responders)
	require.Error(t, broken.Delete(ctx, sess.ID()))

	_, err = env.svc.Get(ctx, sess.ID())
	require.NoError(t, err, "session stays so the delete can be retried")

	require.NoError(t, env.svc.Delete(ctx, sess.ID()))
	_, err = env.svc.Create(ctx, validSession("week-1"))
	require.NoError(t, err)

	st, err = env.notify.GetState(ctx, sess.ID())
	require.NoError(t, err)
	assert.False(t, st.SentOpen, "recreated session starts with fresh reminders")
}

func TestSessionService_Check(t *testing.T) {
	env := newTestEnv(t)

	undated := validSession("week-1")
	assert.NoError(t, env.svc.Check(undated), "creation time is defaulted as in Create")

	bad := validSession("week-1")
	bad.Window.End = bad.Window.Start
	err := env.svc.Check(bad)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Messages)

	sessions, err := env.svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, sessions, "Check never saves")
}

func TestSessionService_List(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	older := validSession("week-1")
	older.CreatedAt = start.Add(-72 * time.Hour)
	newer := validSession("week-2")
	newer.CreatedAt = start.Add(-24 * time.Hour)
	other := validSession("week-1")
	other.CourseID = "MA201"

	for _, s := range []session.Session{older, newer, other} {
		_, err := env.svc.Create(ctx, s)
		require.NoError(t, err)
	}

	all, err := env.svc.List(ctx, "CS101")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "week-2", all[0].Name)
	assert.Equal(t, "week-1", all[1].Name)

	everything, err := env.svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, everything, 3)
}
