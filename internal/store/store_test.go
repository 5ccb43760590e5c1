package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot/internal/model"
	"taskpilot/internal/store"
)

// backends runs the same contract tests against both store
// implementations; callers must not be able to tell them apart beyond id
// representation, which the contract treats as opaque.
var backends = []struct {
	name string
	open func(t *testing.T) store.Store
}{
	{
		name: "memory",
		open: func(t *testing.T) store.Store {
			return store.NewMemoryStore()
		},
	},
	{
		name: "sqlite",
		open: func(t *testing.T) store.Store {
			s, err := store.NewSQLiteStore(":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	},
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

func TestCreateTaskDefaults(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			ctx := context.Background()

			created, err := s.CreateTask(ctx, model.Task{
				Title:         "Write spec",
				EstimatedTime: 60,
				OwnerID:       strPtr("anon-1"),
			})
			require.NoError(t, err)

			assert.NotEmpty(t, created.ID)
			assert.Equal(t, model.PriorityDefault, created.Priority)
			assert.Equal(t, 60, created.EstimatedTime)
			assert.False(t, created.Completed)
			assert.Nil(t, created.CompletedAt)
			assert.False(t, created.CreatedAt.IsZero())
		})
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			ctx := context.Background()

			created, err := s.CreateTask(ctx, model.Task{
				Title:         "Round trip",
				Priority:      8,
				EstimatedTime: 25,
				OwnerID:       strPtr("anon-rt"),
				IsLater:       true,
			})
			require.NoError(t, err)

			got, err := s.GetTask(ctx, created.ID)
			require.NoError(t, err)

			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, "Round trip", got.Title)
			assert.Equal(t, 8, got.Priority)
			assert.Equal(t, 25, got.EstimatedTime)
			assert.True(t, got.IsLater)
			require.NotNil(t, got.OwnerID)
			assert.Equal(t, "anon-rt", *got.OwnerID)
		})
	}
}

func TestListOwnershipScoping(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			ctx := context.Background()

			_, err := s.CreateTask(ctx, model.Task{
				Title: "mine", EstimatedTime: 10, OwnerID: strPtr("owner-a"),
			})
			require.NoError(t, err)
			_, err = s.CreateTask(ctx, model.Task{
				Title: "theirs", EstimatedTime: 10, OwnerID: strPtr("owner-b"),
			})
			require.NoError(t, err)
			_, err = s.CreateTask(ctx, model.Task{
				Title: "legacy", EstimatedTime: 10,
			})
			require.NoError(t, err)

			a, err := s.ListTasks(ctx, strPtr("owner-a"))
			require.NoError(t, err)
			require.Len(t, a, 1)
			assert.Equal(t, "mine", a[0].Title)

			b, err := s.ListTasks(ctx, strPtr("owner-b"))
			require.NoError(t, err)
			require.Len(t, b, 1)
			assert.Equal(t, "theirs", b[0].Title)

			// A nil owner returns only unowned legacy rows, never another
			// identity's tasks.
			legacy, err := s.ListTasks(ctx, nil)
			require.NoError(t, err)
			require.Len(t, legacy, 1)
			assert.Equal(t, "legacy", legacy[0].Title)
		})
	}
}

func TestCompletionUndoRoundTrip(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			ctx := context.Background()

			created, err := s.CreateTask(ctx, model.Task{
				Title: "finish me", EstimatedTime: 45, OwnerID: strPtr("anon-c"),
			})
			require.NoError(t, err)

			completed, err := s.UpdateTask(ctx, created.ID, model.TaskPatch{
				Completed:        boolPtr(true),
				ActualTime:       intPtr(45),
				DistractionLevel: intPtr(2),
			})
			require.NoError(t, err)
			assert.True(t, completed.Completed)
			require.NotNil(t, completed.CompletedAt)
			assert.False(t, completed.CompletedAt.Before(completed.CreatedAt))
			require.NotNil(t, completed.ActualTime)
			assert.Equal(t, 45, *completed.ActualTime)

			undone, err := s.UpdateTask(ctx, created.ID, model.TaskPatch{
				Completed: boolPtr(false),
			})
			require.NoError(t, err)
			assert.False(t, undone.Completed)
			assert.Nil(t, undone.CompletedAt)
			assert.Nil(t, undone.ActualTime)
			assert.Nil(t, undone.DistractionLevel)
		})
	}
}

func TestUpdatePartialMerge(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			ctx := context.Background()

			created, err := s.CreateTask(ctx, model.Task{
				Title: "original", Priority: 3, EstimatedTime: 30, OwnerID: strPtr("anon-p"),
			})
			require.NoError(t, err)

			updated, err := s.UpdateTask(ctx, created.ID, model.TaskPatch{
				Priority: intPtr(9),
			})
			require.NoError(t, err)

			// Only the patched field changes.
			assert.Equal(t, 9, updated.Priority)
			assert.Equal(t, "original", updated.Title)
			assert.Equal(t, 30, updated.EstimatedTime)
		})
	}
}

func TestUpdateUnknownID(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)

			_, err := s.UpdateTask(context.Background(), "no-such-id", model.TaskPatch{
				Priority: intPtr(1),
			})
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestDeleteIdempotent(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			ctx := context.Background()

			created, err := s.CreateTask(ctx, model.Task{
				Title: "doomed", EstimatedTime: 5, OwnerID: strPtr("anon-d"),
			})
			require.NoError(t, err)

			deleted, err := s.DeleteTask(ctx, created.ID)
			require.NoError(t, err)
			assert.True(t, deleted)

			deleted, err = s.DeleteTask(ctx, created.ID)
			require.NoError(t, err)
			assert.False(t, deleted)
		})
	}
}

func TestTransferOwnership(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			ctx := context.Background()

			for _, title := range []string{"one", "two", "three"} {
				_, err := s.CreateTask(ctx, model.Task{
					Title: title, Priority: 7, EstimatedTime: 15, OwnerID: strPtr("anon-A"),
				})
				require.NoError(t, err)
			}

			count, err := s.TransferOwnership(ctx, "anon-A", "user-B")
			require.NoError(t, err)
			assert.Equal(t, 3, count)

			old, err := s.ListTasks(ctx, strPtr("anon-A"))
			require.NoError(t, err)
			assert.Empty(t, old)

			moved, err := s.ListTasks(ctx, strPtr("user-B"))
			require.NoError(t, err)
			require.Len(t, moved, 3)
			for _, task := range moved {
				// Everything but the owner survives the transfer.
				assert.Equal(t, 7, task.Priority)
				assert.Equal(t, 15, task.EstimatedTime)
				require.NotNil(t, task.OwnerID)
				assert.Equal(t, "user-B", *task.OwnerID)
			}
		})
	}
}

func TestTransferOwnershipTwice(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			ctx := context.Background()

			for i := 0; i < 3; i++ {
				_, err := s.CreateTask(ctx, model.Task{
					Title: "t", EstimatedTime: 10, OwnerID: strPtr("anon-A"),
				})
				require.NoError(t, err)
			}

			first, err := s.TransferOwnership(ctx, "anon-A", "user-B")
			require.NoError(t, err)
			assert.Equal(t, 3, first)

			second, err := s.TransferOwnership(ctx, "anon-A", "user-B")
			require.NoError(t, err)
			assert.Equal(t, 0, second)

			moved, err := s.ListTasks(ctx, strPtr("user-B"))
			require.NoError(t, err)
			assert.Len(t, moved, 3)
		})
	}
}

func TestTransferOwnershipNoMatches(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)

			count, err := s.TransferOwnership(context.Background(), "nobody", "user-B")
			require.NoError(t, err)
			assert.Equal(t, 0, count)
		})
	}
}

func TestTransferIncludesEvents(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			ctx := context.Background()

			_, err := s.CreateTask(ctx, model.Task{
				Title: "task", EstimatedTime: 10, OwnerID: strPtr("anon-A"),
			})
			require.NoError(t, err)
			_, err = s.CreateEvent(ctx, model.TimelineEvent{
				Title: "event", DueDate: time.Now().Add(time.Hour), OwnerID: strPtr("anon-A"),
			})
			require.NoError(t, err)

			count, err := s.TransferOwnership(ctx, "anon-A", "user-B")
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			events, err := s.ListEvents(ctx, strPtr("user-B"))
			require.NoError(t, err)
			assert.Len(t, events, 1)
		})
	}
}

func TestEventCRUD(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			ctx := context.Background()
			due := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

			created, err := s.CreateEvent(ctx, model.TimelineEvent{
				Title:       "deadline",
				Description: "ship it",
				DueDate:     due,
				OwnerID:     strPtr("anon-e"),
			})
			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			assert.Equal(t, model.PriorityDefault, created.Priority)

			got, err := s.GetEvent(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "deadline", got.Title)
			assert.Equal(t, due.Unix(), got.DueDate.Unix())

			updated, err := s.UpdateEvent(ctx, created.ID, model.EventPatch{
				Completed: boolPtr(true),
			})
			require.NoError(t, err)
			assert.True(t, updated.Completed)
			assert.NotNil(t, updated.CompletedAt)

			deleted, err := s.DeleteEvent(ctx, created.ID)
			require.NoError(t, err)
			assert.True(t, deleted)

			deleted, err = s.DeleteEvent(ctx, created.ID)
			require.NoError(t, err)
			assert.False(t, deleted)
		})
	}
}

func TestUserUniqueness(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			ctx := context.Background()

			created, err := s.CreateUser(ctx, model.User{
				Username: "Alice", PasswordHash: "x",
			})
			require.NoError(t, err)
			assert.Equal(t, "alice", created.Username)

			// Uniqueness is case-normalized.
			_, err = s.CreateUser(ctx, model.User{
				Username: "ALICE", PasswordHash: "y",
			})
			assert.ErrorIs(t, err, store.ErrUsernameTaken)

			got, err := s.GetUserByUsername(ctx, "aLiCe")
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			ctx := context.Background()
			now := time.Now().UTC()

			user, err := s.CreateUser(ctx, model.User{Username: "bob", PasswordHash: "x"})
			require.NoError(t, err)

			sess := model.Session{
				Token:     "tok-live",
				UserID:    user.ID,
				CreatedAt: now,
				ExpiresAt: now.Add(time.Hour),
			}
			require.NoError(t, s.CreateSession(ctx, sess))

			got, err := s.GetSession(ctx, "tok-live")
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.UserID)

			require.NoError(t, s.RenewSession(ctx, "tok-live", now.Add(2*time.Hour)))

			require.NoError(t, s.DeleteSession(ctx, "tok-live"))
			_, err = s.GetSession(ctx, "tok-live")
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestPruneSessions(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			s := backend.open(t)
			ctx := context.Background()
			now := time.Now().UTC()

			user, err := s.CreateUser(ctx, model.User{Username: "carol", PasswordHash: "x"})
			require.NoError(t, err)

			require.NoError(t, s.CreateSession(ctx, model.Session{
				Token: "tok-old", UserID: user.ID,
				CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-24 * time.Hour),
			}))
			require.NoError(t, s.CreateSession(ctx, model.Session{
				Token: "tok-new", UserID: user.ID,
				CreatedAt: now, ExpiresAt: now.Add(time.Hour),
			}))

			pruned, err := s.PruneSessions(ctx, now)
			require.NoError(t, err)
			assert.Equal(t, 1, pruned)

			_, err = s.GetSession(ctx, "tok-old")
			assert.ErrorIs(t, err, store.ErrNotFound)
			_, err = s.GetSession(ctx, "tok-new")
			assert.NoError(t, err)
		})
	}
}
