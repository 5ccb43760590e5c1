package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot/internal/model"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

func TestTaskPatchValidate(t *testing.T) {
	tests := []struct {
		name      string
		patch     model.TaskPatch
		wantField string
	}{
		{"empty patch", model.TaskPatch{}, ""},
		{"valid priority", model.TaskPatch{Priority: intPtr(10)}, ""},
		{"empty title", model.TaskPatch{Title: strPtr("")}, "title"},
		{"priority too low", model.TaskPatch{Priority: intPtr(0)}, "priority"},
		{"priority too high", model.TaskPatch{Priority: intPtr(11)}, "priority"},
		{"zero estimate", model.TaskPatch{EstimatedTime: intPtr(0)}, "estimatedTime"},
		{"negative actual", model.TaskPatch{ActualTime: intPtr(-5)}, "actualTime"},
		{"distraction too high", model.TaskPatch{DistractionLevel: intPtr(6)}, "distractionLevel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestTaskPatchApplyCompletion(t *testing.T) {
	now := time.Now().UTC()
	task := model.Task{Title: "t", Priority: 5, EstimatedTime: 30}

	patch := model.TaskPatch{
		Completed:        boolPtr(true),
		ActualTime:       intPtr(25),
		DistractionLevel: intPtr(3),
	}
	patch.Apply(&task, now)

	assert.True(t, task.Completed)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)
	require.NotNil(t, task.ActualTime)
	assert.Equal(t, 25, *task.ActualTime)
}

func TestTaskPatchApplyExplicitTimestamp(t *testing.T) {
	now := time.Now().UTC()
	stamp := now.Add(-2 * time.Hour)
	task := model.Task{Title: "t", Priority: 5, EstimatedTime: 30}

	patch := model.TaskPatch{Completed: boolPtr(true), CompletedAt: &stamp}
	patch.Apply(&task, now)

	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, stamp, *task.CompletedAt)
}

func TestTaskPatchApplyUndoResets(t *testing.T) {
	now := time.Now().UTC()
	task := model.Task{Title: "t", Priority: 5, EstimatedTime: 30}

	complete := model.TaskPatch{
		Completed:        boolPtr(true),
		ActualTime:       intPtr(25),
		DistractionLevel: intPtr(3),
	}
	complete.Apply(&task, now)

	undo := model.TaskPatch{Completed: boolPtr(false)}
	undo.Apply(&task, now.Add(time.Minute))

	// An undone task is indistinguishable from one never completed.
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)
	assert.Nil(t, task.ActualTime)
	assert.Nil(t, task.DistractionLevel)
}

func TestTaskPatchApplyCompleteIsIdempotent(t *testing.T) {
	now := time.Now().UTC()
	task := model.Task{Title: "t", Priority: 5, EstimatedTime: 30}

	first := model.TaskPatch{Completed: boolPtr(true)}
	first.Apply(&task, now)
	stamp := *task.CompletedAt

	// Completing an already-completed task keeps the original timestamp.
	again := model.TaskPatch{Completed: boolPtr(true)}
	again.Apply(&task, now.Add(time.Hour))

	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, stamp, *task.CompletedAt)
}

func TestEventPatchApply(t *testing.T) {
	now := time.Now().UTC()
	due := now.Add(48 * time.Hour)
	event := model.TimelineEvent{Title: "e", DueDate: now.Add(24 * time.Hour), Priority: 5}

	patch := model.EventPatch{
		Title:     strPtr("renamed"),
		DueDate:   &due,
		Completed: boolPtr(true),
	}
	patch.Apply(&event, now)

	assert.Equal(t, "renamed", event.Title)
	assert.Equal(t, due, event.DueDate)
	assert.True(t, event.Completed)
	require.NotNil(t, event.CompletedAt)

	undo := model.EventPatch{Completed: boolPtr(false)}
	undo.Apply(&event, now)

	assert.False(t, event.Completed)
	assert.Nil(t, event.CompletedAt)
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", model.NormalizeUsername("  Alice "))
	assert.Equal(t, "bob", model.NormalizeUsername("BOB"))
	assert.Equal(t, "", model.NormalizeUsername("   "))
}

func TestSessionExpired(t *testing.T) {
	now := time.Now().UTC()
	sess := model.Session{ExpiresAt: now.Add(time.Hour)}

	assert.False(t, sess.Expired(now))
	assert.True(t, sess.Expired(now.Add(2*time.Hour)))
}
