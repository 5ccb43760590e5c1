package model

import "time"

// Priority bounds for tasks.
const (
	PriorityMin     = 1
	PriorityMax     = 10
	PriorityDefault = 5
)

// Distraction level bounds, recorded on completion.
const (
	DistractionMin = 1
	DistractionMax = 5
)

// Task is a single task item owned by one identity.
//
// Invariant: Completed==true implies CompletedAt is set. Completed==false
// implies CompletedAt, ActualTime, and DistractionLevel are all nil, so an
// undone task is indistinguishable from one that was never completed.
type Task struct {
	ID               string     `json:"id" db:"id"`
	Title            string     `json:"title" db:"title"`
	Priority         int        `json:"priority" db:"priority"`
	EstimatedTime    int        `json:"estimatedTime" db:"estimated_time"`
	ActualTime       *int       `json:"actualTime" db:"actual_time"`
	DistractionLevel *int       `json:"distractionLevel" db:"distraction_level"`
	Completed        bool       `json:"completed" db:"completed"`
	CompletedAt      *time.Time `json:"completedAt" db:"completed_at"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	OwnerID          *string    `json:"ownerId" db:"owner_id"`
	IsLater          bool       `json:"isLater" db:"is_later"`
	IsFocus          bool       `json:"isFocus" db:"is_focus"`
	IsMindMapOnly    bool       `json:"isMindMapOnly" db:"is_mind_map_only"`
	Archived         bool       `json:"archived" db:"archived"`
}

// TaskPatch is a partial update to a task. Only non-nil fields are applied.
// Each field is validated individually before any merge happens, so an
// invalid patch never results in a partial write.
type TaskPatch struct {
	Title            *string    `json:"title"`
	Priority         *int       `json:"priority"`
	EstimatedTime    *int       `json:"estimatedTime"`
	ActualTime       *int       `json:"actualTime"`
	DistractionLevel *int       `json:"distractionLevel"`
	Completed        *bool      `json:"completed"`
	CompletedAt      *time.Time `json:"completedAt"`
	IsLater          *bool      `json:"isLater"`
	IsFocus          *bool      `json:"isFocus"`
	IsMindMapOnly    *bool      `json:"isMindMapOnly"`
	Archived         *bool      `json:"archived"`
}

// Validate checks each present field of the patch against the task invariants.
func (p TaskPatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if p.Priority != nil && (*p.Priority < PriorityMin || *p.Priority > PriorityMax) {
		return &ValidationError{Field: "priority", Message: "must be between 1 and 10"}
	}
	if p.EstimatedTime != nil && *p.EstimatedTime <= 0 {
		return &ValidationError{Field: "estimatedTime", Message: "must be a positive number of minutes"}
	}
	if p.ActualTime != nil && *p.ActualTime <= 0 {
		return &ValidationError{Field: "actualTime", Message: "must be a positive number of minutes"}
	}
	if p.DistractionLevel != nil && (*p.DistractionLevel < DistractionMin || *p.DistractionLevel > DistractionMax) {
		return &ValidationError{Field: "distractionLevel", Message: "must be between 1 and 5"}
	}
	return nil
}

// Apply merges the patch into the task. Completion transitions live here so
// both store backends share the same semantics: flipping completed
// false->true stamps now (unless the patch carries an explicit timestamp),
// flipping true->false resets completedAt, actualTime, and distractionLevel.
func (p TaskPatch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.EstimatedTime != nil {
		t.EstimatedTime = *p.EstimatedTime
	}
	if p.ActualTime != nil {
		t.ActualTime = p.ActualTime
	}
	if p.DistractionLevel != nil {
		t.DistractionLevel = p.DistractionLevel
	}
	if p.IsLater != nil {
		t.IsLater = *p.IsLater
	}
	if p.IsFocus != nil {
		t.IsFocus = *p.IsFocus
	}
	if p.IsMindMapOnly != nil {
		t.IsMindMapOnly = *p.IsMindMapOnly
	}
	if p.Archived != nil {
		t.Archived = *p.Archived
	}

	if p.Completed != nil {
		switch {
		case *p.Completed && !t.Completed:
			t.Completed = true
			if p.CompletedAt != nil {
				t.CompletedAt = p.CompletedAt
			} else {
				ts := now
				t.CompletedAt = &ts
			}
		case !*p.Completed && t.Completed:
			t.Completed = false
			t.CompletedAt = nil
			t.ActualTime = nil
			t.DistractionLevel = nil
		}
	} else if p.CompletedAt != nil && t.Completed {
		t.CompletedAt = p.CompletedAt
	}
}
