package model

import "time"

// TimelineEvent is a dated entry on the timeline view. Events follow the
// same ownership-scoping rule as tasks.
type TimelineEvent struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	DueDate     time.Time  `json:"dueDate" db:"due_date"`
	Priority    int        `json:"priority" db:"priority"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completedAt" db:"completed_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	OwnerID     *string    `json:"ownerId" db:"owner_id"`
}

// EventPatch is a partial update to a timeline event.
type EventPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    *int       `json:"priority"`
	Completed   *bool      `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

// Validate checks each present field of the patch.
func (p EventPatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return &ValidationError{Field: "title", Message: "must not be empty"}
	}
	if p.Priority != nil && (*p.Priority < PriorityMin || *p.Priority > PriorityMax) {
		return &ValidationError{Field: "priority", Message: "must be between 1 and 10"}
	}
	return nil
}

// Apply merges the patch into the event, mirroring the task completion
// transition rules.
func (p EventPatch) Apply(e *TimelineEvent, now time.Time) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.DueDate != nil {
		e.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		e.Priority = *p.Priority
	}

	if p.Completed != nil {
		switch {
		case *p.Completed && !e.Completed:
			e.Completed = true
			if p.CompletedAt != nil {
				e.CompletedAt = p.CompletedAt
			} else {
				ts := now
				e.CompletedAt = &ts
			}
		case !*p.Completed && e.Completed:
			e.Completed = false
			e.CompletedAt = nil
		}
	} else if p.CompletedAt != nil && e.Completed {
		e.CompletedAt = p.CompletedAt
	}
}
