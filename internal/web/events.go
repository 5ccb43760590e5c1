package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskpilot/internal/model"
)

// createEventRequest is the POST /api/timeline body.
type createEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Priority    *int      `json:"priority"`
}

func (r createEventRequest) validate() error {
	if r.Title == "" {
		return &model.ValidationError{Field: "title", Message: "must not be empty"}
	}
	if r.DueDate.IsZero() {
		return &model.ValidationError{Field: "dueDate", Message: "must be a valid timestamp"}
	}
	if r.Priority != nil && (*r.Priority < model.PriorityMin || *r.Priority > model.PriorityMax) {
		return &model.ValidationError{Field: "priority", Message: "must be between 1 and 10"}
	}
	return nil
}

// handleListEvents returns the timeline events owned by the resolved identity.
func (s *Server) handleListEvents(c *gin.Context) {
	id := currentIdentity(c)

	events, err := s.store.ListEvents(c.Request.Context(), &id.ID)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if events == nil {
		events = []model.TimelineEvent{}
	}
	c.JSON(http.StatusOK, events)
}

// handleCreateEvent creates a timeline event owned by the resolved identity.
func (s *Server) handleCreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.BindJSON(&req); err != nil {
		bindError(c)
		return
	}
	if err := req.validate(); err != nil {
		badRequest(c, err)
		return
	}

	id := currentIdentity(c)
	owner := id.ID

	event := model.TimelineEvent{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		OwnerID:     &owner,
	}
	if req.Priority != nil {
		event.Priority = *req.Priority
	}

	created, err := s.store.CreateEvent(c.Request.Context(), event)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// handleUpdateEvent applies a partial update to a timeline event.
func (s *Server) handleUpdateEvent(c *gin.Context) {
	var patch model.EventPatch
	if err := c.BindJSON(&patch); err != nil {
		bindError(c)
		return
	}
	if err := patch.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	event, err := s.store.UpdateEvent(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// handleDeleteEvent removes a timeline event by id.
func (s *Server) handleDeleteEvent(c *gin.Context) {
	deleted, err := s.store.DeleteEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	if !deleted {
		notFound(c)
		return
	}
	c.Status(http.StatusNoContent)
}
