package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskpilot/internal/model"
)

// createTaskRequest is the POST /api/tasks body.
type createTaskRequest struct {
	Title         string `json:"title"`
	Priority      *int   `json:"priority"`
	EstimatedTime int    `json:"estimatedTime"`
	IsLater       bool   `json:"isLater"`
	IsFocus       bool   `json:"isFocus"`
	IsMindMapOnly bool   `json:"isMindMapOnly"`
}

func (r createTaskRequest) validate() error {
	if r.Title == "" {
		return &model.ValidationError{Field: "title", Message: "must not be empty"}
	}
	if r.EstimatedTime <= 0 {
		return &model.ValidationError{Field: "estimatedTime", Message: "must be a positive number of minutes"}
	}
	if r.Priority != nil && (*r.Priority < model.PriorityMin || *r.Priority > model.PriorityMax) {
		return &model.ValidationError{Field: "priority", Message: "must be between 1 and 10"}
	}
	return nil
}

// handleListTasks returns the tasks owned by the resolved identity.
func (s *Server) handleListTasks(c *gin.Context) {
	id := currentIdentity(c)

	tasks, err := s.store.ListTasks(c.Request.Context(), &id.ID)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// handleCreateTask creates a task owned by the resolved identity.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
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

	task := model.Task{
		Title:         req.Title,
		EstimatedTime: req.EstimatedTime,
		OwnerID:       &owner,
		IsLater:       req.IsLater,
		IsFocus:       req.IsFocus,
		IsMindMapOnly: req.IsMindMapOnly,
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}

	created, err := s.store.CreateTask(c.Request.Context(), task)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// handleUpdateTask applies a partial update to a task.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var patch model.TaskPatch
	if err := c.BindJSON(&patch); err != nil {
		bindError(c)
		return
	}
	if err := patch.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	task, err := s.store.UpdateTask(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleDeleteTask removes a task by id.
func (s *Server) handleDeleteTask(c *gin.Context) {
	deleted, err := s.store.DeleteTask(c.Request.Context(), c.Param("id"))
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

// handleArchiveTask performs the one-way archive transition. There is no
// un-archive endpoint.
func (s *Server) handleArchiveTask(c *gin.Context) {
	archived := true
	patch := model.TaskPatch{Archived: &archived}

	task, err := s.store.UpdateTask(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
