package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskpilot/internal/model"
	"taskpilot/internal/store"
)

// badRequest maps a validation failure to 400, carrying the field name
// when one is available.
func badRequest(c *gin.Context, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// bindError is the response for a body that failed JSON binding.
func bindError(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// notFound is the response for an unknown record id.
func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

// storeError maps a store failure onto the error taxonomy: unknown ids are
// 404, anything else is a 500 with a generic message. Internal detail is
// logged, never leaked.
func (s *Server) storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		notFound(c)
		return
	}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		badRequest(c, err)
		return
	}
	s.log.Error("store operation failed",
		zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
