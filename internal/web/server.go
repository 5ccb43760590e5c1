// Package web exposes the REST API for tasks, timeline events, and
// authentication, scoped by the resolved request identity.
package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskpilot/internal/identity"
	"taskpilot/internal/store"
)

// sessionCookieName is the HTTP-only cookie carrying the session token.
const sessionCookieName = "taskpilot_session"

// Server is the taskpilot API server.
type Server struct {
	store      store.Store
	resolver   *identity.Resolver
	verifier   identity.Verifier
	sessionTTL time.Duration
	log        *zap.Logger
	router     *gin.Engine
}

// NewServer creates a server with all routes registered. verifier may be
// nil when no external identity provider is configured; bearer tokens are
// then ignored and every caller resolves to a session or anonymous identity.
func NewServer(
	st store.Store,
	resolver *identity.Resolver,
	verifier identity.Verifier,
	sessionTTL time.Duration,
	log *zap.Logger,
) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		store:      st,
		resolver:   resolver,
		verifier:   verifier,
		sessionTTL: sessionTTL,
		log:        log,
		router:     router,
	}

	router.Use(s.requestLogger())

	api := router.Group("/api")
	api.Use(s.withIdentity)
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.PATCH("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.POST("/tasks/:id/archive", s.handleArchiveTask)

		api.GET("/timeline", s.handleListEvents)
		api.POST("/timeline", s.handleCreateEvent)
		api.PATCH("/timeline/:id", s.handleUpdateEvent)
		api.DELETE("/timeline/:id", s.handleDeleteEvent)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", s.handleSignup)
			auth.POST("/login", s.handleLogin)
			auth.POST("/logout", s.handleLogout)
			auth.GET("/me", s.handleMe)
			auth.POST("/transfer-data", s.handleTransferData)
		}
	}

	return s
}

// Handler returns the underlying HTTP handler, for mounting and for tests.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Run starts the server on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
