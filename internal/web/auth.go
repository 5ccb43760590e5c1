package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskpilot/internal/identity"
	"taskpilot/internal/model"
	"taskpilot/internal/store"
)

// credentialsRequest is the signup and login body.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// transferRequest is the POST /api/auth/transfer-data body.
type transferRequest struct {
	AnonymousUID string `json:"anonymousUid"`
	PermanentUID string `json:"permanentUid"`
}

// handleSignup creates a local-credential account, establishes a session,
// and kicks off the one-time ownership transfer from the caller's previous
// anonymous identity.
func (s *Server) handleSignup(c *gin.Context) {
	var req credentialsRequest
	if err := c.BindJSON(&req); err != nil {
		bindError(c)
		return
	}
	if model.NormalizeUsername(req.Username) == "" {
		badRequest(c, &model.ValidationError{Field: "username", Message: "must not be empty"})
		return
	}
	if len(req.Password) < model.MinPasswordLength {
		badRequest(c, &model.ValidationError{Field: "password", Message: "must be at least 6 characters"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.storeError(c, err)
		return
	}

	user, err := s.store.CreateUser(c.Request.Context(), model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		s.storeError(c, err)
		return
	}

	if err := s.establishSession(c, user.ID); err != nil {
		s.storeError(c, err)
		return
	}
	s.transferFromAnonymous(c, user.ID)

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// handleLogin authenticates a local-credential user and establishes a
// session.
func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.BindJSON(&req); err != nil {
		bindError(c)
		return
	}

	user, err := s.store.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			unauthorized(c)
			return
		}
		s.storeError(c, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		unauthorized(c)
		return
	}

	if err := s.establishSession(c, user.ID); err != nil {
		s.storeError(c, err)
		return
	}
	s.transferFromAnonymous(c, user.ID)

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// handleLogout deletes the session and clears the cookie.
func (s *Server) handleLogout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookieName); err == nil && token != "" {
		if err := s.store.DeleteSession(c.Request.Context(), token); err != nil {
			s.log.Warn("session delete failed", zap.Error(err))
		}
	}
	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// handleMe returns the authenticated caller's user record. Callers
// authenticated by bearer token only (no local account) get the bare
// verified id.
func (s *Server) handleMe(c *gin.Context) {
	id := currentIdentity(c)
	if !id.Authenticated {
		unauthorized(c)
		return
	}

	user, err := s.store.GetUserByID(c.Request.Context(), id.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"user": gin.H{"id": id.ID}})
			return
		}
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// handleTransferData is the client-triggered retry path for the ownership
// transfer. It requires a verifiable bearer credential; the transfer itself
// is best-effort and a failure is surfaced as a soft warning, never an
// error status.
func (s *Server) handleTransferData(c *gin.Context) {
	token := identity.BearerToken(c.Request)
	if token == "" || s.verifier == nil {
		unauthorized(c)
		return
	}
	if _, err := s.verifier.Verify(c.Request.Context(), token); err != nil {
		unauthorized(c)
		return
	}

	var req transferRequest
	if err := c.BindJSON(&req); err != nil {
		bindError(c)
		return
	}
	if req.AnonymousUID == "" {
		badRequest(c, &model.ValidationError{Field: "anonymousUid", Message: "must not be empty"})
		return
	}
	if req.PermanentUID == "" {
		badRequest(c, &model.ValidationError{Field: "permanentUid", Message: "must not be empty"})
		return
	}

	count, err := s.store.TransferOwnership(c.Request.Context(), req.AnonymousUID, req.PermanentUID)
	if err != nil {
		s.log.Warn("data transfer failed",
			zap.String("from", req.AnonymousUID),
			zap.String("to", req.PermanentUID),
			zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"transferred": 0,
			"warning":     "data transfer failed; it can be retried",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transferred": count})
}

// establishSession creates a session record and sets the cookie.
func (s *Server) establishSession(c *gin.Context, userID string) error {
	now := time.Now().UTC()
	sess := model.Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.store.CreateSession(c.Request.Context(), sess); err != nil {
		return err
	}
	s.setSessionCookie(c, sess.Token)
	return nil
}

// transferFromAnonymous starts the one-time ownership transfer from the
// caller's derived anonymous id to the freshly authenticated account. The
// surrounding authentication operation never fails because of it.
func (s *Server) transferFromAnonymous(c *gin.Context, userID string) {
	anon := identity.Anonymous(c.Request.RemoteAddr, c.Request.UserAgent())
	if anon.ID == userID {
		return
	}
	s.startOwnershipTransfer(anon.ID, userID)
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}
