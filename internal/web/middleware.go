package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskpilot/internal/identity"
	"taskpilot/internal/store"
)

// identityKey is the gin context key holding the resolved Identity.
const identityKey = "identity"

// withIdentity resolves the caller identity for every API request. A bearer
// token wins, then a valid session cookie, then the anonymous derivation.
// Auth problems never reject the request.
func (s *Server) withIdentity(c *gin.Context) {
	id := s.resolver.Resolve(c.Request)

	if !id.Authenticated {
		if sessID := s.sessionIdentity(c); sessID != nil {
			id = *sessID
		}
	}

	c.Set(identityKey, id)
	c.Next()
}

// sessionIdentity checks the session cookie and returns an authenticated
// identity if the session is live. The expiry window rolls forward on use.
func (s *Server) sessionIdentity(c *gin.Context) *identity.Identity {
	token, err := c.Cookie(sessionCookieName)
	if err != nil || token == "" {
		return nil
	}

	sess, err := s.store.GetSession(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("session lookup failed", zap.Error(err))
		}
		return nil
	}

	// Rolling expiry: renew on every authenticated request.
	expiresAt := time.Now().UTC().Add(s.sessionTTL)
	if err := s.store.RenewSession(c.Request.Context(), token, expiresAt); err != nil {
		s.log.Warn("session renewal failed", zap.Error(err))
	}
	s.setSessionCookie(c, token)

	id := identity.Authenticated(sess.UserID)
	return &id
}

// currentIdentity returns the Identity attached by withIdentity.
func currentIdentity(c *gin.Context) identity.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(identity.Identity); ok {
			return id
		}
	}
	return identity.Anonymous(c.Request.RemoteAddr, c.Request.UserAgent())
}

// setSessionCookie writes the HTTP-only, same-site session cookie.
func (s *Server) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, token, int(s.sessionTTL.Seconds()), "/", "", false, true)
}

// clearSessionCookie expires the session cookie.
func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
}

// requestLogger logs each request with method, path, status, and duration.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
