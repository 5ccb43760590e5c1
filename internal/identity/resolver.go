package identity

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxLogLimiters caps the per-id limiter map so a scan across many client
// addresses cannot grow it without bound.
const maxLogLimiters = 4096

// Resolver turns an incoming request into an Identity.
//
// Resolution order: a bearer token is verified first; any verification
// failure (expired, malformed, provider error) falls back to the anonymous
// derivation rather than rejecting the request. Every endpoint stays usable
// without a valid credential.
type Resolver struct {
	verifier Verifier
	log      *zap.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewResolver creates a resolver. verifier may be nil, in which case every
// request resolves to an anonymous identity.
func NewResolver(verifier Verifier, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		verifier: verifier,
		log:      log,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Resolve produces the Identity for the request.
func (r *Resolver) Resolve(req *http.Request) Identity {
	if token := BearerToken(req); token != "" && r.verifier != nil {
		uid, err := r.verifier.Verify(req.Context(), token)
		if err == nil {
			return Authenticated(uid)
		}
		// Demote to anonymous rather than reject.
		r.log.Debug("bearer verification failed, falling back to anonymous",
			zap.Error(err))
	}

	id := Anonymous(req.RemoteAddr, req.UserAgent())
	if r.allowLog(id.ID) {
		r.log.Debug("resolved anonymous identity", zap.String("id", id.ID))
	}
	return id
}

// allowLog rate-limits debug logging per derived anonymous id so a chatty
// client does not flood the log.
func (r *Resolver) allowLog(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	lim, ok := r.limiters[id]
	if !ok {
		if len(r.limiters) >= maxLogLimiters {
			r.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(rate.Every(time.Second), 1)
		r.limiters[id] = lim
	}
	return lim.Allow()
}

// BearerToken extracts the token from an Authorization: Bearer header.
func BearerToken(req *http.Request) string {
	h := req.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
