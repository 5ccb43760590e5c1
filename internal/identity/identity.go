// Package identity resolves the caller of each request to a stable
// identifier: a verified account id when a valid bearer credential is
// presented, or a deterministic anonymous id derived from connection
// metadata otherwise. Auth problems never reject a request; they demote
// it to anonymous.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"strings"
)

// Identity is the request-scoped caller identifier.
type Identity struct {
	ID            string `json:"id"`
	Authenticated bool   `json:"authenticated"`
}

// anonPrefix marks identifiers derived from connection metadata.
const anonPrefix = "anon-"

// Anonymous derives a stable anonymous identifier from the client network
// address and user-agent string. The derivation is deterministic so repeated
// requests from the same browser tend to resolve to the same id without
// requiring cookies. The port is stripped from the address since it varies
// per connection.
func Anonymous(remoteAddr, userAgent string) Identity {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}

	sum := sha256.Sum256([]byte(host + "|" + strings.TrimSpace(userAgent)))
	return Identity{
		ID:            anonPrefix + hex.EncodeToString(sum[:8]),
		Authenticated: false,
	}
}

// Authenticated returns an identity for a verified account id.
func Authenticated(uid string) Identity {
	return Identity{ID: uid, Authenticated: true}
}

// IsAnonymousID reports whether id was produced by Anonymous.
func IsAnonymousID(id string) bool {
	return strings.HasPrefix(id, anonPrefix)
}
