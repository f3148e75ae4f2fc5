package gateway

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/buildgate/buildgate/internal/clog"
)

// Authenticator checks bearer tokens against the single configured
// token. Comparison runs in constant time over fixed-length digests so
// neither token length nor content leaks through timing.
type Authenticator struct {
	tokenSum [sha256.Size]byte
}

// NewAuthenticator creates an Authenticator for the given token.
func NewAuthenticator(token string) *Authenticator {
	return &Authenticator{tokenSum: sha256.Sum256([]byte(token))}
}

// Check reports whether the presented token matches.
func (a *Authenticator) Check(presented string) bool {
	sum := sha256.Sum256([]byte(presented))
	return subtle.ConstantTimeCompare(sum[:], a.tokenSum[:]) == 1
}

// Middleware rejects requests without a valid Authorization bearer
// token with 401 before the handler runs.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok || !a.Check(token) {
			clog.Warn("auth failure from %s for %s", r.RemoteAddr, r.URL.Path)
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme match is case-insensitive per RFC 7235.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
