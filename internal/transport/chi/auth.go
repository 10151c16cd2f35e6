package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicRoutes are served without credentials so probes and scrapers need no key.
var publicRoutes = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// keyring holds digests of the configured API keys.
type keyring [][sha256.Size]byte

func newKeyring(apiKeys []string) keyring {
	ring := make(keyring, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			ring = append(ring, sha256.Sum256([]byte(k)))
		}
	}
	return ring
}

// contains compares against every key so timing does not reveal which one matched.
func (ring keyring) contains(token string) bool {
	sum := sha256.Sum256([]byte(token))
	found := 0
	for i := range ring {
		found |= subtle.ConstantTimeCompare(ring[i][:], sum[:])
	}
	return found == 1
}

// bearerToken extracts the credential from an Authorization header.
// The scheme name is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// BearerAuthMiddleware rejects /v1 requests that lack a known API key.
// With no non-blank keys configured the middleware is a no-op.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	ring := newKeyring(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(ring) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicRoutes[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "missing authorization header")
				return
			}
			token, ok := bearerToken(header)
			if !ok {
				unauthorized(w, "authorization header must use Bearer scheme")
				return
			}
			if !ring.contains(token) {
				unauthorized(w, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="lexdex"`)
	writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, msg)
}
