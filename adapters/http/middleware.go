package authhttp

import (
	"context"
	"net/http"
	"strings"

	core "github.com/gharkaam/authcore/core"
)

type claimsCtxKey struct{}

// ClaimsFromContext returns the session claims attached by Required.
func ClaimsFromContext(ctx context.Context) (*core.SessionClaims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(*core.SessionClaims)
	return claims, ok
}

// Required validates the Bearer token and stores claims in the request
// context. Missing, malformed, expired and tampered tokens all produce the
// same 401; no failure subtype reaches the client.
func (s *Service) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			unauthorized(w)
			return
		}
		claims, err := s.svc.ParseSession(token)
		if err != nil {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsCtxKey{}, claims)))
	})
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
