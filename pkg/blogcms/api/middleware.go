package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/blogcms/blogcms/pkg/blogcms"
	"github.com/blogcms/blogcms/pkg/blogcms/auth"
)

type contextKey string

const claimsKey contextKey = "blogcms.claims"

// ClaimsFromContext returns the verified token claims attached by
// Authenticator, or nil when the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns "" when the header is absent or not a bearer scheme.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticator verifies the bearer token on every request and stores the
// resulting claims in the request context. Requests without a valid token
// are rejected with 401 before reaching the handler.
func (h *Handler) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.auth.Verify(bearerToken(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates the wrapped handlers on the caller's role. It must run
// after Authenticator. An authenticated caller with the wrong role gets 403.
func (h *Handler) RequireRole(required blogcms.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeError(w, r, blogcms.ErrTokenMissing)
				return
			}
			if !auth.Gate(required, claims.Role) {
				writeError(w, r, blogcms.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
