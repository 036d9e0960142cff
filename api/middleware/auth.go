package middleware

import (
	"net/http"
	"strings"

	"github.com/maisonaurelle/boutique-backend/api/responses"
	pkgauth "github.com/maisonaurelle/boutique-backend/pkg/auth"
	"github.com/maisonaurelle/boutique-backend/pkg/config"
	pkgerrors "github.com/maisonaurelle/boutique-backend/pkg/errors"
	"github.com/maisonaurelle/boutique-backend/pkg/logger"
)

const sessionHeader = "X-Session-Id"

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID.String())
			ctx = WithRole(ctx, string(claims.Role))

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    claims.UserID.String(),
					"actor_role": string(claims.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Shopper resolves the cart owner for storefront routes. A valid bearer
// token yields a persistent identity; otherwise the session header names an
// anonymous cart. A malformed token is treated as anonymous rather than
// rejected, so an expired login never blocks browsing.
func Shopper(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := bearerToken(r); token != "" {
				if claims, err := pkgauth.ParseAccessToken(cfg, token); err == nil {
					ctx = WithUserID(ctx, claims.UserID.String())
					ctx = WithRole(ctx, string(claims.Role))
					if logg != nil {
						ctx = logg.WithFields(ctx, map[string]any{
							"user_id": claims.UserID.String(),
						})
					}
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			if session := strings.TrimSpace(r.Header.Get(sessionHeader)); session != "" {
				ctx = WithSessionKey(ctx, session)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the authenticated actor's role.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
