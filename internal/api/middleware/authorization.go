package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	internaljwt "flex-design-backend/internal/jwt"
	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
)

type TokenParser interface {
	ParseToken(token string) (internaljwt.Claims, error)
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity policy.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (policy.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(policy.Identity)
	return identity, ok
}

// IdentityFromClaims maps verified token claims to the caller identity. The
// role comes from the secret the token was signed with.
func IdentityFromClaims(claims internaljwt.Claims) policy.Identity {
	role := model.RoleUser
	if claims.Role == internaljwt.RoleAdmin {
		role = model.RoleAdmin
	}
	return policy.Identity{
		UserID: claims.User.Id,
		Email:  claims.User.Email,
		Name:   claims.User.Name,
		Role:   role,
	}
}

func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

// RequireUser accepts any valid access token, user or admin.
func RequireUser(tokens TokenParser) Middleware {
	return authenticate(tokens, false)
}

func RequireAdmin(tokens TokenParser) Middleware {
	return authenticate(tokens, true)
}

// OptionalIdentity attaches the caller identity when a valid token is sent
// and lets anonymous requests through. An invalid token is treated as absent.
func OptionalIdentity(tokens TokenParser) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if token := BearerToken(r); token != "" {
				if claims, err := tokens.ParseToken(token); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), IdentityFromClaims(claims)))
				}
			}
			next(w, r)
		}
	}
}

func authenticate(tokens TokenParser, adminOnly bool) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := tokens.ParseToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			identity := IdentityFromClaims(claims)
			if adminOnly && !identity.IsAdmin() {
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}

			next(w, r.WithContext(WithIdentity(r.Context(), identity)))
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
