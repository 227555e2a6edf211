package middleware

import (
	"context"
	"net/http"

	"github.com/Togather-Foundation/eventos/internal/api/problem"
	"github.com/Togather-Foundation/eventos/internal/auth"
	"github.com/rs/zerolog"
)

const identityKey contextKey = "identity"

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID   int64
	Username string
}

// JWTAuth rejects requests without a valid bearer token with 401 and stores
// the token's identity on the context for downstream handlers.
func JWTAuth(manager *auth.JWTManager, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				problem.Write(w, r, http.StatusUnauthorized, "missing authorization header", auth.ErrMissingToken, env)
				return
			}
			token, err := auth.TokenFromHeader(header)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, "authorization header must use the Bearer scheme", err, env)
				return
			}
			claims, err := manager.Validate(token)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, "invalid or expired token", err, env)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, "invalid or expired token", err, env)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: userID, Username: claims.Username})
			logger := zerolog.Ctx(ctx).With().Int64("user_id", userID).Logger()
			ctx = logger.WithContext(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID > 0
}
