package middleware

import (
	"net/http"

	"volunvibe/app/auth"
	apperrors "volunvibe/app/errors"

	"go.uber.org/zap"
)

// RequireAuth rejects requests without a valid identity cookie and stores
// the verified identity in the request context.
func RequireAuth(verifier auth.Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				writeError(w, apperrors.Unauthenticated("unauthorized access", nil))
				return
			}

			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if !apperrors.Is(err, apperrors.ErrTypeInvalidCredentials) {
					logger.Error("token verification failed",
						zap.String("request_id", RequestID(r.Context())),
						zap.Error(err),
					)
				}
				writeError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
