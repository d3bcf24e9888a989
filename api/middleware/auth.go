package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/invoicecapture-backend/api/responses"
	"github.com/angelmondragon/invoicecapture-backend/internal/access"
	pkgAuth "github.com/angelmondragon/invoicecapture-backend/pkg/auth"
	"github.com/angelmondragon/invoicecapture-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/invoicecapture-backend/pkg/errors"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
)

// ProfileLoader resolves the profile behind a verified token subject.
type ProfileLoader interface {
	Profile(ctx context.Context, userID uuid.UUID) (*access.Profile, error)
}

// Auth validates a bearer token, loads the caller's profile and seeds the request context with it.
func Auth(cfg config.JWTConfig, profiles ProfileLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid subject"))
				return
			}

			if profiles == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "profile loader unavailable"))
				return
			}
			profile, err := profiles.Profile(r.Context(), userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if profile == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile not found"))
				return
			}

			ctx := WithProfile(r.Context(), profile)
			if logg != nil {
				ctx = logg.WithUserID(ctx, profile.ID.String())
				ctx = logg.WithActorRole(ctx, string(profile.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
