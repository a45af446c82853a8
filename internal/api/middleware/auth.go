package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/RafexStrike/eventment-server/internal/api/problem"
	"github.com/RafexStrike/eventment-server/internal/auth"
	"github.com/RafexStrike/eventment-server/internal/metrics"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type contextKeyIdentity string

const identityKey contextKeyIdentity = "identity"

// Authenticate requires a valid bearer token. The verified identity is stored
// in the request context for RequireOwner and handlers, and its uid is
// recorded on the active span.
func Authenticate(verifier auth.Verifier, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context())

			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil || token == "" {
				metrics.AuthFailuresTotal.WithLabelValues("missing_token").Inc()
				problem.Unauthorized(w, r, auth.ErrMissingToken, env)
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, auth.ErrMissingEmail) {
					reason = "missing_email"
				}
				metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
				problem.Unauthorized(w, r, err, env)
				return
			}

			trace.SpanFromContext(r.Context()).SetAttributes(
				attribute.String("enduser.id", identity.UID),
				attribute.String("auth.provider", identity.Provider),
			)
			logger.Debug().
				Str("uid", identity.UID).
				Str("email", identity.Email).
				Str("provider", identity.Provider).
				Str("issuer", identity.Issuer).
				Msg("token verified")

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity set by Authenticate.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*auth.Identity)
	return identity, ok && identity != nil
}
