package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/RafexStrike/eventment-server/internal/api/problem"
	"github.com/RafexStrike/eventment-server/internal/auth"
	"github.com/RafexStrike/eventment-server/internal/metrics"
	"github.com/rs/zerolog"
)

// RequireOwner rejects requests whose supplied email is not the verified
// caller's. Both the "email" query parameter and the "email" field of a JSON
// body are checked when present, and at least one must be. The body is
// restored for the handler. It must run after Authenticate.
func RequireOwner(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			emails, err := suppliedEmails(r)
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypePayloadTooLarge,
						"Payload too large", err, env, problem.WithDetail(err.Error()))
					return
				}
				problem.Validation(w, r, err, env)
				return
			}

			identity, _ := IdentityFromContext(r.Context())
			if len(emails) == 0 {
				emails = []string{""}
			}
			for _, email := range emails {
				if !auth.OwnerMatches(identity, email) {
					metrics.AuthFailuresTotal.WithLabelValues("owner_mismatch").Inc()
					zerolog.Ctx(r.Context()).Debug().
						Str("supplied_email", email).
						Msg("owner email mismatch")
					problem.Forbidden(w, r, problem.ErrForbidden, env)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

type emailEnvelope struct {
	Email string `json:"email"`
}

// suppliedEmails returns the non-empty query and body emails without
// consuming the body. A body that is not a JSON object contributes nothing,
// so the caller gets a 403 rather than a decode failure.
func suppliedEmails(r *http.Request) ([]string, error) {
	var emails []string
	if email := r.URL.Query().Get("email"); email != "" {
		emails = append(emails, email)
	}
	if r.Body == nil || r.Body == http.NoBody {
		return emails, nil
	}

	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var envelope emailEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Email != "" {
		emails = append(emails, envelope.Email)
	}
	return emails, nil
}
