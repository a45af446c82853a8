package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

// Problem type URIs used across the API.
const (
	TypeValidation      = "https://eventment.app/problems/validation-error"
	TypeUnauthorized    = "https://eventment.app/problems/unauthorized"
	TypeForbidden       = "https://eventment.app/problems/forbidden"
	TypeConflict        = "https://eventment.app/problems/conflict"
	TypePayloadTooLarge = "https://eventment.app/problems/payload-too-large"
	TypeRateLimited     = "https://eventment.app/problems/rate-limited"
	TypeServerError     = "https://eventment.app/problems/server-error"
)

type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	problem := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	for _, opt := range opts {
		opt(&problem)
	}

	if problem.Detail == "" && err != nil {
		if env == "development" || env == "test" {
			problem.Detail = err.Error()
		} else {
			problem.Detail = http.StatusText(status)
		}
	}

	if r != nil {
		problem.Instance = r.URL.Path
	}

	// Log error with structured logging from context
	if err != nil && status >= 500 {
		// Log server errors (5xx) at error level
		logger := zerolog.Ctx(r.Context())
		logger.Error().
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	} else if err != nil && status >= 400 {
		// Log client errors (4xx) at warn level
		logger := zerolog.Ctx(r.Context())
		logger.Warn().
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	}

	WriteProblem(w, problem)
}

func WriteProblem(w http.ResponseWriter, problem ProblemDetails) {
	payload, err := json.Marshal(problem)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(problem.Status)
	_, _ = w.Write(payload)
}

var ErrForbidden = errors.New("forbidden")

// Unauthorized writes a 401 problem for a missing or rejected bearer token.
func Unauthorized(w http.ResponseWriter, r *http.Request, err error, env string) {
	Write(w, r, http.StatusUnauthorized, TypeUnauthorized, "Unauthorized", err, env,
		WithDetail("unauthorized access"))
}

// Forbidden writes a 403 problem for a caller acting outside their own records.
func Forbidden(w http.ResponseWriter, r *http.Request, err error, env string) {
	Write(w, r, http.StatusForbidden, TypeForbidden, "Forbidden", err, env,
		WithDetail("forbidden access"))
}

// Validation writes a 400 problem. The detail is the error text in every
// environment since it only describes the caller's input.
func Validation(w http.ResponseWriter, r *http.Request, err error, env string) {
	var opts []Option
	if err != nil {
		opts = append(opts, WithDetail(err.Error()))
	}
	Write(w, r, http.StatusBadRequest, TypeValidation, "Invalid request", err, env, opts...)
}

// ServerError writes a 500 problem; the cause is only exposed in development and test.
func ServerError(w http.ResponseWriter, r *http.Request, err error, env string) {
	Write(w, r, http.StatusInternalServerError, TypeServerError, "Server error", err, env)
}
