// Package audit records owner mutations (create, update, delete, join) as
// structured log lines, separate from request logs.
package audit

import (
	"net/http"

	"github.com/RafexStrike/eventment-server/internal/api/middleware"
	"github.com/rs/zerolog"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Actions recorded by the API handlers.
const (
	ActionEventCreate = "event.create"
	ActionEventUpdate = "event.update"
	ActionEventDelete = "event.delete"
	ActionEventJoin   = "event.join"
)

// Entry is a single audit record.
type Entry struct {
	Action       string
	Actor        string
	ResourceType string
	ResourceID   string
	IPAddress    string
	RequestID    string
	Status       string
	Details      map[string]string
}

// Logger writes audit entries. A nil *Logger discards them.
type Logger struct {
	output         zerolog.Logger
	trustedProxies []string
}

type Option func(*Logger)

// WithTrustedProxies lets forwarding headers set the recorded client address
// when the connection comes from one of these CIDRs, matching the rate limiter.
func WithTrustedProxies(cidrs []string) Option {
	return func(l *Logger) {
		l.trustedProxies = cidrs
	}
}

func NewLogger(base zerolog.Logger, opts ...Option) *Logger {
	l := &Logger{output: base.With().Str("log_type", "audit").Logger()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}
	event := l.output.Info()
	if entry.Status == StatusFailure {
		event = l.output.Warn()
	}
	event = event.
		Str("action", entry.Action).
		Str("actor", entry.Actor).
		Str("status", entry.Status)
	if entry.ResourceType != "" {
		event = event.Str("resource_type", entry.ResourceType)
	}
	if entry.ResourceID != "" {
		event = event.Str("resource_id", entry.ResourceID)
	}
	if entry.IPAddress != "" {
		event = event.Str("ip_address", entry.IPAddress)
	}
	if entry.RequestID != "" {
		event = event.Str("request_id", entry.RequestID)
	}
	if len(entry.Details) > 0 {
		details := zerolog.Dict()
		for key, value := range entry.Details {
			details = details.Str(key, value)
		}
		event = event.Dict("details", details)
	}
	event.Msg("audit")
}

// LogFromRequest fills the actor, client address and request id from r. The
// actor is the verified caller, or "anonymous" when the route is public.
func (l *Logger) LogFromRequest(r *http.Request, action, resourceType, resourceID, status string, details map[string]string) {
	if l == nil {
		return
	}
	actor := "anonymous"
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok && identity.Email != "" {
		actor = identity.Email
	}
	l.Log(Entry{
		Action:       action,
		Actor:        actor,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    middleware.ClientIP(r, l.trustedProxies),
		RequestID:    middleware.GetRequestID(r.Context()),
		Status:       status,
		Details:      details,
	})
}
