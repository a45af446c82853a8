package api

import (
	"net/http"

	"github.com/RafexStrike/eventment-server/internal/api/handlers"
	"github.com/RafexStrike/eventment-server/internal/api/middleware"
	"github.com/RafexStrike/eventment-server/internal/audit"
	"github.com/RafexStrike/eventment-server/internal/auth"
	"github.com/RafexStrike/eventment-server/internal/config"
	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"github.com/RafexStrike/eventment-server/internal/domain/joined"
	"github.com/RafexStrike/eventment-server/internal/metrics"
	"github.com/RafexStrike/eventment-server/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Dependencies are the process-wide resources the router serves from.
type Dependencies struct {
	Store     storage.Repository
	Verifier  auth.Verifier
	Version   string
	GitCommit string
	BuildDate string
}

// NewRouter builds the HTTP handler with the global middleware chain applied.
func NewRouter(cfg config.Config, logger zerolog.Logger, deps Dependencies) http.Handler {
	env := cfg.Environment

	auditLog := audit.NewLogger(logger, audit.WithTrustedProxies(cfg.RateLimit.TrustedProxyCIDRs))
	eventsHandler := handlers.NewEventsHandler(events.NewService(deps.Store.Events()), env, auditLog)
	joinedHandler := handlers.NewJoinedHandler(joined.NewService(deps.Store.Joined()), env, auditLog)
	health := handlers.NewHealthChecker(deps.Store, deps.Version, deps.GitCommit)

	rateLimit := middleware.RateLimit(cfg.RateLimit, env)
	public := func(h http.HandlerFunc) http.Handler {
		return rateLimit(h)
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return chain(h,
			middleware.WithRateLimitTierHandler(middleware.TierMember),
			rateLimit,
			middleware.PublicRequestSize(),
			middleware.Authenticate(deps.Verifier, env),
			middleware.RequireOwner(env),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", handlers.Root())
	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", health.Readyz())
	mux.Handle("GET /version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("POST /events/post", protected(eventsHandler.Create))
	mux.Handle("GET /events/get", public(eventsHandler.ListPublic))
	mux.Handle("GET /events", protected(eventsHandler.ListMine))
	mux.Handle("GET /events/get/{eventID}", public(eventsHandler.Get))
	mux.Handle("DELETE /myEvent/delete/{myEventID}", protected(eventsHandler.Delete))
	mux.Handle("GET /events/featured", public(eventsHandler.Featured))
	mux.Handle("PUT /myEvent/put/{myEventID}", protected(eventsHandler.Update))

	mux.Handle("POST /joinedEvent", protected(joinedHandler.Join))
	mux.Handle("GET /joinedEvent", protected(joinedHandler.List))

	return chain(metrics.HTTPMiddleware(mux),
		middleware.CORS(cfg.CORS, env, logger),
		middleware.CorrelationID(logger),
		middleware.RequestLogging(logger),
		middleware.SecurityHeaders(env == "production"),
		middleware.Tracing,
	)
}

// chain wraps h so the first middleware is the outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
