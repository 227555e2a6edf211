package api

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/Togather-Foundation/eventos/internal/api/handlers"
	"github.com/Togather-Foundation/eventos/internal/api/middleware"
	"github.com/Togather-Foundation/eventos/internal/api/problem"
	"github.com/Togather-Foundation/eventos/internal/audit"
	"github.com/Togather-Foundation/eventos/internal/auth"
	"github.com/Togather-Foundation/eventos/internal/config"
	"github.com/Togather-Foundation/eventos/internal/domain/comments"
	"github.com/Togather-Foundation/eventos/internal/domain/events"
	"github.com/Togather-Foundation/eventos/internal/domain/licenses"
	"github.com/Togather-Foundation/eventos/internal/domain/notifications"
	"github.com/Togather-Foundation/eventos/internal/domain/reports"
	"github.com/Togather-Foundation/eventos/internal/domain/rsvps"
	"github.com/Togather-Foundation/eventos/internal/domain/users"
	"github.com/Togather-Foundation/eventos/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Dependencies carries everything the router wires into handlers. Services
// are built by the caller so tests can back them with stub repositories.
type Dependencies struct {
	Config config.Config
	Logger zerolog.Logger
	Build  BuildInfo

	Users         *users.Service
	Events        *events.Service
	RSVPs         *rsvps.Service
	Comments      *comments.Service
	Reports       *reports.Service
	Licenses      *licenses.Service
	Notifications *notifications.Service

	Tokens *auth.JWTManager
	Audit  *audit.Logger
	Checks map[string]handlers.ReadinessCheck
}

// NewRouter builds the HTTP handler tree. ctx bounds background work owned by
// the middleware chain, such as rate limiter cleanup.
func NewRouter(ctx context.Context, deps Dependencies) http.Handler {
	env := deps.Config.Environment

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens, deps.Audit, env)
	eventsHandler := handlers.NewEventsHandler(deps.Events, deps.Users, deps.Audit, env)
	rsvpsHandler := handlers.NewRSVPsHandler(deps.RSVPs, env)
	commentsHandler := handlers.NewCommentsHandler(deps.Comments, env)
	reportsHandler := handlers.NewReportsHandler(deps.Reports, env)
	licensesHandler := handlers.NewLicensesHandler(deps.Licenses, env)
	notificationsHandler := handlers.NewNotificationsHandler(deps.Notifications, env)
	health := handlers.NewHealthChecker(deps.Build.Version, deps.Build.GitCommit, deps.Checks)

	bearer := middleware.JWTAuth(deps.Tokens, env)
	protected := func(fn http.HandlerFunc) http.Handler { return bearer(fn) }

	mux := http.NewServeMux()

	mux.Handle("/healthz", http.HandlerFunc(health.Healthz))
	mux.Handle("/readyz", http.HandlerFunc(health.Readyz))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/version", VersionHandler(deps.Build))

	mux.Handle("/auth/register", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Register),
	}))
	mux.Handle("/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Login),
	}))
	mux.Handle("/license-types", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(licensesHandler.List),
	}))

	mux.Handle("/me", methodMux(map[string]http.Handler{
		http.MethodGet:    protected(authHandler.Me),
		http.MethodDelete: protected(authHandler.DeleteMe),
	}))
	mux.Handle("/events", methodMux(map[string]http.Handler{
		http.MethodGet:  protected(eventsHandler.List),
		http.MethodPost: protected(eventsHandler.Create),
	}))
	mux.Handle("/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    protected(eventsHandler.Get),
		http.MethodPut:    protected(eventsHandler.Update),
		http.MethodDelete: protected(eventsHandler.Delete),
	}))
	mux.Handle("/my-events", methodMux(map[string]http.Handler{
		http.MethodGet: protected(eventsHandler.Attended),
	}))
	mux.Handle("/my-created-events", methodMux(map[string]http.Handler{
		http.MethodGet: protected(eventsHandler.Created),
	}))
	mux.Handle("/stats", methodMux(map[string]http.Handler{
		http.MethodGet: protected(reportsHandler.Stats),
	}))
	mux.Handle("/history", methodMux(map[string]http.Handler{
		http.MethodGet: protected(reportsHandler.History),
	}))
	mux.Handle("/rsvps/{event_id}", methodMux(map[string]http.Handler{
		http.MethodGet:    protected(rsvpsHandler.Status),
		http.MethodPost:   protected(rsvpsHandler.Create),
		http.MethodDelete: protected(rsvpsHandler.Cancel),
	}))
	mux.Handle("/comments/{event_id}", methodMux(map[string]http.Handler{
		http.MethodGet:  protected(commentsHandler.List),
		http.MethodPost: protected(commentsHandler.Create),
	}))
	mux.Handle("/notifications", methodMux(map[string]http.Handler{
		http.MethodGet: protected(notificationsHandler.List),
	}))

	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusNotFound, "not found", nil, env)
	}))

	// Outermost first. Metrics wraps the mux directly so the matched pattern
	// is visible when it records.
	var handler http.Handler = metrics.HTTPMiddleware(mux)
	handler = middleware.RequestSize(middleware.DefaultMaxBodySize)(handler)
	handler = middleware.RateLimit(ctx, deps.Config.RateLimit)(handler)
	handler = middleware.CORS(deps.Config.CORS, deps.Logger)(handler)
	handler = middleware.SecurityHeaders(env == "production")(handler)
	handler = middleware.RequestLogging(deps.Logger)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(deps.Logger)(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		problem.WriteBody(w, http.StatusMethodNotAllowed, problem.Body{Error: "method not allowed"})
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
