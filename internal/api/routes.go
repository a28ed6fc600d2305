package api

import (
	"net/http"

	"healthdemo/internal/models"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// RouteOption configures optional route behavior.
type RouteOption func(*mux.Router)

// WithOTelMiddleware adds OpenTelemetry HTTP instrumentation middleware.
// Probe traffic is not traced.
func WithOTelMiddleware(serviceName string) RouteOption {
	return func(r *mux.Router) {
		r.Use(otelmux.Middleware(serviceName,
			otelmux.WithFilter(func(r *http.Request) bool {
				return !isProbePath(r.URL.Path)
			}),
		))
	}
}

// WithRateLimiter adds rate limiting middleware to the router.
func WithRateLimiter(middleware func(http.Handler) http.Handler) RouteOption {
	return func(r *mux.Router) {
		r.Use(middleware)
	}
}

// SkipProbes is a rate limiter skip function exempting probe endpoints, so a
// throttled client can never make the platform see a failing probe.
func SkipProbes(r *http.Request) bool {
	return isProbePath(r.URL.Path)
}

// SetupRoutes configures the HTTP routes. All routes answer GET only; other
// methods get the router's 405 response.
func SetupRoutes(handlers *Handlers, opts ...RouteOption) *mux.Router {
	router := mux.NewRouter()
	handlers.router = router

	// Outermost: every optional layer below is logged and recovered.
	router.Use(loggingMiddleware)
	router.Use(recoveryMiddleware)

	for _, opt := range opts {
		opt(router)
	}

	router.HandleFunc("/", handlers.Index).Methods(http.MethodGet).Name(RouteIndex)
	router.HandleFunc("/getdown", handlers.GetDown).Methods(http.MethodGet).Name(RouteGetDown)
	router.HandleFunc("/kill", handlers.Kill).Methods(http.MethodGet).Name(RouteKill)

	actuator := router.PathPrefix("/actuator").Subrouter()
	actuator.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	actuator.HandleFunc("/health/{component}", handlers.HealthComponent).Methods(http.MethodGet)
	actuator.HandleFunc("/info", handlers.Info).Methods(http.MethodGet)

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", models.ErrorCodeMethodNotAllowed)
	})
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found", models.ErrorCodeNotFound)
	})

	return router
}
