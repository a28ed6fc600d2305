package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"

	"healthdemo/internal/health"
	"healthdemo/internal/models"
	"healthdemo/internal/status"
	"healthdemo/internal/version"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Route names used for reverse routing.
const (
	RouteIndex   = "index"
	RouteGetDown = "getdown"
	RouteKill    = "kill"
)

const contentTypeText = "text/plain; charset=utf-8"

// Terminator ends the process with the given exit code. It does not return.
type Terminator func(code int)

// Handlers contains the HTTP handlers for the demo endpoints and the
// actuator-style health and info endpoints.
type Handlers struct {
	store       status.Store
	checker     *health.Checker
	terminate   Terminator
	info        version.Info
	serviceName string
	showDetails bool
	forwarded   bool
	router      *mux.Router
}

// HandlerOption configures optional Handlers dependencies.
type HandlerOption func(*Handlers)

// WithTerminator replaces os.Exit as the kill action.
func WithTerminator(t Terminator) HandlerOption {
	return func(h *Handlers) {
		h.terminate = t
	}
}

// WithHealthDetails renders per-indicator components on health endpoints.
func WithHealthDetails(show bool) HandlerOption {
	return func(h *Handlers) {
		h.showDetails = show
	}
}

// WithForwardedHeaders makes the index link honour X-Forwarded-Proto and
// X-Forwarded-Host. Enable it only behind a proxy that sets them.
func WithForwardedHeaders(trust bool) HandlerOption {
	return func(h *Handlers) {
		h.forwarded = trust
	}
}

// WithBuildInfo sets the metadata served by /actuator/info.
func WithBuildInfo(serviceName string, info version.Info) HandlerOption {
	return func(h *Handlers) {
		h.serviceName = serviceName
		h.info = info
	}
}

// NewHandlers creates the handlers around the process-wide liveness store and
// the health checker that reports on it.
func NewHandlers(store status.Store, checker *health.Checker, opts ...HandlerOption) *Handlers {
	h := &Handlers{
		store:     store,
		checker:   checker,
		terminate: os.Exit,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Index reports the current status and links to the set-down endpoint.
// GET /
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	current := health.StatusUp
	if !h.store.Live() {
		current = health.StatusDown
	}

	body := fmt.Sprintf("Application status: %s\nHit %s to update application status, and see how the platform reacts to this update.",
		current, h.getDownURL(r))
	h.writeText(w, http.StatusOK, body)
}

// GetDown flips the liveness flag to unhealthy. Repeated calls are harmless.
// GET /getdown
func (h *Handlers) GetDown(w http.ResponseWriter, r *http.Request) {
	slog.Info("Updating application status: DOWN")
	trace.SpanFromContext(r.Context()).AddEvent("liveness.set",
		trace.WithAttributes(attribute.Bool("live", false)))
	h.store.SetLive(false)
	h.writeText(w, http.StatusOK, "Application status set to DOWN")
}

// Kill terminates the process with exit code 0. No response is written; the
// connection drops when the process exits.
// GET /kill
func (h *Handlers) Kill(w http.ResponseWriter, r *http.Request) {
	slog.Info("Killing application process")
	trace.SpanFromContext(r.Context()).AddEvent("process.kill")
	h.terminate(0)
}

// Health serves the aggregated health verdict.
// GET /actuator/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health.Handler(h.checker, h.showDetails).ServeHTTP(w, r)
}

// HealthComponent serves a single named indicator.
// GET /actuator/health/{component}
func (h *Handlers) HealthComponent(w http.ResponseWriter, r *http.Request) {
	health.ComponentHandler(h.checker, h.showDetails, func(r *http.Request) string {
		return mux.Vars(r)["component"]
	}).ServeHTTP(w, r)
}

// Info serves build metadata and the instance identity.
// GET /actuator/info
func (h *Handlers) Info(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, models.InfoResponse{
		Build: models.BuildInfo{
			Name:      h.serviceName,
			Version:   h.info.Version,
			GitCommit: h.info.GitCommit,
			BuildDate: h.info.BuildDate,
		},
		Instance: models.InstanceInfo{
			ID:       h.info.InstanceID,
			Hostname: h.info.Hostname,
			Started:  h.info.StartedAt,
		},
	})
}

// getDownURL builds the absolute set-down URL from the incoming request's
// scheme and host. The path comes from the named route when the handlers are
// mounted on a router.
func (h *Handlers) getDownURL(r *http.Request) string {
	u := &url.URL{Path: "/getdown"}
	if h.router != nil {
		if route := h.router.Get(RouteGetDown); route != nil {
			if routeURL, err := route.URL(); err == nil {
				u = routeURL
			}
		}
	}

	u.Scheme, u.Host = h.origin(r)
	return u.String()
}

// origin returns the scheme and host the client used to reach the service.
// Requests without a Host header (HTTP/1.0) fall back to the local address
// of the accepting connection.
func (h *Handlers) origin(r *http.Request) (scheme, host string) {
	scheme = "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host = r.Host

	if h.forwarded {
		if proto := firstHeaderValue(r, "X-Forwarded-Proto"); proto == "http" || proto == "https" {
			scheme = proto
		}
		if fwdHost := firstHeaderValue(r, "X-Forwarded-Host"); fwdHost != "" {
			host = fwdHost
		}
	}

	if host == "" {
		if addr, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
			host = addr.String()
		}
	}
	return scheme, host
}

// firstHeaderValue returns the first entry of a comma-separated header, as
// appended by a chain of proxies.
func firstHeaderValue(r *http.Request, name string) string {
	first, _, _ := strings.Cut(r.Header.Get(name), ",")
	return strings.ToLower(strings.TrimSpace(first))
}

func (h *Handlers) writeText(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Error("Error writing text response", "error", err)
	}
}

// writeJSONResponse writes a JSON response
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written; log only.
		slog.Error("Error encoding JSON response", "error", err)
	}
}
