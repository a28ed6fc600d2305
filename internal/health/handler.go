package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"healthdemo/internal/models"
)

// checkTimeout bounds a single probe evaluation.
const checkTimeout = 5 * time.Second

// Handler serves the aggregated verdict. Per-indicator components are only
// rendered when showDetails is set.
func Handler(c *Checker, showDetails bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		result := c.Check(ctx)
		if !showDetails {
			result.Components = nil
		}
		writeJSON(w, result.Status.HTTPStatusCode(), result)
	}
}

// ComponentHandler serves the verdict of a single indicator. The component
// name is extracted from the request by name, which keeps this package free
// of any particular router.
func ComponentHandler(c *Checker, showDetails bool, name func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		h, ok := c.CheckComponent(ctx, name(r))
		if !ok {
			writeJSON(w, http.StatusNotFound,
				models.NewErrorResponse("Unknown health component", models.ErrorCodeNotFound))
			return
		}
		if !showDetails {
			h.Details = nil
		}
		writeJSON(w, h.Status.HTTPStatusCode(), h)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}
