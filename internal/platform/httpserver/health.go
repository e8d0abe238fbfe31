package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"signup/pkg/platform/httputil"
)

// healthTimeout bounds the dependency check behind /health.
const healthTimeout = 2 * time.Second

// HealthHandler reports 200 when check succeeds and 503 otherwise.
func HealthHandler(check func(context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := check(ctx); err != nil {
			logger.WarnContext(ctx, "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
