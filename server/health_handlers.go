package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker is implemented by stores that can report their own health
// (the redis-backed state store does; the in-memory one has nothing to check).
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthzHandler reports liveness plus state-store health when the store
// supports it.
func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK

		if checker, ok := s.state.(HealthChecker); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := checker.Health(ctx); err != nil {
				status["status"] = "degraded"
				status["statestore"] = err.Error()
				code = http.StatusServiceUnavailable
			} else {
				status["statestore"] = "ok"
			}
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}
