package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// readyTimeout bounds the whole readiness probe.
const readyTimeout = 2 * time.Second

// ReadyCheck returns nil when the subsystem it probes can take traffic.
type ReadyCheck func(ctx context.Context) error

type healthReport struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// HealthHandler is the liveness probe: 200 {"status":"ok"} while the
// process can answer at all.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		writeHealth(rw, http.StatusOK, healthReport{Status: "ok"})
	})
}

// ReadyHandler is the readiness probe. Checks run in order under a shared
// deadline; the first failure answers 503 with its message as the reason.
func ReadyHandler(checks ...ReadyCheck) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		ctx, cancel := context.WithTimeout(hr.Context(), readyTimeout)
		defer cancel()

		for _, check := range checks {
			if err := check(ctx); err != nil {
				writeHealth(rw, http.StatusServiceUnavailable, healthReport{Status: "unavailable", Reason: err.Error()})

				return
			}
		}

		writeHealth(rw, http.StatusOK, healthReport{Status: "ok"})
	})
}

func writeHealth(rw http.ResponseWriter, code int, report healthReport) {
	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Set("Cache-Control", "no-store")
	rw.WriteHeader(code)

	_ = json.NewEncoder(rw).Encode(report) //nolint:errcheck // probe client went away.
}
