package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"
)

// ErrNotConfigured is returned by a Checker for optional dependencies that are disabled.
var ErrNotConfigured = errors.New("not configured")

var ready atomic.Bool

func init() { ready.Store(true) }

// SetReady toggles readiness, typically to false once shutdown begins.
func SetReady(v bool) { ready.Store(v) }

// Checker represents dependencies that can be checked for readiness.
type Checker interface {
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker      Checker
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency checks. The regime table is in
// memory, so only Redis (when configured) can make the service unready.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"regimes": "ok", "redis": "disabled"}
	healthy := ready.Load()
	if !healthy {
		status["server"] = "shutting down"
	}
	if h.Checker != nil {
		switch err := h.Checker.PingRedis(r.Context(), h.redisTimeout()); {
		case err == nil:
			status["redis"] = "ok"
		case errors.Is(err, ErrNotConfigured):
		default:
			status["redis"] = err.Error()
			healthy = false
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}
