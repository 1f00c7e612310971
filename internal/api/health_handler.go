package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/seo-noc/internal/pkg/httputil"
)

// ComponentCheck reports the health of a single dependency.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down", "not_configured"
	Message string `json:"message,omitempty"`
}

// HealthStatus is the overall /readyz response shape.
type HealthStatus struct {
	Status string                     `json:"status"` // "healthy", "degraded"
	Uptime string                     `json:"uptime"`
	Checks map[string]ComponentCheck `json:"checks"`
}

// HealthChecker pings every configured dependency. Any may be nil, in which
// case its check reports "not_configured" rather than "down".
type HealthChecker struct {
	db          *sql.DB
	redisClient *redis.Client
	startTime   time.Time
}

// NewHealthChecker builds a HealthChecker.
func NewHealthChecker(db *sql.DB, redisClient *redis.Client) *HealthChecker {
	return &HealthChecker{db: db, redisClient: redisClient, startTime: time.Now()}
}

// HandleLiveness answers the liveness probe: the process is up and serving
// requests, independent of any dependency's state.
//
//	GET /healthz
func (hc *HealthChecker) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "alive"})
}

// HandleReadiness answers the readiness probe: every configured dependency
// responds. Returns 503 if any configured check is down.
//
//	GET /readyz
func (hc *HealthChecker) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	status := hc.check(r.Context())
	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	httputil.JSON(w, code, status)
}

func (hc *HealthChecker) check(ctx context.Context) HealthStatus {
	checks := make(map[string]ComponentCheck)
	healthy := true

	checks["postgres"] = hc.checkDB(ctx)
	if checks["postgres"].Status == "down" {
		healthy = false
	}

	checks["redis"] = hc.checkRedis(ctx)
	if checks["redis"].Status == "down" {
		healthy = false
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
	}
	return HealthStatus{
		Status: status,
		Uptime: time.Since(hc.startTime).Round(time.Second).String(),
		Checks: checks,
	}
}

func (hc *HealthChecker) checkDB(ctx context.Context) ComponentCheck {
	if hc.db == nil {
		return ComponentCheck{Status: "not_configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := hc.db.PingContext(ctx); err != nil {
		return ComponentCheck{Status: "down", Message: err.Error()}
	}
	return ComponentCheck{Status: "up"}
}

func (hc *HealthChecker) checkRedis(ctx context.Context) ComponentCheck {
	if hc.redisClient == nil {
		return ComponentCheck{Status: "not_configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := hc.redisClient.Ping(ctx).Err(); err != nil {
		return ComponentCheck{Status: "down", Message: err.Error()}
	}
	return ComponentCheck{Status: "up"}
}
