package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/carepoint/intake/pkg/envelope"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"totalConns"`
	IdleConns       int32  `json:"idleConns"`
	AcquiredConns   int32  `json:"acquiredConns"`
	MaxConns        int32  `json:"maxConns"`
	AcquireCount    int64  `json:"acquireCount"`
	AcquireDuration string `json:"acquireDuration"`
	Healthy         bool   `json:"healthy"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

// Pinger is a dependency the health check can reach.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports database reachability and pool statistics. deps are
// optional dependencies such as the Redis cache. A failing one reports the
// service as degraded with a 200.
func HealthHandler(pool *pgxpool.Pool, version string, deps map[string]Pinger) echo.HandlerFunc {
	return healthHandler(pool, func() *PoolStats { return GetPoolStats(pool) }, version, deps)
}

func healthHandler(database Pinger, stats func() *PoolStats, version string, deps map[string]Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		err := database.Ping(ctx)
		poolStats := stats()

		if err != nil {
			poolStats.Healthy = false
			return c.JSON(http.StatusServiceUnavailable, envelope.Response{
				Success: false,
				Message: "database unreachable",
				Data:    map[string]interface{}{"status": "unhealthy", "pool": poolStats},
			})
		}

		status := "healthy"
		checks := make(map[string]string, len(deps))
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "unreachable"
				status = "degraded"
				continue
			}
			checks[name] = "ok"
		}

		return c.JSON(http.StatusOK, envelope.OK(map[string]interface{}{
			"status":       status,
			"version":      version,
			"pool":         poolStats,
			"dependencies": checks,
		}))
	}
}
