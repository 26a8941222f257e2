package postgresql

import (
	"context"
	"time"
)

// HealthCheck represents database health information.
type HealthCheck struct {
	Status       string        `json:"status"`
	ResponseTime time.Duration `json:"response_time"`
	ActiveConns  int32         `json:"active_connections"`
	IdleConns    int32         `json:"idle_connections"`
	MaxConns     int32         `json:"max_connections"`
	DatabaseName string        `json:"database_name"`
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	Error        string        `json:"error,omitempty"`
}

const (
	// StatusHealthy is reported when the pool answers a ping.
	StatusHealthy = "healthy"
	// StatusUnhealthy is reported when the ping fails.
	StatusUnhealthy = "unhealthy"
)

// CheckHealth pings the pool and reports its connection counters.
func (c *Client) CheckHealth(ctx context.Context) *HealthCheck {
	start := time.Now()

	stats := c.Stats()
	health := &HealthCheck{
		DatabaseName: c.DatabaseName(),
		Host:         c.Host(),
		Port:         c.Port(),
		ActiveConns:  stats.AcquiredConns(),
		IdleConns:    stats.IdleConns(),
		MaxConns:     stats.MaxConns(),
		Status:       StatusHealthy,
	}

	if err := c.Ping(ctx); err != nil {
		health.Status = StatusUnhealthy
		health.Error = "ping failed: " + err.Error()
	}
	health.ResponseTime = time.Since(start)

	return health
}
