package bridge

import (
	"context"
	"time"
)

// HealthStatus is the last observed backend health.
type HealthStatus int

const (
	// HealthUnknown means no probe has completed yet.
	HealthUnknown HealthStatus = iota
	// HealthHealthy means the last probe (or request) succeeded.
	HealthHealthy
	// HealthUnreachable means the last probe (or request) failed.
	HealthUnreachable
)

// String returns the string representation of the health status.
func (h HealthStatus) String() string {
	switch h {
	case HealthHealthy:
		return "healthy"
	case HealthUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Health returns the last observed backend health.
func (c *Client) Health() HealthStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.health
}

func (c *Client) setHealth(h HealthStatus) {
	c.mu.Lock()
	prev := c.health
	c.health = h
	c.mu.Unlock()

	if prev != h && prev != HealthUnknown {
		c.logger.Info("backend health changed", "from", prev.String(), "to", h.String())
	}
}

// CheckHealth probes GET /health once and updates the cached status.
func (c *Client) CheckHealth() HealthStatus {
	var reply struct {
		Status string `json:"status"`
	}
	resp, err := c.http.R().SetResult(&reply).Get("/health")
	if err != nil || resp.IsError() {
		c.setHealth(HealthUnreachable)
	} else {
		c.setHealth(HealthHealthy)
	}
	return c.Health()
}

// RunHealthPoller probes the backend at the given interval until the context
// is cancelled. One probe runs immediately so startup status is known before
// the first tick.
func (c *Client) RunHealthPoller(ctx context.Context, interval time.Duration) {
	c.CheckHealth()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info("backend health poller started", "interval", interval, "url", c.baseURL)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("backend health poller stopped")
			return
		case <-ticker.C:
			c.CheckHealth()
		}
	}
}
