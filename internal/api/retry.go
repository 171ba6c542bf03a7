package api

import (
	"context"
	"time"
)

// HealthWithRetry performs up to attempts health checks with delay between
// them, stopping at the first success. It returns false only after every
// attempt has failed or the context was cancelled.
func (c *Client) HealthWithRetry(ctx context.Context, attempts int, delay time.Duration) (*HealthSnapshot, bool) {
	for i := 0; i < attempts; i++ {
		if snap, ok := c.Health(ctx); ok {
			return snap, true
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(delay):
		}
	}
	return nil, false
}
