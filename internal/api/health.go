package api

import (
	"context"
	"fmt"
)

// Health fetches the backend health report.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/api/health", nil, &resp); err != nil {
		return nil, fmt.Errorf("get health: %w", err)
	}
	return &resp, nil
}

// Check implements a reachability check: any non-error health response counts.
func (c *Client) Check(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}
