package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/intellidetect/dashboard/pkg/domain"
)

// CreateObstacle records a new obstacle and returns the server's copy.
func (c *Client) CreateObstacle(ctx context.Context, in domain.ObstacleInput) (*domain.Obstacle, error) {
	var o domain.Obstacle
	if err := c.post(ctx, "/obstacles", in, &o); err != nil {
		return nil, fmt.Errorf("client.CreateObstacle: %w", err)
	}
	return &o, nil
}

// UpdateObstacleDisplay replaces the display text shown for an obstacle.
func (c *Client) UpdateObstacleDisplay(ctx context.Context, id int64, displayInfo string) (*domain.Obstacle, error) {
	var o domain.Obstacle
	body := map[string]string{"displayInfo": displayInfo}
	if err := c.put(ctx, "/obstacles/"+strconv.FormatInt(id, 10)+"/display", body, &o); err != nil {
		return nil, fmt.Errorf("client.UpdateObstacleDisplay: %w", err)
	}
	return &o, nil
}

// ListObstacles fetches one page of obstacles.
func (c *Client) ListObstacles(ctx context.Context, page, size int) (*domain.Page[domain.Obstacle], error) {
	var p domain.Page[domain.Obstacle]
	if err := c.get(ctx, "/obstacles", pageQuery(page, size), &p); err != nil {
		return nil, fmt.Errorf("client.ListObstacles: %w", err)
	}
	c.checkPage("/obstacles", p.Validate())
	return &p, nil
}

// GetObstacle fetches a single obstacle by ID.
func (c *Client) GetObstacle(ctx context.Context, id int64) (*domain.Obstacle, error) {
	var o domain.Obstacle
	if err := c.get(ctx, "/obstacles/"+strconv.FormatInt(id, 10), nil, &o); err != nil {
		return nil, fmt.Errorf("client.GetObstacle: %w", err)
	}
	return &o, nil
}

// ObstacleStats returns aggregate obstacle counters.
func (c *Client) ObstacleStats(ctx context.Context) (*domain.ObstacleStats, error) {
	var s domain.ObstacleStats
	if err := c.get(ctx, "/obstacles/stats", nil, &s); err != nil {
		return nil, fmt.Errorf("client.ObstacleStats: %w", err)
	}
	return &s, nil
}

// HighRiskObstacles returns every obstacle graded high risk.
func (c *Client) HighRiskObstacles(ctx context.Context) ([]domain.Obstacle, error) {
	var obstacles []domain.Obstacle
	if err := c.get(ctx, "/obstacles/high-risk", nil, &obstacles); err != nil {
		return nil, fmt.Errorf("client.HighRiskObstacles: %w", err)
	}
	return obstacles, nil
}
