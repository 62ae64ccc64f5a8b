package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/intellidetect/dashboard/pkg/domain"
)

// RealtimeDetections returns the latest detections from the camera pipeline.
func (c *Client) RealtimeDetections(ctx context.Context) ([]domain.Detection, error) {
	var ds []domain.Detection
	if err := c.get(ctx, "/detections/realtime", nil, &ds); err != nil {
		return nil, fmt.Errorf("client.RealtimeDetections: %w", err)
	}
	return ds, nil
}

// HistoryDetections returns detections recorded between start and end.
func (c *Client) HistoryDetections(ctx context.Context, start, end time.Time) ([]domain.Detection, error) {
	params := url.Values{}
	if !start.IsZero() {
		params.Set("startTime", start.UTC().Format(time.RFC3339))
	}
	if !end.IsZero() {
		params.Set("endTime", end.UTC().Format(time.RFC3339))
	}

	var ds []domain.Detection
	if err := c.get(ctx, "/detections/history", params, &ds); err != nil {
		return nil, fmt.Errorf("client.HistoryDetections: %w", err)
	}
	return ds, nil
}

// PostManualDetection submits an operator annotation.
func (c *Client) PostManualDetection(ctx context.Context, d domain.ManualDetection) error {
	if err := c.post(ctx, "/detections/manual", d, nil); err != nil {
		return fmt.Errorf("client.PostManualDetection: %w", err)
	}
	return nil
}
