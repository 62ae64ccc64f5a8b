package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/intellidetect/dashboard/pkg/domain"
)

// CreateAccident records a new accident and returns the server's copy.
func (c *Client) CreateAccident(ctx context.Context, in domain.AccidentInput) (*domain.Accident, error) {
	var a domain.Accident
	if err := c.post(ctx, "/accidents", in, &a); err != nil {
		return nil, fmt.Errorf("client.CreateAccident: %w", err)
	}
	return &a, nil
}

// UpdateAccidentDisplay replaces the display text shown for an accident.
func (c *Client) UpdateAccidentDisplay(ctx context.Context, id int64, displayInfo string) (*domain.Accident, error) {
	var a domain.Accident
	body := map[string]string{"displayInfo": displayInfo}
	if err := c.put(ctx, "/accidents/"+strconv.FormatInt(id, 10)+"/display", body, &a); err != nil {
		return nil, fmt.Errorf("client.UpdateAccidentDisplay: %w", err)
	}
	return &a, nil
}

// ListAccidents fetches one page of accidents. Non-positive page or size fall
// back to 1 and 10.
func (c *Client) ListAccidents(ctx context.Context, page, size int) (*domain.Page[domain.Accident], error) {
	var p domain.Page[domain.Accident]
	if err := c.get(ctx, "/accidents", pageQuery(page, size), &p); err != nil {
		return nil, fmt.Errorf("client.ListAccidents: %w", err)
	}
	c.checkPage("/accidents", p.Validate())
	return &p, nil
}

// GetAccident fetches a single accident by ID.
func (c *Client) GetAccident(ctx context.Context, id int64) (*domain.Accident, error) {
	var a domain.Accident
	if err := c.get(ctx, "/accidents/"+strconv.FormatInt(id, 10), nil, &a); err != nil {
		return nil, fmt.Errorf("client.GetAccident: %w", err)
	}
	return &a, nil
}

// AccidentStats returns aggregate accident counters.
func (c *Client) AccidentStats(ctx context.Context) (*domain.AccidentStats, error) {
	var s domain.AccidentStats
	if err := c.get(ctx, "/accidents/stats", nil, &s); err != nil {
		return nil, fmt.Errorf("client.AccidentStats: %w", err)
	}
	return &s, nil
}

// checkPage logs a page that breaks the records-within-size invariant. The
// records are still returned.
func (c *Client) checkPage(path string, err error) {
	if err != nil {
		c.log.Warn().Err(err).Str("service", c.baseURL).Str("path", path).Msg("server returned an oversized page")
	}
}

func pageQuery(page, size int) url.Values {
	page, size = domain.NormalizePaging(page, size)
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	return params
}
