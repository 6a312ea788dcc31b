// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package resources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPPreloader warms resources by fetching them over HTTP and discarding
// the body.
type HTTPPreloader struct {
	client *http.Client
}

// NewHTTPPreloader creates a preloader with the given request timeout.
func NewHTTPPreloader(timeout time.Duration) *HTTPPreloader {
	return &HTTPPreloader{client: &http.Client{Timeout: timeout}}
}

// Preload performs a GET request for the item.
func (p *HTTPPreloader) Preload(ctx context.Context, item Item) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL, nil)
	if err != nil {
		return fmt.Errorf("create preload request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("preload %s: %w", item.URL, err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("read %s: %w", item.URL, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("preload %s: status %d", item.URL, resp.StatusCode)
	}
	return nil
}
