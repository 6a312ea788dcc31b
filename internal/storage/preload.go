// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"fmt"

	"invitecraft/internal/resources"
)

// ObjectPreloader warms assets that live in the media bucket with a HEAD
// request against S3 and hands every other URL to a fallback preloader.
type ObjectPreloader struct {
	client   *Client
	fallback resources.Preloader
}

// NewObjectPreloader returns a preloader over client. A nil client sends
// everything to fallback.
func NewObjectPreloader(client *Client, fallback resources.Preloader) *ObjectPreloader {
	return &ObjectPreloader{client: client, fallback: fallback}
}

// Preload implements resources.Preloader.
func (p *ObjectPreloader) Preload(ctx context.Context, item resources.Item) error {
	if p.client != nil {
		if key, ok := p.client.ExtractS3Key(item.URL); ok {
			found, err := p.client.Exists(ctx, key)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("media object %q not found", key)
			}
			return nil
		}
	}
	if p.fallback == nil {
		return fmt.Errorf("no preloader for %s", item.URL)
	}
	return p.fallback.Preload(ctx, item)
}
