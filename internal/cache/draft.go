// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// draft.go provides a Valkey-backed store for unsaved documents.
// When a save fails the editing session writes its current document here,
// and the next time the template is opened the draft is offered back.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"invitecraft/internal/models"
)

const (
	// draftKeyPrefix is the Valkey key prefix for drafts.
	draftKeyPrefix = "draft:"

	// DefaultDraftTTL is how long an unsaved draft survives.
	DefaultDraftTTL = 72 * time.Hour
)

// DraftCache keeps one draft per template in Valkey.
type DraftCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftCache creates a draft cache backed by the given Valkey client.
func NewDraftCache(client *redis.Client, ttl time.Duration) *DraftCache {
	if ttl == 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftCache{client: client, ttl: ttl}
}

// DraftKey returns the Valkey key of a template's draft.
func DraftKey(templateID string) string {
	return draftKeyPrefix + templateID
}

// PutDraft stores doc as the draft of its template, replacing any older one.
func (dc *DraftCache) PutDraft(ctx context.Context, doc *models.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := dc.client.Set(ctx, DraftKey(doc.ID), data, dc.ttl).Err(); err != nil {
		return fmt.Errorf("put draft %s: %w", doc.ID, err)
	}
	slog.Debug("draft stored", "template", doc.ID, "bytes", len(data))
	return nil
}

// GetDraft returns the draft of a template. Returns nil if there is none.
func (dc *DraftCache) GetDraft(ctx context.Context, templateID string) (*models.Document, error) {
	data, err := dc.client.Get(ctx, DraftKey(templateID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get draft %s: %w", templateID, err)
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", templateID, err)
	}
	return &doc, nil
}

// DeleteDraft removes the draft of a template. Deleting a missing draft is not an error.
func (dc *DraftCache) DeleteDraft(ctx context.Context, templateID string) error {
	if err := dc.client.Del(ctx, DraftKey(templateID)).Err(); err != nil {
		return fmt.Errorf("delete draft %s: %w", templateID, err)
	}
	return nil
}

// Purge removes every draft by scanning for the prefix and returns how many
// were deleted.
func (dc *DraftCache) Purge(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := dc.client.Scan(ctx, cursor, draftKeyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan drafts: %w", err)
		}
		if len(keys) > 0 {
			if err := dc.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, fmt.Errorf("delete drafts: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("drafts purged", "deleted", deleted)
	}
	return deleted, nil
}
