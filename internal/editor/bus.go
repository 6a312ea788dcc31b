// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"invitecraft/internal/autosave"
	"invitecraft/internal/models"
)

// EventType identifies what happened in a session.
type EventType string

const (
	// DocumentChanged is published after every committed change, including
	// undo, redo and restores.
	DocumentChanged EventType = "document.changed"
	// StatusChanged is published after every save status transition.
	StatusChanged EventType = "status.changed"
)

// Event carries a document snapshot or a status transition. Document must
// be treated as read-only by handlers.
type Event struct {
	Type       EventType
	TemplateID string
	Label      string
	Document   *models.Document
	Status     autosave.Status
	Err        error
}

// Handler reacts to an event. Handlers run synchronously in the publishing
// goroutine and must not call mutating Session methods.
type Handler func(ctx context.Context, ev Event) error

// Bus fans events out to subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType]map[uint64]Handler
	counter     uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[EventType]map[uint64]Handler)}
}

// Subscribe registers h for events of type t and returns a function that
// removes it.
func (b *Bus) Subscribe(t EventType, h Handler) func() {
	if h == nil {
		return func() {}
	}
	id := atomic.AddUint64(&b.counter, 1)
	b.mu.Lock()
	if b.subscribers[t] == nil {
		b.subscribers[t] = make(map[uint64]Handler)
	}
	b.subscribers[t][id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if hs, ok := b.subscribers[t]; ok {
			delete(hs, id)
			if len(hs) == 0 {
				delete(b.subscribers, t)
			}
		}
	}
}

// Publish delivers ev to every subscriber of its type and joins their
// errors. A nil bus discards events.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if b == nil {
		return nil
	}
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.subscribers[ev.Type]))
	for _, h := range b.subscribers[ev.Type] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	var errs []error
	for _, h := range hs {
		if err := h(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
