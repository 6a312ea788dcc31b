// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package history keeps a linear undo/redo timeline of document snapshots.
// Entry 0 is the most recent; the position points at the entry that is
// currently shown. Recording a new state discards every entry newer than
// the position.
package history

import (
	"errors"
	"sync"
	"time"

	"invitecraft/internal/models"
)

// DefaultLimit caps the number of entries kept.
const DefaultLimit = 50

var (
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
	ErrIndexOutOfRange = errors.New("history index out of range")
)

// Entry is an immutable snapshot in the timeline.
type Entry struct {
	Snapshot  *models.Document `json:"snapshot"`
	Timestamp time.Time        `json:"timestamp"`
	Label     string           `json:"label"`
}

// Option configures a History.
type Option func(*History)

// WithLimit caps the number of retained entries. Oldest entries are evicted.
func WithLimit(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// WithClock sets the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(h *History) { h.now = now }
}

// History is safe for concurrent use.
type History struct {
	mu       sync.Mutex
	entries  []Entry // newest first
	position int
	limit    int
	now      func() time.Time
}

// New starts a timeline whose only entry is initial.
func New(initial *models.Document, opts ...Option) *History {
	h := &History{limit: DefaultLimit, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	h.entries = []Entry{{Snapshot: initial.Clone(), Timestamp: h.now(), Label: "Opened"}}
	return h
}

// Record appends doc as the newest entry unless it is structurally equal to
// the entry at the current position. Entries ahead of the position are
// dropped. It reports whether an entry was added.
func (h *History) Record(doc *models.Document, label string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if models.Equal(h.entries[h.position].Snapshot, doc) {
		return false
	}

	kept := h.entries[h.position:]
	entries := make([]Entry, 0, len(kept)+1)
	entries = append(entries, Entry{Snapshot: doc.Clone(), Timestamp: h.now(), Label: label})
	entries = append(entries, kept...)
	if len(entries) > h.limit {
		entries = entries[:h.limit]
	}
	h.entries = entries
	h.position = 0
	return true
}

// Undo steps one entry back in time and returns its snapshot.
func (h *History) Undo() (*models.Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.position+1 >= len(h.entries) {
		return nil, ErrNothingToUndo
	}
	h.position++
	return h.entries[h.position].Snapshot.Clone(), nil
}

// Redo steps one entry forward in time and returns its snapshot.
func (h *History) Redo() (*models.Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.position == 0 {
		return nil, ErrNothingToRedo
	}
	h.position--
	return h.entries[h.position].Snapshot.Clone(), nil
}

// Restore jumps to an arbitrary entry. The entries ahead of it are kept
// until the document diverges through a new Record.
func (h *History) Restore(index int) (*models.Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.entries) {
		return nil, ErrIndexOutOfRange
	}
	h.position = index
	return h.entries[index].Snapshot.Clone(), nil
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position+1 < len(h.entries)
}

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position > 0
}

// Position returns the index of the entry currently shown.
func (h *History) Position() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns the timeline, newest first. Snapshots are shared and
// must not be modified.
func (h *History) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}
