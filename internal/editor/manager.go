// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"invitecraft/internal/autosave"
	"invitecraft/internal/models"
	"invitecraft/internal/mutation"
)

// ErrNotFound is returned when a template does not exist.
var ErrNotFound = errors.New("template not found")

// TemplateStore is the persistence collaborator. FindDocument returns
// (nil, nil) when the template does not exist.
type TemplateStore interface {
	FindDocument(ctx context.Context, id uuid.UUID) (*models.Document, error)
	CreateDocument(ctx context.Context, doc *models.Document) error
	SaveDocument(ctx context.Context, doc *models.Document) error
}

// Manager owns the open editing sessions, at most one per template.
type Manager struct {
	store TemplateStore
	opts  Options

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a manager backed by store.
func NewManager(store TemplateStore, opts Options) *Manager {
	return &Manager{
		store:    store,
		opts:     opts.withDefaults(),
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Options returns the options sessions are created with.
func (m *Manager) Options() Options { return m.opts }

// Open returns the session of a template, loading it on first use. A draft
// left behind by a failed save is resumed in the Unsaved state.
func (m *Manager) Open(ctx context.Context, id uuid.UUID) (*Session, error) {
	if s, ok := m.Lookup(id); ok {
		return s, nil
	}

	saved, err := m.store.FindDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", id, err)
	}
	if saved == nil {
		return nil, ErrNotFound
	}
	if err := mutation.Validate(saved); err != nil {
		return nil, fmt.Errorf("load template %s: %w", id, err)
	}

	current := m.recoverDraft(ctx, saved)
	s := NewSession(m.saver(), saved, current, m.opts)

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		// Lost the race to another opener; discard ours without saving.
		s.tracker.Close()
		return existing, nil
	}
	m.sessions[id] = s
	m.mu.Unlock()

	slog.Info("editing session opened", "template_id", id, "status", s.Status())
	return s, nil
}

// Create persists a new empty template and opens a session for it.
func (m *Manager) Create(ctx context.Context, name, eventType string) (*Session, error) {
	id := uuid.New()
	doc := models.NewDocument(id.String(), name)
	doc.EventType = eventType

	if err := m.store.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	s := NewSession(m.saver(), doc, nil, m.opts)
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	slog.Info("template created", "template_id", id, "name", name)
	return s, nil
}

// Lookup returns an already open session.
func (m *Manager) Lookup(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close flushes and closes the session of a template. Closing a template
// that is not open is a no-op.
func (m *Manager) Close(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	if err := s.Close(ctx); err != nil {
		return fmt.Errorf("close template %s: %w", id, err)
	}
	return nil
}

// Shutdown closes every open session, flushing pending changes.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := m.Close(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) saver() autosave.Saver {
	return autosave.SaverFunc(m.store.SaveDocument)
}

// recoverDraft returns the draft of saved when one exists and differs from
// it, and saved otherwise. Draft errors only cost the recovery.
func (m *Manager) recoverDraft(ctx context.Context, saved *models.Document) *models.Document {
	if m.opts.Drafts == nil {
		return saved
	}
	draft, err := m.opts.Drafts.GetDraft(ctx, saved.ID)
	if err != nil {
		slog.Warn("draft read failed", "template_id", saved.ID, "error", err)
		return saved
	}
	if draft == nil {
		return saved
	}
	if draft.ID != saved.ID || mutation.Validate(draft) != nil || models.Equal(draft, saved) {
		if err := m.opts.Drafts.DeleteDraft(ctx, saved.ID); err != nil {
			slog.Warn("draft delete failed", "template_id", saved.ID, "error", err)
		}
		return saved
	}
	slog.Info("resuming unsaved draft", "template_id", saved.ID)
	return draft
}
