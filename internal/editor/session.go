// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor binds the mutation engine, autosave tracker, history and
// resource extraction into one editing session per open template, and
// manages the set of open sessions.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"invitecraft/internal/autosave"
	"invitecraft/internal/history"
	"invitecraft/internal/models"
	"invitecraft/internal/mutation"
	"invitecraft/internal/resources"
	"invitecraft/internal/schema"
)

// sideEffectTimeout bounds draft and revision writes triggered by a save.
const sideEffectTimeout = 5 * time.Second

// DraftStore keeps the latest unsaved document outside the primary store so
// that edits survive a failing backend.
type DraftStore interface {
	PutDraft(ctx context.Context, doc *models.Document) error
	GetDraft(ctx context.Context, templateID string) (*models.Document, error)
	DeleteDraft(ctx context.Context, templateID string) error
}

// RevisionWriter records a persisted revision after a successful save.
type RevisionWriter interface {
	RecordRevision(ctx context.Context, doc *models.Document, label string) error
}

// Options are shared by every session a Manager opens.
type Options struct {
	Registry     *schema.Registry
	NewID        mutation.IDFactory
	Delay        time.Duration
	HistoryLimit int
	Scheduler    autosave.Scheduler
	Bus          *Bus
	Drafts       DraftStore
	Revisions    RevisionWriter
	Extract      []resources.ExtractOption
}

func (o Options) withDefaults() Options {
	if o.Registry == nil {
		o.Registry = schema.Default()
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Delay <= 0 {
		o.Delay = autosave.DefaultDelay
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = history.DefaultLimit
	}
	return o
}

// State is the externally visible state of a session.
type State struct {
	Document *models.Document `json:"document"`
	Status   autosave.Status  `json:"status"`
	CanUndo  bool             `json:"canUndo"`
	CanRedo  bool             `json:"canRedo"`
	Digest   string           `json:"digest"`
}

// Session is the editing state of one template. Mutations are serialised;
// reads never block on a running save.
type Session struct {
	id      string
	opts    Options
	hist    *history.History
	tracker *autosave.Tracker

	// op serialises mutations end to end, including the tracker update.
	op sync.Mutex

	mu  sync.RWMutex
	doc *models.Document
}

// NewSession starts a session whose persisted state is saved. When current
// differs from saved (a recovered draft), the session starts Unsaved.
func NewSession(saver autosave.Saver, saved, current *models.Document, opts Options) *Session {
	opts = opts.withDefaults()
	if current == nil {
		current = saved
	}
	doc := mutation.Normalize(current)
	s := &Session{
		id:   saved.ID,
		opts: opts,
		doc:  doc,
		hist: history.New(doc, history.WithLimit(opts.HistoryLimit)),
	}

	trackerOpts := []autosave.Option{
		autosave.WithDelay(opts.Delay),
		autosave.WithListener(s.onStatus),
	}
	if opts.Scheduler != nil {
		trackerOpts = append(trackerOpts, autosave.WithScheduler(opts.Scheduler))
	}
	s.tracker = autosave.NewTracker(saver, saved, trackerOpts...)
	s.tracker.Observe(doc)
	return s
}

// ID returns the template id.
func (s *Session) ID() string { return s.id }

// Document returns the current snapshot. It must not be modified.
func (s *Session) Document() *models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// State returns the document together with save status and history
// affordances.
func (s *Session) State() State {
	doc := s.Document()
	return State{
		Document: doc,
		Status:   s.tracker.Status(),
		CanUndo:  s.hist.CanUndo(),
		CanRedo:  s.hist.CanRedo(),
		Digest:   doc.Digest(),
	}
}

// Status returns the save status.
func (s *Session) Status() autosave.Status { return s.tracker.Status() }

// LastSaveError returns the error of the latest failed save, if any.
func (s *Session) LastSaveError() error { return s.tracker.LastError() }

// History returns the undo timeline, newest first, and the current position.
func (s *Session) History() ([]history.Entry, int) {
	return s.hist.Entries(), s.hist.Position()
}

// Meta carries optional metadata updates. Nil fields are left unchanged.
type Meta struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	EventType   *string `json:"eventType,omitempty"`
}

// Rename changes the display name.
func (s *Session) Rename(name string) *models.Document {
	return s.UpdateMeta(Meta{Name: &name})
}

// UpdateMeta applies every non-nil field of m as one change.
func (s *Session) UpdateMeta(m Meta) *models.Document {
	doc, _ := s.apply("Edit details", func(d *models.Document) (*models.Document, error) {
		if m.Name != nil {
			d = mutation.Rename(d, *m.Name)
		}
		if m.Description != nil {
			d = mutation.SetDescription(d, *m.Description)
		}
		if m.Category != nil {
			d = mutation.SetCategory(d, *m.Category)
		}
		if m.EventType != nil {
			d = mutation.SetEventType(d, *m.EventType)
		}
		return d, nil
	})
	return doc
}

// ReplaceTheme swaps the whole theme.
func (s *Session) ReplaceTheme(theme models.Theme) *models.Document {
	doc, _ := s.apply("Change theme", func(d *models.Document) (*models.Document, error) {
		return mutation.ReplaceTheme(d, theme), nil
	})
	return doc
}

// SetThemeColor changes one theme color role.
func (s *Session) SetThemeColor(role models.ColorRole, value string) *models.Document {
	doc, _ := s.apply("Change "+string(role)+" color", func(d *models.Document) (*models.Document, error) {
		return mutation.SetThemeColor(d, role, value), nil
	})
	return doc
}

// SetThemeFont changes one theme font role.
func (s *Session) SetThemeFont(role models.FontRole, family string) *models.Document {
	doc, _ := s.apply("Change "+string(role)+" font", func(d *models.Document) (*models.Document, error) {
		return mutation.SetThemeFont(d, role, family), nil
	})
	return doc
}

// AddSection appends a section of the given type with schema defaults and
// returns its id.
func (s *Session) AddSection(sectionType string) (*models.Document, string, error) {
	var id string
	doc, err := s.apply("Add "+sectionType, func(d *models.Document) (*models.Document, error) {
		next, newID, err := mutation.AddSection(d, s.opts.Registry, sectionType, s.opts.NewID)
		id = newID
		return next, err
	})
	return doc, id, err
}

// DuplicateSection copies a section directly after itself. The returned id
// is empty when the section does not exist.
func (s *Session) DuplicateSection(id string) (*models.Document, string, error) {
	var newID string
	doc, err := s.apply("Duplicate section", func(d *models.Document) (*models.Document, error) {
		next, nid, err := mutation.DuplicateSection(d, id, s.opts.NewID)
		newID = nid
		return next, err
	})
	return doc, newID, err
}

// RemoveSection deletes a section.
func (s *Session) RemoveSection(id string) *models.Document {
	doc, _ := s.apply("Remove section", func(d *models.Document) (*models.Document, error) {
		return mutation.RemoveSection(d, id), nil
	})
	return doc
}

// ReorderSections rearranges sections to follow ids.
func (s *Session) ReorderSections(ids []string) *models.Document {
	doc, _ := s.apply("Reorder sections", func(d *models.Document) (*models.Document, error) {
		return mutation.ReorderSections(d, ids), nil
	})
	return doc
}

// MoveSection shifts a section by delta positions.
func (s *Session) MoveSection(id string, delta int) *models.Document {
	doc, _ := s.apply("Move section", func(d *models.Document) (*models.Document, error) {
		return mutation.MoveSection(d, id, delta), nil
	})
	return doc
}

// SetSectionVisibility shows or hides a section.
func (s *Session) SetSectionVisibility(id string, visible bool) *models.Document {
	label := "Hide section"
	if visible {
		label = "Show section"
	}
	doc, _ := s.apply(label, func(d *models.Document) (*models.Document, error) {
		return mutation.SetSectionVisibility(d, id, visible), nil
	})
	return doc
}

// SetProperty sets one property of a section.
func (s *Session) SetProperty(sectionID, name string, value any) *models.Document {
	doc, _ := s.apply("Edit "+name, func(d *models.Document) (*models.Document, error) {
		return mutation.SetProperty(d, sectionID, name, value), nil
	})
	return doc
}

// RestoreSnapshot replaces the content with snapshot. It is an ordinary
// change: recorded in history and autosaved.
func (s *Session) RestoreSnapshot(snapshot *models.Document, label string) *models.Document {
	doc, _ := s.apply(label, func(d *models.Document) (*models.Document, error) {
		return mutation.RestoreSnapshot(d, snapshot), nil
	})
	return doc
}

// Undo steps back one history entry.
func (s *Session) Undo() (*models.Document, error) {
	return s.travel("Undo", s.hist.Undo)
}

// Redo steps forward one history entry.
func (s *Session) Redo() (*models.Document, error) {
	return s.travel("Redo", s.hist.Redo)
}

// RestoreVersion jumps to a history entry by index.
func (s *Session) RestoreVersion(index int) (*models.Document, error) {
	return s.travel("Restore version", func() (*models.Document, error) {
		return s.hist.Restore(index)
	})
}

// Save persists pending changes immediately.
func (s *Session) Save(ctx context.Context) error {
	return s.tracker.SaveNow(ctx)
}

// Resources lists the media referenced by the current document.
func (s *Session) Resources(extra ...resources.ExtractOption) []resources.Item {
	opts := append(append([]resources.ExtractOption(nil), s.opts.Extract...), extra...)
	return resources.Extract(s.Document(), s.opts.Registry, opts...)
}

// Close waits for a running save, flushes pending changes and stops
// autosave. When the document cannot be persisted it is kept as a draft and
// the error is returned. The session must not be used afterwards.
func (s *Session) Close(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()
	err := s.tracker.Flush(ctx)
	s.tracker.Close()
	if err == nil {
		return nil
	}
	if s.opts.Drafts != nil {
		dctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if derr := s.opts.Drafts.PutDraft(dctx, s.Document()); derr != nil {
			slog.Warn("draft write failed", "template_id", s.id, "error", derr)
		}
	}
	return fmt.Errorf("unsaved changes: %w", err)
}

// apply runs fn against the current document and commits the result. A
// result equal to the current document is not recorded and publishes
// nothing. An error from fn leaves the session unchanged.
func (s *Session) apply(label string, fn func(*models.Document) (*models.Document, error)) (*models.Document, error) {
	s.op.Lock()
	defer s.op.Unlock()

	current := s.Document()
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	if next == current || models.Equal(next, current) {
		return current, nil
	}
	s.commit(next)
	s.hist.Record(next, label)
	s.tracker.Observe(next)
	s.publish(Event{Type: DocumentChanged, Label: label, Document: next})
	return next, nil
}

// travel moves through history. History navigation is not itself recorded.
func (s *Session) travel(label string, step func() (*models.Document, error)) (*models.Document, error) {
	s.op.Lock()
	defer s.op.Unlock()

	next, err := step()
	if err != nil {
		return s.Document(), err
	}
	s.commit(next)
	s.tracker.Observe(next)
	s.publish(Event{Type: DocumentChanged, Label: label, Document: next})
	return next, nil
}

func (s *Session) commit(doc *models.Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

func (s *Session) publish(ev Event) {
	ev.TemplateID = s.id
	if err := s.opts.Bus.Publish(context.Background(), ev); err != nil {
		slog.Warn("event handler failed", "template_id", s.id, "event", ev.Type, "error", err)
	}
}

// onStatus keeps drafts and revisions in step with save outcomes and
// republishes the transition. It runs in the goroutine that performed the
// save.
func (s *Session) onStatus(status autosave.Status, saved *models.Document, saveErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	switch {
	case saveErr != nil && s.opts.Drafts != nil:
		if err := s.opts.Drafts.PutDraft(ctx, s.Document()); err != nil {
			slog.Warn("draft write failed", "template_id", s.id, "error", err)
		}
	case saved != nil:
		if s.opts.Drafts != nil {
			if err := s.opts.Drafts.DeleteDraft(ctx, s.id); err != nil {
				slog.Warn("draft delete failed", "template_id", s.id, "error", err)
			}
		}
		if s.opts.Revisions != nil {
			if err := s.opts.Revisions.RecordRevision(ctx, saved, "Saved"); err != nil {
				slog.Warn("revision write failed", "template_id", s.id, "error", err)
			}
		}
	}

	s.publish(Event{Type: StatusChanged, Status: status, Err: saveErr})
}
