// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package autosave tracks whether the edited document differs from the last
// persisted snapshot and drives debounced saves through a Saved / Unsaved /
// Saving state machine. At most one save is in flight at any time.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"invitecraft/internal/models"
)

// Status is the save state shown to the user.
type Status string

const (
	StatusSaved   Status = "saved"
	StatusUnsaved Status = "unsaved"
	StatusSaving  Status = "saving"
)

// ErrClosed is returned by Flush when the tracker was closed with
// unsaved changes.
var ErrClosed = errors.New("autosave: tracker closed with unsaved changes")

// DefaultDelay is the quiet period after the last edit before a save fires.
const DefaultDelay = 2 * time.Second

// Saver persists a document. Any non-nil error is treated as a failed save;
// timeouts are the saver's responsibility.
type Saver interface {
	Save(ctx context.Context, doc *models.Document) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, doc *models.Document) error

// Save calls f(ctx, doc).
func (f SaverFunc) Save(ctx context.Context, doc *models.Document) error {
	return f(ctx, doc)
}

// Listener is notified after every status transition. err is the save
// error for a Saving -> Unsaved transition and nil otherwise. saved is the
// document that was persisted for a Saving -> Saved transition.
type Listener func(status Status, saved *models.Document, err error)

// Option configures a Tracker.
type Option func(*Tracker)

// WithDelay sets the debounce window.
func WithDelay(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.delay = d
		}
	}
}

// WithScheduler replaces the timer implementation, mainly for tests.
func WithScheduler(s Scheduler) Option {
	return func(t *Tracker) { t.sched = s }
}

// WithContext sets the context passed to debounce-triggered saves.
func WithContext(ctx context.Context) Option {
	return func(t *Tracker) { t.ctx = ctx }
}

// WithListener registers a status listener.
func WithListener(l Listener) Option {
	return func(t *Tracker) { t.listeners = append(t.listeners, l) }
}

// transition is a status change queued for delivery to listeners once the
// tracker lock has been released.
type transition struct {
	status Status
	saved  *models.Document
	err    error
}

// Tracker is the dirty-tracking and autosave state machine for one document.
type Tracker struct {
	saver     Saver
	sched     Scheduler
	delay     time.Duration
	ctx       context.Context
	listeners []Listener

	mu          sync.Mutex
	status      Status
	saved       *models.Document // deep copy of the last persisted document
	pending     *models.Document // latest observed document
	inflight    *models.Document // document handed to the running save
	timer       Timer
	timerGen    uint64 // invalidates callbacks of stopped timers
	flushQueued bool   // a flush was requested while a save was in flight
	idle        chan struct{} // closed when the running save finishes
	lastErr     error
	closed      bool
}

// NewTracker starts in StatusSaved with saved as the persisted snapshot.
// saved may be nil for a document that has never been persisted.
func NewTracker(saver Saver, saved *models.Document, opts ...Option) *Tracker {
	t := &Tracker{
		saver:  saver,
		sched:  clockScheduler{},
		delay:  DefaultDelay,
		ctx:    context.Background(),
		status: StatusSaved,
		saved:  saved.Clone(),
	}
	t.pending = t.saved
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Status returns the current save status.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// LastError returns the error of the most recent failed save, cleared by
// the next successful one.
func (t *Tracker) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// SavedSnapshot returns a copy of the last persisted document.
func (t *Tracker) SavedSnapshot() *models.Document {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saved.Clone()
}

// Dirty reports whether the latest observed document differs from the
// persisted snapshot.
func (t *Tracker) Dirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !models.Equal(t.pending, t.saved)
}

// Observe records a new document state. A state that differs from the
// persisted snapshot marks the tracker Unsaved and (re)starts the debounce
// timer; a state equal to it causes no transition. While a save is running
// the state is compared against the document being saved instead, so a
// revert to the old snapshot still gets persisted once the save completes.
func (t *Tracker) Observe(doc *models.Document) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.pending = doc

	var events []transition
	switch {
	case t.status == StatusSaving:
		if models.Equal(doc, t.inflight) {
			t.stopTimerLocked()
		} else {
			t.resetTimerLocked()
		}
	case models.Equal(doc, t.saved):
		// Back at the persisted state. An Unsaved tracker still needs the
		// timer so the next firing can settle it to Saved.
		if t.status == StatusUnsaved {
			t.resetTimerLocked()
		}
	default:
		if t.status == StatusSaved {
			events = append(events, t.setStatusLocked(StatusUnsaved, nil, nil))
		}
		t.resetTimerLocked()
	}
	t.mu.Unlock()

	t.notify(events)
}

// SaveNow persists the pending document immediately, bypassing the debounce
// window. A request made while a save is already running is coalesced into
// it; if the document changed since that save started, one follow-up save
// runs once it completes.
func (t *Tracker) SaveNow(ctx context.Context) error {
	t.mu.Lock()
	if t.status == StatusSaving {
		if !models.Equal(t.pending, t.inflight) {
			t.flushQueued = true
		}
		t.mu.Unlock()
		return nil
	}
	t.stopTimerLocked()
	t.mu.Unlock()
	return t.flush(ctx)
}

// Flush waits for a running save to finish and then saves until the
// persisted snapshot matches the latest observed document. It returns the
// error of a failed save, ErrClosed for a closed tracker that is still
// dirty, or the context error if ctx ends first.
func (t *Tracker) Flush(ctx context.Context) error {
	for {
		t.mu.Lock()
		if t.status == StatusSaving {
			idle := t.idle
			t.mu.Unlock()
			select {
			case <-idle:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		t.stopTimerLocked()
		clean := models.Equal(t.pending, t.saved)
		closed := t.closed
		t.mu.Unlock()

		switch {
		case clean:
			return nil
		case closed:
			return ErrClosed
		}
		if err := t.flush(ctx); err != nil {
			return err
		}
	}
}

// Close stops the debounce timer. Pending changes are not saved; call
// Flush first to persist them.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.stopTimerLocked()
}

// fire is the debounce timer callback. Callbacks of timers that were
// stopped or replaced after they started running are ignored.
func (t *Tracker) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.timerGen {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()
	if err := t.flush(t.ctx); err != nil {
		slog.Warn("autosave failed", "error", err)
	}
}

// flush performs one save attempt if the pending document differs from the
// snapshot. It returns the save error, if any.
func (t *Tracker) flush(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	if t.status == StatusSaving {
		t.flushQueued = true
		t.mu.Unlock()
		return nil
	}

	doc := t.pending
	if models.Equal(doc, t.saved) {
		var events []transition
		if t.status == StatusUnsaved {
			events = append(events, t.setStatusLocked(StatusSaved, nil, nil))
		}
		t.mu.Unlock()
		t.notify(events)
		return nil
	}

	t.inflight = doc
	t.idle = make(chan struct{})
	t.stopTimerLocked()
	events := []transition{t.setStatusLocked(StatusSaving, nil, nil)}
	t.mu.Unlock()
	t.notify(events)

	err := t.saver.Save(ctx, doc)

	t.mu.Lock()
	t.inflight = nil
	switch {
	case err != nil && models.Equal(t.pending, t.saved):
		// Reverted to the persisted state while the save was failing, so
		// nothing is left to persist.
		t.lastErr = nil
		events = []transition{t.setStatusLocked(StatusSaved, nil, nil)}
	case err != nil:
		t.lastErr = err
		events = []transition{t.setStatusLocked(StatusUnsaved, nil, err)}
	default:
		t.lastErr = nil
		t.saved = doc.Clone()
		next := StatusSaved
		if !models.Equal(t.pending, t.saved) {
			// Edits arrived while saving; they are still pending and get
			// their own debounce cycle.
			next = StatusUnsaved
			if !t.closed {
				t.resetTimerLocked()
			}
		}
		events = []transition{t.setStatusLocked(next, t.saved, nil)}
	}
	rerun := t.flushQueued
	t.flushQueued = false
	close(t.idle)
	t.mu.Unlock()
	t.notify(events)

	if rerun {
		if rerunErr := t.flush(ctx); rerunErr != nil {
			slog.Warn("queued autosave failed", "error", rerunErr)
		}
	}
	return err
}

func (t *Tracker) setStatusLocked(s Status, saved *models.Document, err error) transition {
	slog.Debug("autosave status", "from", t.status, "to", s)
	t.status = s
	return transition{status: s, saved: saved, err: err}
}

func (t *Tracker) resetTimerLocked() {
	t.stopTimerLocked()
	gen := t.timerGen
	t.timer = t.sched.AfterFunc(t.delay, func() { t.fire(gen) })
}

func (t *Tracker) stopTimerLocked() {
	t.timerGen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Tracker) notify(events []transition) {
	for _, ev := range events {
		for _, l := range t.listeners {
			l(ev.status, ev.saved, ev.err)
		}
	}
}
