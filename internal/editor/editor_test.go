package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"invitecraft/internal/autosave"
	"invitecraft/internal/models"
	"invitecraft/internal/mutation"
	"invitecraft/internal/resources"
	"invitecraft/internal/schema"
)

// manualTimer and manualScheduler let tests fire the debounce timer
// explicitly.
type manualTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) autosave.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

// fire runs the newest pending timer, if any.
func (s *manualScheduler) fire() {
	s.mu.Lock()
	var t *manualTimer
	for i := len(s.timers) - 1; i >= 0; i-- {
		s.timers[i].mu.Lock()
		live := !s.timers[i].stopped
		s.timers[i].mu.Unlock()
		if live {
			t = s.timers[i]
			break
		}
	}
	s.mu.Unlock()
	if t != nil {
		t.Stop()
		t.f()
	}
}

type memStore struct {
	mu    sync.Mutex
	docs  map[uuid.UUID]*models.Document
	saves []*models.Document
	fail  int

	// When gate is set, SaveDocument reports on started and then waits
	// for a value on gate before completing.
	started chan string
	gate    chan struct{}
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[uuid.UUID]*models.Document)}
}

func (m *memStore) FindDocument(_ context.Context, id uuid.UUID) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[id].Clone(), nil
}

func (m *memStore) CreateDocument(_ context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[uuid.MustParse(doc.ID)] = doc.Clone()
	return nil
}

func (m *memStore) SaveDocument(_ context.Context, doc *models.Document) error {
	if m.gate != nil {
		m.started <- doc.Name
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail > 0 {
		m.fail--
		return errors.New("backend unavailable")
	}
	m.docs[uuid.MustParse(doc.ID)] = doc.Clone()
	m.saves = append(m.saves, doc.Clone())
	return nil
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

type memDrafts struct {
	mu     sync.Mutex
	drafts map[string]*models.Document
}

func newMemDrafts() *memDrafts {
	return &memDrafts{drafts: make(map[string]*models.Document)}
}

func (d *memDrafts) PutDraft(_ context.Context, doc *models.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drafts[doc.ID] = doc.Clone()
	return nil
}

func (d *memDrafts) GetDraft(_ context.Context, id string) (*models.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.drafts[id].Clone(), nil
}

func (d *memDrafts) DeleteDraft(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.drafts, id)
	return nil
}

func (d *memDrafts) has(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.drafts[id]
	return ok
}

type memRevisions struct {
	mu     sync.Mutex
	labels []string
	docs   []*models.Document
}

func (r *memRevisions) RecordRevision(_ context.Context, doc *models.Document, label string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = append(r.labels, label)
	r.docs = append(r.docs, doc.Clone())
	return nil
}

func seqIDs(ids ...string) mutation.IDFactory {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

type fixture struct {
	store     *memStore
	drafts    *memDrafts
	revisions *memRevisions
	sched     *manualScheduler
	bus       *Bus
	manager   *Manager
}

func newFixture(ids ...string) *fixture {
	f := &fixture{
		store:     newMemStore(),
		drafts:    newMemDrafts(),
		revisions: &memRevisions{},
		sched:     &manualScheduler{},
		bus:       NewBus(),
	}
	opts := Options{
		Registry:  schema.Default(),
		Scheduler: f.sched,
		Bus:       f.bus,
		Drafts:    f.drafts,
		Revisions: f.revisions,
	}
	if len(ids) > 0 {
		opts.NewID = seqIDs(ids...)
	}
	f.manager = NewManager(f.store, opts)
	return f
}

func (f *fixture) create(t *testing.T) *Session {
	t.Helper()
	s, err := f.manager.Create(context.Background(), "Anna & Ben", "wedding")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return s
}

func TestHeroScenario(t *testing.T) {
	f := newFixture("hero-1")
	s := f.create(t)

	_, heroID, err := s.AddSection("hero")
	if err != nil {
		t.Fatalf("AddSection: %v", err)
	}
	s.SetProperty(heroID, "title", "Our Wedding")
	if got := s.Status(); got != autosave.StatusUnsaved {
		t.Fatalf("status before debounce = %q, want unsaved", got)
	}

	f.sched.fire()

	if got := s.Status(); got != autosave.StatusSaved {
		t.Fatalf("status after save = %q, want saved", got)
	}
	doc := s.Document()
	if len(doc.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(doc.Sections))
	}
	sec := doc.Sections[0]
	if sec.Type != "hero" || sec.Order != 0 || !sec.Visible || sec.Properties["title"] != "Our Wedding" {
		t.Errorf("unexpected section: %+v", sec)
	}
	if f.store.saveCount() != 1 {
		t.Errorf("saves = %d, want 1", f.store.saveCount())
	}
	if len(f.revisions.labels) != 1 || !models.Equal(f.revisions.docs[0], doc) {
		t.Errorf("revisions = %v", f.revisions.labels)
	}
}

func TestStructuralNoOpIsNotRecorded(t *testing.T) {
	f := newFixture("a")
	s := f.create(t)
	_, id, _ := s.AddSection("story")
	if err := s.Save(context.Background()); err != nil {
		t.Fatal(err)
	}

	var changes int
	f.bus.Subscribe(DocumentChanged, func(context.Context, Event) error {
		changes++
		return nil
	})
	entries, _ := s.History()

	before := s.Document()
	after := s.SetProperty(id, "title", before.Sections[0].Properties["title"])
	if after != before {
		t.Error("no-op should return the current document")
	}
	s.RemoveSection("missing")
	s.SetSectionVisibility("missing", false)

	if s.Status() != autosave.StatusSaved {
		t.Errorf("status = %q, want saved", s.Status())
	}
	if changes != 0 {
		t.Errorf("DocumentChanged published %d times", changes)
	}
	if got, _ := s.History(); len(got) != len(entries) {
		t.Errorf("history grew from %d to %d", len(entries), len(got))
	}
}

func TestUndoRedoThroughSession(t *testing.T) {
	f := newFixture("a", "b")
	s := f.create(t)
	initial := s.Document()

	s.AddSection("hero")
	s.AddSection("story")
	state := s.State()
	if !state.CanUndo || state.CanRedo {
		t.Fatalf("state = %+v", state)
	}

	s.Undo()
	doc, err := s.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !models.Equal(doc, initial) {
		t.Errorf("two undos should return to the initial document")
	}
	if _, err := s.Undo(); err == nil {
		t.Error("undo past the beginning should fail")
	}

	doc, _ = s.Redo()
	if len(doc.Sections) != 1 {
		t.Errorf("redo = %d sections, want 1", len(doc.Sections))
	}

	s.Rename("Renamed")
	if s.State().CanRedo {
		t.Error("a new change after undo must clear redo")
	}
}

func TestRestoreVersion(t *testing.T) {
	f := newFixture("a", "b", "c")
	s := f.create(t)
	s.AddSection("hero")
	s.AddSection("story")
	s.AddSection("rsvp")

	doc, err := s.RestoreVersion(2)
	if err != nil {
		t.Fatalf("RestoreVersion: %v", err)
	}
	if len(doc.Sections) != 1 {
		t.Errorf("restored %d sections, want 1", len(doc.Sections))
	}
	if _, err := s.RestoreVersion(42); err == nil {
		t.Error("out of range restore should fail")
	}
}

func TestDuplicateIDIsRejected(t *testing.T) {
	f := newFixture("same")
	s := f.create(t)
	if _, _, err := s.AddSection("hero"); err != nil {
		t.Fatal(err)
	}
	before := s.Document()
	doc, id, err := s.AddSection("story")
	if !errors.Is(err, mutation.ErrDuplicateSectionID) {
		t.Fatalf("err = %v, want ErrDuplicateSectionID", err)
	}
	if id != "" || doc != before {
		t.Error("rejected add must leave the document unchanged")
	}
}

func TestFailedSaveWritesDraftAndSuccessClearsIt(t *testing.T) {
	f := newFixture("a")
	s := f.create(t)
	f.store.fail = 1

	var statuses []autosave.Status
	f.bus.Subscribe(StatusChanged, func(_ context.Context, ev Event) error {
		statuses = append(statuses, ev.Status)
		return nil
	})

	s.AddSection("hero")
	f.sched.fire()
	if s.Status() != autosave.StatusUnsaved || s.LastSaveError() == nil {
		t.Fatalf("status = %q err = %v", s.Status(), s.LastSaveError())
	}
	if !f.drafts.has(s.ID()) {
		t.Fatal("failed save should leave a draft")
	}

	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.Status() != autosave.StatusSaved {
		t.Errorf("status = %q, want saved", s.Status())
	}
	if f.drafts.has(s.ID()) {
		t.Error("successful save should delete the draft")
	}

	want := []autosave.Status{
		autosave.StatusUnsaved, autosave.StatusSaving, autosave.StatusUnsaved,
		autosave.StatusSaving, autosave.StatusSaved,
	}
	if len(statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("statuses = %v, want %v", statuses, want)
		}
	}
}

func TestOpenResumesDraft(t *testing.T) {
	f := newFixture("a")
	s := f.create(t)
	id := uuid.MustParse(s.ID())
	f.store.fail = 1
	s.AddSection("hero")
	f.sched.fire()
	draft := s.Document()

	// Simulate a restart: drop the session without flushing.
	f.manager.mu.Lock()
	delete(f.manager.sessions, id)
	f.manager.mu.Unlock()

	reopened, err := f.manager.Open(context.Background(), id)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened == s {
		t.Fatal("expected a fresh session")
	}
	if !models.Equal(reopened.Document(), draft) {
		t.Error("reopened session should resume the draft")
	}
	if reopened.Status() != autosave.StatusUnsaved {
		t.Errorf("status = %q, want unsaved", reopened.Status())
	}
	if reopened.State().CanUndo {
		t.Error("a resumed draft starts a fresh history")
	}
}

func TestOpenDropsStaleDraft(t *testing.T) {
	f := newFixture()
	s := f.create(t)
	id := uuid.MustParse(s.ID())
	f.drafts.PutDraft(context.Background(), s.Document())
	f.manager.Close(context.Background(), id)

	reopened, err := f.manager.Open(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Status() != autosave.StatusSaved {
		t.Errorf("status = %q, want saved", reopened.Status())
	}
	if f.drafts.has(s.ID()) {
		t.Error("a draft equal to the stored document should be deleted")
	}
}

func TestManagerOpen(t *testing.T) {
	f := newFixture()
	if _, err := f.manager.Open(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	s := f.create(t)
	id := uuid.MustParse(s.ID())
	again, err := f.manager.Open(context.Background(), id)
	if err != nil || again != s {
		t.Errorf("Open of an open template should return the same session")
	}
	if f.manager.Len() != 1 {
		t.Errorf("Len = %d, want 1", f.manager.Len())
	}
}

func TestManagerCloseFlushes(t *testing.T) {
	f := newFixture("a")
	s := f.create(t)
	s.AddSection("gallery")

	if err := f.manager.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if f.store.saveCount() != 1 {
		t.Errorf("saves = %d, want 1", f.store.saveCount())
	}
	if f.manager.Len() != 0 {
		t.Errorf("Len = %d after shutdown", f.manager.Len())
	}
	stored, _ := f.store.FindDocument(context.Background(), uuid.MustParse(s.ID()))
	if len(stored.Sections) != 1 {
		t.Errorf("stored sections = %d, want 1", len(stored.Sections))
	}
}

// blockSaves makes every subsequent save wait for release.
func (f *fixture) blockSaves() {
	f.store.started = make(chan string, 8)
	f.store.gate = make(chan struct{})
}

func (f *fixture) waitSaveStarted(t *testing.T) string {
	t.Helper()
	select {
	case name := <-f.store.started:
		return name
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a save to start")
		return ""
	}
}

func TestCloseWaitsForRunningSave(t *testing.T) {
	f := newFixture()
	s := f.create(t)
	f.blockSaves()

	s.Rename("first")
	saveDone := make(chan error, 1)
	go func() { saveDone <- s.Save(context.Background()) }()
	if got := f.waitSaveStarted(t); got != "first" {
		t.Fatalf("first save got %q", got)
	}
	s.Rename("second")

	closeDone := make(chan error, 1)
	go func() { closeDone <- s.Close(context.Background()) }()

	f.store.gate <- struct{}{}
	if got := f.waitSaveStarted(t); got != "second" {
		t.Fatalf("follow-up save got %q, want second", got)
	}
	f.store.gate <- struct{}{}

	for _, ch := range []chan error{saveDone, closeDone} {
		select {
		case err := <-ch:
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for Save and Close")
		}
	}

	stored, _ := f.store.FindDocument(context.Background(), uuid.MustParse(s.ID()))
	if stored.Name != "second" {
		t.Errorf("stored name = %q, want second", stored.Name)
	}
	if s.Status() != autosave.StatusSaved {
		t.Errorf("status = %s, want saved", s.Status())
	}
}

func TestCloseReportsUnsavedAndKeepsDraft(t *testing.T) {
	f := newFixture()
	s := f.create(t)
	f.store.fail = 5

	s.Rename("offline edit")
	err := s.Close(context.Background())
	if err == nil {
		t.Fatal("Close should report that the changes were not persisted")
	}
	if !f.drafts.has(s.ID()) {
		t.Error("Close should keep the unsaved document as a draft")
	}
	if s.Status() != autosave.StatusUnsaved {
		t.Errorf("status = %s, want unsaved", s.Status())
	}
}

func TestUpdateMetaIsOneChange(t *testing.T) {
	f := newFixture()
	s := f.create(t)
	name, cat := "Summer wedding", "garden"
	doc := s.UpdateMeta(Meta{Name: &name, Category: &cat})
	if doc.Name != name || doc.Category != cat || doc.EventType != "wedding" {
		t.Errorf("doc = %+v", doc)
	}
	if entries, _ := s.History(); len(entries) != 2 {
		t.Errorf("history entries = %d, want 2", len(entries))
	}
}

func TestRestoreSnapshotIsRecorded(t *testing.T) {
	f := newFixture("a", "b")
	s := f.create(t)
	s.AddSection("hero")
	snapshot := s.Document()
	s.AddSection("story")

	doc := s.RestoreSnapshot(snapshot, "Restore revision")
	if !models.Equal(doc, snapshot) {
		t.Error("restored document differs from snapshot")
	}
	entries, _ := s.History()
	if entries[0].Label != "Restore revision" {
		t.Errorf("newest label = %q", entries[0].Label)
	}
}

func TestBus(t *testing.T) {
	b := NewBus()
	var got []string
	unsub := b.Subscribe(DocumentChanged, func(_ context.Context, ev Event) error {
		got = append(got, ev.Label)
		return nil
	})
	b.Subscribe(DocumentChanged, func(context.Context, Event) error {
		return errors.New("handler failed")
	})

	err := b.Publish(context.Background(), Event{Type: DocumentChanged, Label: "one"})
	if err == nil {
		t.Error("expected joined handler error")
	}
	unsub()
	b.Publish(context.Background(), Event{Type: DocumentChanged, Label: "two"})
	b.Publish(context.Background(), Event{Type: StatusChanged, Label: "three"})

	if len(got) != 1 || got[0] != "one" {
		t.Errorf("got = %v", got)
	}

	var nilBus *Bus
	if err := nilBus.Publish(context.Background(), Event{}); err != nil {
		t.Errorf("nil bus Publish = %v", err)
	}
}

func TestWarmCritical(t *testing.T) {
	f := newFixture("hero-1")
	loaded := make(chan string, 16)
	loader := resources.NewLoader(resources.PreloaderFunc(func(_ context.Context, it resources.Item) error {
		loaded <- it.URL
		return nil
	}))
	unsub := WarmCritical(f.bus, loader, schema.Default(), resources.WithFontURL(func(string) string { return "" }))
	defer unsub()

	s := f.create(t)
	_, id, _ := s.AddSection("hero")
	s.SetProperty(id, "backgroundImage", "https://cdn.example.com/hero.jpg")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case u := <-loaded:
			if u == "https://cdn.example.com/hero.jpg" {
				return
			}
		case <-deadline:
			t.Fatal("critical hero image was not preloaded")
		}
	}
}
