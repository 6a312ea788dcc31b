// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package resources

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of preloads in flight.
const DefaultConcurrency = 4

// Preloader fetches a single resource. Errors only mark the item as failed.
type Preloader interface {
	Preload(ctx context.Context, item Item) error
}

// PreloaderFunc adapts a function to the Preloader interface.
type PreloaderFunc func(ctx context.Context, item Item) error

// Preload calls f(ctx, item).
func (f PreloaderFunc) Preload(ctx context.Context, item Item) error {
	return f(ctx, item)
}

// Failure is a preload that returned an error.
type Failure struct {
	Item  Item   `json:"item"`
	Error string `json:"error"`
}

// Report summarises one scheduling pass. Issued lists items in the order
// their requests were started.
type Report struct {
	Issued   []Item    `json:"issued"`
	Deferred []Item    `json:"deferred"`
	Failed   []Failure `json:"failed"`
}

type loadState int

const (
	stateDeferred loadState = iota
	stateInflight
	stateLoaded
	stateFailed
)

type entry struct {
	item  Item
	state loadState
	err   error
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithQuality sets the network-quality signal. It is read on every
// Schedule call and never pushed.
func WithQuality(fn func() NetworkQuality) LoaderOption {
	return func(l *Loader) {
		if fn != nil {
			l.quality = fn
		}
	}
}

// WithConcurrency bounds the number of preloads in flight.
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.limit = n
		}
	}
}

// Loader issues preloads tier by tier. Every request of a tier is started
// before the first request of the next tier; completion order is not
// constrained. A resource that loaded once is not requested again.
type Loader struct {
	pre     Preloader
	quality func() NetworkQuality
	limit   int

	mu      sync.Mutex
	entries map[string]*entry
}

// NewLoader creates a loader that fetches through pre.
func NewLoader(pre Preloader, opts ...LoaderOption) *Loader {
	l := &Loader{
		pre:     pre,
		quality: func() NetworkQuality { return QualityMedium },
		limit:   DefaultConcurrency,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Quality returns the current network-quality signal.
func (l *Loader) Quality() NetworkQuality {
	return l.quality()
}

// Schedule preloads the eager tiers of items in priority order and defers
// the rest until Demand. Labels are never changed by network quality; only
// the number of eager tiers is.
func (l *Loader) Schedule(ctx context.Context, items []Item) (Report, error) {
	return l.ScheduleFor(ctx, l.quality(), items)
}

// ScheduleFor is Schedule with an explicit network quality in place of the
// configured signal.
func (l *Loader) ScheduleFor(ctx context.Context, q NetworkQuality, items []Item) (Report, error) {
	eager := q.EagerThrough()

	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	var issue, deferred []Item
	l.mu.Lock()
	for _, it := range sorted {
		e, ok := l.entries[it.URL]
		if !ok {
			e = &entry{item: it, state: stateDeferred}
			l.entries[it.URL] = e
		} else if it.Priority < e.item.Priority {
			e.item.Priority = it.Priority
		}
		if e.state == stateLoaded || e.state == stateInflight {
			continue
		}
		if it.Priority == Lazy || it.Priority > eager {
			deferred = append(deferred, it)
			continue
		}
		e.state = stateInflight
		issue = append(issue, it)
	}
	l.mu.Unlock()

	rep, err := l.run(ctx, issue)
	rep.Deferred = deferred
	return rep, err
}

// Demand loads a resource on first use. Already loaded resources return
// immediately; unknown URLs are fetched as lazy items.
func (l *Loader) Demand(ctx context.Context, url string) error {
	l.mu.Lock()
	e, ok := l.entries[url]
	if !ok {
		e = &entry{item: Item{URL: url, Kind: KindFromURL(url), Priority: Lazy}}
		l.entries[url] = e
	}
	if e.state == stateLoaded {
		l.mu.Unlock()
		return nil
	}
	e.state = stateInflight
	item := e.item
	l.mu.Unlock()

	err := l.pre.Preload(ctx, item)
	l.finish(item, err)
	return err
}

// RetryFailed re-issues every failed preload in priority order, regardless
// of network quality.
func (l *Loader) RetryFailed(ctx context.Context) (Report, error) {
	l.mu.Lock()
	var issue []Item
	for _, e := range l.entries {
		if e.state == stateFailed {
			e.state = stateInflight
			issue = append(issue, e.item)
		}
	}
	l.mu.Unlock()

	sort.SliceStable(issue, func(i, j int) bool {
		if issue[i].Priority != issue[j].Priority {
			return issue[i].Priority < issue[j].Priority
		}
		return issue[i].URL < issue[j].URL
	})
	return l.run(ctx, issue)
}

// Failed returns the items whose last preload failed.
func (l *Loader) Failed() []Failure {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Failure
	for _, e := range l.entries {
		if e.state == stateFailed {
			out = append(out, Failure{Item: e.item, Error: e.err.Error()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.URL < out[j].Item.URL })
	return out
}

// Loaded reports whether url has been fetched successfully.
func (l *Loader) Loaded(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[url]
	return ok && e.state == stateLoaded
}

// run issues items, which must already be sorted by priority. Each
// goroutine signals started just before its request goes out and the loop
// waits for that signal before spawning the next one, so requests start in
// slice order whatever the concurrency limit. g.Go blocks while every slot
// is busy.
func (l *Loader) run(ctx context.Context, items []Item) (Report, error) {
	var rep Report
	if len(items) == 0 {
		return rep, nil
	}

	var g errgroup.Group
	g.SetLimit(l.limit)

	var mu sync.Mutex
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			l.release(items[i:])
			_ = g.Wait()
			return rep, err
		}
		started := make(chan struct{})
		g.Go(func() error {
			close(started)
			err := l.pre.Preload(ctx, it)
			l.finish(it, err)
			if err != nil {
				slog.Debug("preload failed", "url", it.URL, "priority", it.Priority.String(), "error", err)
				mu.Lock()
				rep.Failed = append(rep.Failed, Failure{Item: it, Error: err.Error()})
				mu.Unlock()
			}
			return nil
		})
		<-started
		rep.Issued = append(rep.Issued, it)
	}
	_ = g.Wait()

	sort.SliceStable(rep.Failed, func(i, j int) bool {
		return rep.Failed[i].Item.Priority < rep.Failed[j].Item.Priority
	})
	return rep, nil
}

func (l *Loader) finish(it Item, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[it.URL]
	if !ok {
		return
	}
	if err != nil {
		e.state = stateFailed
		e.err = err
		return
	}
	e.state = stateLoaded
	e.err = nil
}

// release returns items that were claimed but never issued to the deferred
// state.
func (l *Loader) release(items []Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range items {
		if e, ok := l.entries[it.URL]; ok && e.state == stateInflight {
			e.state = stateDeferred
		}
	}
}
