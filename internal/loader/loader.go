// Package loader accumulates a paginated, filtered catalog source one page
// at a time.
package loader

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"marquee/internal/media"
)

// FetchFunc fetches one 1-based page of a catalog source.
type FetchFunc func(ctx context.Context, page int) (media.Page, error)

// Filterer reduces a fetched page to the items worth showing, preserving order.
type Filterer interface {
	FilterBatch(ctx context.Context, items []media.Item) []media.Item
}

// resultLogger is implemented by filters that report per-page yield.
type resultLogger interface {
	LogResult(label string, fetched, available int)
}

// State is a snapshot of a Loader.
type State struct {
	Items      []media.Item
	Loading    bool
	HasMore    bool
	Page       int // next page to fetch
	TotalPages int // 0 until the first page arrives
}

// Option configures a Loader.
type Option func(*Loader)

// WithFilter runs every fetched page through f before accumulating it.
func WithFilter(f Filterer) Option {
	return func(l *Loader) { l.filter = f }
}

// WithInitialPage sets the first page fetched after New or Reset.
func WithInitialPage(page int) Option {
	return func(l *Loader) {
		if page > 0 {
			l.initialPage = page
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.log = logger
		}
	}
}

// WithLabel names the source in log lines.
func WithLabel(label string) Option {
	return func(l *Loader) { l.label = label }
}

// Loader pages through a source. At most one fetch is in flight; a call made
// while one is running returns immediately without queueing.
type Loader struct {
	fetch       FetchFunc
	filter      Filterer
	log         *log.Logger
	label       string
	initialPage int

	mu         sync.Mutex
	items      []media.Item
	seen       map[media.Key]struct{}
	cursor     int
	totalPages int
	loading    bool
	exhausted  bool
	generation uint64
}

// New creates a Loader positioned at the initial page (1 by default).
func New(fetch FetchFunc, opts ...Option) *Loader {
	l := &Loader{
		fetch:       fetch,
		log:         log.Default(),
		label:       "catalog",
		initialPage: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.resetLocked()
	return l
}

// LoadMore fetches the next page, filters it and appends the items not seen
// before. It is a no-op returning nil while a fetch is in flight or once the
// source is exhausted. On error the cursor and items are left unchanged, so
// calling LoadMore again retries the same page.
func (l *Loader) LoadMore(ctx context.Context) error {
	l.mu.Lock()
	if l.loading || l.exhausted {
		l.mu.Unlock()
		return nil
	}
	l.loading = true
	gen := l.generation
	page := l.cursor
	fetch := l.fetch
	l.mu.Unlock()

	result, err := fetch(ctx, page)

	var kept []media.Item
	if err == nil {
		kept = result.Items
		if l.filter != nil {
			kept = l.filter.FilterBatch(ctx, result.Items)
			if ctxErr := ctx.Err(); ctxErr != nil {
				// A cancelled filter returns a partial page.
				err = fmt.Errorf("filtering: %w", ctxErr)
			} else if rl, ok := l.filter.(resultLogger); ok {
				rl.LogResult(l.label, len(result.Items), len(kept))
			}
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		l.log.Debug("discarding page fetched before reset", "source", l.label, "page", page)
		return nil
	}
	l.loading = false

	if err != nil {
		l.log.Error("failed to load page", "source", l.label, "page", page, "err", err)
		return fmt.Errorf("loading %s page %d: %w", l.label, page, err)
	}

	added := 0
	for _, item := range kept {
		key := item.Key()
		if _, dup := l.seen[key]; dup {
			continue
		}
		l.seen[key] = struct{}{}
		l.items = append(l.items, item)
		added++
	}

	l.totalPages = result.TotalPages
	l.cursor = page + 1
	l.exhausted = l.cursor > l.totalPages

	l.log.Debug("page loaded",
		"source", l.label,
		"page", page,
		"total_pages", l.totalPages,
		"added", added,
		"items", len(l.items),
		"exhausted", l.exhausted,
	)
	return nil
}

// Reset discards accumulated items and returns to the initial page. A fetch
// still in flight completes but its result is dropped.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetLocked()
}

// SetSource replaces the fetch function and resets.
func (l *Loader) SetSource(fetch FetchFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fetch = fetch
	l.resetLocked()
}

func (l *Loader) resetLocked() {
	l.generation++
	l.items = nil
	l.seen = make(map[media.Key]struct{})
	l.cursor = l.initialPage
	l.totalPages = 0
	l.loading = false
	l.exhausted = false
}

// State returns a snapshot. The Items slice is a copy.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]media.Item, len(l.items))
	copy(items, l.items)
	return State{
		Items:      items,
		Loading:    l.loading,
		HasMore:    !l.exhausted,
		Page:       l.cursor,
		TotalPages: l.totalPages,
	}
}

// Len returns the number of accumulated items.
func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}
