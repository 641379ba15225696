package tui

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"marquee/internal/loader"
	"marquee/internal/media"
)

// LoadThreshold is the scroll ratio at which the next page is requested.
const LoadThreshold = 0.8

// ShouldLoadMore reports whether a section showing rows up to position (1-based,
// bottom edge of the viewport) out of total should fetch the next page.
// An empty list always asks for more while the source has some.
func ShouldLoadMore(position, total int, threshold float64, loading, hasMore bool) bool {
	if loading || !hasMore {
		return false
	}
	if total == 0 {
		return true
	}
	return float64(position)/float64(total) >= threshold
}

// SourceKey identifies what a section lists. Two sources with equal keys are
// the same listing.
type SourceKey struct {
	Category string
	Genre    int
}

// Section is one scrollable, incrementally loaded list.
type Section struct {
	Title string

	key    SourceKey
	loader *loader.Loader

	// generation changes on every source switch so results addressed to the
	// old source can be recognised.
	generation int

	cursor int
	offset int

	query   string
	matches []int // indices into the loader's items; nil when not filtering
}

// NewSection creates a section over l.
func NewSection(title string, key SourceKey, l *loader.Loader) *Section {
	return &Section{Title: title, key: key, loader: l}
}

// Key returns the current source key.
func (s *Section) Key() SourceKey { return s.key }

// Generation returns the source generation.
func (s *Section) Generation() int { return s.generation }

// Loader returns the section's loader.
func (s *Section) Loader() *loader.Loader { return s.loader }

// SetSource switches the section to a different listing. It reports whether
// the key changed identity; only then is the loader reset, and the caller
// must issue the initial load.
func (s *Section) SetSource(title string, key SourceKey, fetch loader.FetchFunc) bool {
	if key == s.key {
		return false
	}
	s.Title = title
	s.key = key
	s.generation++
	s.cursor, s.offset = 0, 0
	s.query, s.matches = "", nil
	s.loader.SetSource(fetch)
	return true
}

// State returns the loader state.
func (s *Section) State() loader.State { return s.loader.State() }

// Filtering reports whether a filter query is active.
func (s *Section) Filtering() bool { return s.query != "" }

// Query returns the active filter query.
func (s *Section) Query() string { return s.query }

// SetFilter narrows the visible rows to fuzzy matches of query over titles.
func (s *Section) SetFilter(query string) {
	s.query = query
	s.cursor, s.offset = 0, 0
	s.refilter(s.loader.State().Items)
}

func (s *Section) refilter(items []media.Item) {
	if s.query == "" {
		s.matches = nil
		return
	}
	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = strings.ToLower(it.Title)
	}
	found := fuzzy.Find(strings.ToLower(s.query), titles)
	s.matches = make([]int, len(found))
	for i, m := range found {
		s.matches[i] = m.Index
	}
}

// rows returns the visible items in display order.
func (s *Section) rows(items []media.Item) []media.Item {
	if s.matches == nil {
		return items
	}
	out := make([]media.Item, 0, len(s.matches))
	for _, i := range s.matches {
		if i < len(items) {
			out = append(out, items[i])
		}
	}
	return out
}

// Rows returns the items currently shown, filter applied.
func (s *Section) Rows() []media.Item {
	items := s.loader.State().Items
	if s.query != "" {
		s.refilter(items)
	}
	return s.rows(items)
}

// Cursor returns the selected row index and the first visible row.
func (s *Section) Cursor() (cursor, offset int) { return s.cursor, s.offset }

// Move shifts the cursor by delta rows and scrolls so it stays inside a
// viewport of height rows.
func (s *Section) Move(delta, height int) {
	n := len(s.Rows())
	if n == 0 {
		s.cursor, s.offset = 0, 0
		return
	}
	s.cursor = max(0, min(n-1, s.cursor+delta))
	s.scroll(height)
}

func (s *Section) scroll(height int) {
	height = max(1, height)
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+height {
		s.offset = s.cursor - height + 1
	}
}

// Selected returns the item under the cursor.
func (s *Section) Selected() (media.Item, bool) {
	rows := s.Rows()
	if s.cursor < 0 || s.cursor >= len(rows) {
		return media.Item{}, false
	}
	return rows[s.cursor], true
}

// NeedsMore reports whether the viewport of height rows has crossed the load
// threshold. Filtered views never trigger loads.
func (s *Section) NeedsMore(height int, pending bool) bool {
	if s.query != "" {
		return false
	}
	st := s.loader.State()
	position := min(s.offset+max(1, height), len(st.Items))
	return ShouldLoadMore(position, len(st.Items), LoadThreshold, pending || st.Loading, st.HasMore)
}
