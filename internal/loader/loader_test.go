package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marquee/internal/availability"
	"marquee/internal/logging"
	"marquee/internal/media"
)

func movies(ids ...int) []media.Item {
	out := make([]media.Item, len(ids))
	for i, id := range ids {
		out[i] = media.Item{ID: id, Kind: media.Movie, Title: "Movie"}
	}
	return out
}

func idsOf(items []media.Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

// pagedSource serves fixed pages and records which pages were requested.
type pagedSource struct {
	mu         sync.Mutex
	pages      map[int][]media.Item
	totalPages int
	requested  []int
}

func (s *pagedSource) fetch(_ context.Context, page int) (media.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requested = append(s.requested, page)
	return media.Page{Items: s.pages[page], Page: page, TotalPages: s.totalPages}, nil
}

func newTestLoader(fetch FetchFunc, opts ...Option) *Loader {
	return New(fetch, append([]Option{WithLogger(logging.Discard())}, opts...)...)
}

func TestLoadMoreAccumulates(t *testing.T) {
	src := &pagedSource{
		pages:      map[int][]media.Item{1: movies(1, 2, 3), 2: movies(4, 5)},
		totalPages: 2,
	}
	l := newTestLoader(src.fetch)

	require.NoError(t, l.LoadMore(context.Background()))
	st := l.State()
	assert.Equal(t, []int{1, 2, 3}, idsOf(st.Items))
	assert.True(t, st.HasMore)
	assert.Equal(t, 2, st.Page)
	assert.Equal(t, 2, st.TotalPages)

	require.NoError(t, l.LoadMore(context.Background()))
	st = l.State()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, idsOf(st.Items))
	assert.False(t, st.HasMore)
}

func TestLoadMoreDuplicatePage(t *testing.T) {
	page1 := make([]int, 20)
	for i := range page1 {
		page1[i] = i + 1
	}
	src := &pagedSource{
		pages: map[int][]media.Item{
			1: movies(page1...),
			2: movies(page1...),
		},
		totalPages: 10,
	}
	l := newTestLoader(src.fetch)

	require.NoError(t, l.LoadMore(context.Background()))
	require.NoError(t, l.LoadMore(context.Background()))

	st := l.State()
	assert.Len(t, st.Items, 20)
	assert.Equal(t, 3, st.Page)
	assert.True(t, st.HasMore)
}

func TestLoadMoreDedupesWithinPage(t *testing.T) {
	src := &pagedSource{
		pages:      map[int][]media.Item{1: movies(7, 8, 7, 9, 8)},
		totalPages: 1,
	}
	l := newTestLoader(src.fetch)

	require.NoError(t, l.LoadMore(context.Background()))
	assert.Equal(t, []int{7, 8, 9}, idsOf(l.State().Items))
}

func TestLoadMoreSameIDDifferentKind(t *testing.T) {
	fetch := func(context.Context, int) (media.Page, error) {
		return media.Page{
			Items:      []media.Item{{ID: 1, Kind: media.Movie}, {ID: 1, Kind: media.Series}},
			TotalPages: 1,
		}, nil
	}
	l := newTestLoader(fetch)

	require.NoError(t, l.LoadMore(context.Background()))
	assert.Equal(t, 2, l.Len())
}

func TestLoadMoreExhaustedIsTerminal(t *testing.T) {
	src := &pagedSource{
		pages:      map[int][]media.Item{1: movies(1)},
		totalPages: 1,
	}
	l := newTestLoader(src.fetch)

	require.NoError(t, l.LoadMore(context.Background()))
	require.NoError(t, l.LoadMore(context.Background()))
	require.NoError(t, l.LoadMore(context.Background()))

	assert.Equal(t, []int{1}, src.requested)
	assert.False(t, l.State().HasMore)
}

func TestLoadMoreEmptySource(t *testing.T) {
	src := &pagedSource{pages: map[int][]media.Item{}}
	l := newTestLoader(src.fetch)

	require.NoError(t, l.LoadMore(context.Background()))
	st := l.State()
	assert.Empty(t, st.Items)
	assert.False(t, st.HasMore)
}

func TestLoadMoreInFlightGuard(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32

	fetch := func(ctx context.Context, page int) (media.Page, error) {
		calls.Add(1)
		close(started)
		<-release
		return media.Page{Items: movies(1), Page: page, TotalPages: 5}, nil
	}
	l := newTestLoader(fetch)

	done := make(chan error, 1)
	go func() { done <- l.LoadMore(context.Background()) }()
	<-started

	assert.True(t, l.State().Loading)
	assert.NoError(t, l.LoadMore(context.Background()), "second call is dropped")

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 2, l.State().Page)
	assert.False(t, l.State().Loading)
}

func TestLoadMoreFailureRollsBack(t *testing.T) {
	fail := true
	fetch := func(_ context.Context, page int) (media.Page, error) {
		if page == 2 && fail {
			return media.Page{}, errors.New("TMDB API error: status 503")
		}
		return media.Page{Items: movies(page * 10), Page: page, TotalPages: 3}, nil
	}
	l := newTestLoader(fetch)

	require.NoError(t, l.LoadMore(context.Background()))
	err := l.LoadMore(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "page 2")

	st := l.State()
	assert.Equal(t, []int{10}, idsOf(st.Items))
	assert.Equal(t, 2, st.Page)
	assert.True(t, st.HasMore)
	assert.False(t, st.Loading)

	fail = false
	require.NoError(t, l.LoadMore(context.Background()))
	assert.Equal(t, []int{10, 20}, idsOf(l.State().Items))
}

func TestResetRestartsAtInitialPage(t *testing.T) {
	src := &pagedSource{
		pages:      map[int][]media.Item{1: movies(1), 2: movies(2)},
		totalPages: 2,
	}
	l := newTestLoader(src.fetch)

	require.NoError(t, l.LoadMore(context.Background()))
	require.NoError(t, l.LoadMore(context.Background()))
	l.Reset()

	st := l.State()
	assert.Empty(t, st.Items)
	assert.True(t, st.HasMore)
	assert.Equal(t, 1, st.Page)
	assert.Equal(t, 0, st.TotalPages)

	require.NoError(t, l.LoadMore(context.Background()))
	assert.Equal(t, []int{1, 2, 1}, src.requested)
	assert.Equal(t, []int{1}, idsOf(l.State().Items))
}

func TestResetDiscardsStaleResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	stale := func(ctx context.Context, page int) (media.Page, error) {
		started <- struct{}{}
		<-release
		return media.Page{Items: movies(99), Page: page, TotalPages: 5}, nil
	}
	l := newTestLoader(stale)

	done := make(chan error, 1)
	go func() { done <- l.LoadMore(context.Background()) }()
	<-started

	fresh := &pagedSource{pages: map[int][]media.Item{1: movies(1, 2)}, totalPages: 1}
	l.SetSource(fresh.fetch)
	require.NoError(t, l.LoadMore(context.Background()))

	close(release)
	require.NoError(t, <-done)

	st := l.State()
	assert.Equal(t, []int{1, 2}, idsOf(st.Items))
	assert.False(t, st.HasMore)
	assert.False(t, st.Loading)
}

type dropOdd struct {
	logged [][2]int
}

func (dropOdd) FilterBatch(_ context.Context, items []media.Item) []media.Item {
	var out []media.Item
	for _, it := range items {
		if it.ID%2 == 0 {
			out = append(out, it)
		}
	}
	return out
}

func (d *dropOdd) LogResult(_ string, fetched, available int) {
	d.logged = append(d.logged, [2]int{fetched, available})
}

func TestLoadMoreAppliesFilter(t *testing.T) {
	src := &pagedSource{pages: map[int][]media.Item{1: movies(1, 2, 3, 4)}, totalPages: 3}
	f := &dropOdd{}
	l := newTestLoader(src.fetch, WithFilter(f), WithLabel("popular-movies"))

	require.NoError(t, l.LoadMore(context.Background()))
	assert.Equal(t, []int{2, 4}, idsOf(l.State().Items))
	assert.Equal(t, [][2]int{{4, 2}}, f.logged)
}

func TestLoadMoreFilterEmptiesPage(t *testing.T) {
	src := &pagedSource{pages: map[int][]media.Item{1: movies(1, 3)}, totalPages: 3}
	l := newTestLoader(src.fetch, WithFilter(&dropOdd{}))

	require.NoError(t, l.LoadMore(context.Background()))
	st := l.State()
	assert.Empty(t, st.Items)
	assert.Equal(t, 2, st.Page, "cursor advances even when nothing survives")
	assert.True(t, st.HasMore)
}

// cancellingResolver cancels the load after the first lookup.
type cancellingResolver struct {
	cancel context.CancelFunc
	once   sync.Once
}

func (r *cancellingResolver) ExternalID(_ context.Context, _ media.Kind, id int) (string, error) {
	r.once.Do(r.cancel)
	return "tt0133093", nil
}

func TestLoadMoreCancelledFilterRollsBack(t *testing.T) {
	src := &pagedSource{
		pages:      map[int][]media.Item{1: movies(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)},
		totalPages: 3,
	}
	ctx, cancel := context.WithCancel(context.Background())
	resolver := &cancellingResolver{cancel: cancel}
	checker := availability.NewChecker(availability.CheckerOptions{
		Prober: availability.Optimistic{},
		Logger: logging.Discard(),
	})
	f := availability.NewFilter(resolver, checker, 5, logging.Discard())
	l := newTestLoader(src.fetch, WithFilter(f))

	err := l.LoadMore(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	st := l.State()
	assert.Empty(t, st.Items, "partial page is not kept")
	assert.Equal(t, 1, st.Page, "cursor unchanged so the page can be retried")
	assert.True(t, st.HasMore)
	assert.False(t, st.Loading)

	require.NoError(t, l.LoadMore(context.Background()))
	assert.Len(t, l.State().Items, 10)
	assert.Equal(t, 2, l.State().Page)
	assert.Equal(t, []int{1, 1}, src.requested)
}

func TestWithInitialPage(t *testing.T) {
	src := &pagedSource{pages: map[int][]media.Item{4: movies(40)}, totalPages: 4}
	l := newTestLoader(src.fetch, WithInitialPage(4))

	require.NoError(t, l.LoadMore(context.Background()))
	assert.Equal(t, []int{4}, src.requested)
	assert.False(t, l.State().HasMore)

	l.Reset()
	assert.Equal(t, 4, l.State().Page)
}

func TestStateReturnsCopy(t *testing.T) {
	src := &pagedSource{pages: map[int][]media.Item{1: movies(1)}, totalPages: 1}
	l := newTestLoader(src.fetch)
	require.NoError(t, l.LoadMore(context.Background()))

	st := l.State()
	st.Items[0].ID = 42
	assert.Equal(t, 1, l.State().Items[0].ID)
}
