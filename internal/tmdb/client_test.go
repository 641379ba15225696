package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"marquee/internal/logging"
	"marquee/internal/media"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Options{
		APIKey:      "test-key",
		Language:    "pt-BR",
		BaseURL:     srv.URL,
		ImageBase:   "https://image.tmdb.org/t/p",
		HTTPClient:  srv.Client(),
		Logger:      logging.Discard(),
		XRefLimiter: rate.NewLimiter(rate.Inf, 1),
	})
	require.NoError(t, err)
	return c
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/popular", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "pt-BR", r.URL.Query().Get("language"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Write([]byte(`{
			"page": 2,
			"total_pages": 10,
			"total_results": 200,
			"results": [
				{"id": 603, "title": "The Matrix", "release_date": "1999-03-31", "vote_average": 8.2, "poster_path": "/m.jpg"},
				{"id": 0, "title": "broken"},
				{"id": 604, "title": "The Matrix Reloaded", "release_date": "2003-05-15", "vote_average": 11}
			]
		}`))
	})
	c := newTestClient(t, mux)

	page, err := c.Page(context.Background(), PopularMovies, 2, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.TotalPages)
	require.Len(t, page.Items, 2, "items without an id are dropped")

	first := page.Items[0]
	assert.Equal(t, 603, first.ID)
	assert.Equal(t, media.Movie, first.Kind)
	assert.Equal(t, "The Matrix", first.Title)
	assert.Equal(t, "1999", first.Year())
	assert.Equal(t, 10.0, page.Items[1].Rating, "rating is clamped")
}

func TestPageSeriesUsesNameFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/trending/tv/day", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":1,"total_pages":1,"results":[{"id":1399,"name":"Game of Thrones","first_air_date":"2011-04-17"}]}`))
	})
	c := newTestClient(t, mux)

	page, err := c.Page(context.Background(), TrendingTV, 1, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, media.Series, page.Items[0].Kind)
	assert.Equal(t, "Game of Thrones", page.Items[0].Title)
	assert.Equal(t, "2011", page.Items[0].Year())
}

func TestPageClampsTotalPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/top_rated", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":1,"total_pages":41234,"results":[]}`))
	})
	c := newTestClient(t, mux)

	page, err := c.Page(context.Background(), TopRatedMovies, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 500, page.TotalPages)
}

func TestPageByGenre(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/discover/tv", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "18", r.URL.Query().Get("with_genres"))
		w.Write([]byte(`{"page":1,"total_pages":3,"results":[{"id":1,"name":"Drama Show"}]}`))
	})
	c := newTestClient(t, mux)

	_, err := c.Page(context.Background(), TVByGenre, 1, 0)
	assert.ErrorIs(t, err, ErrGenreRequired)

	page, err := c.Page(context.Background(), TVByGenre, 1, 18)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
}

func TestPageRejectsBadInput(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())

	_, err := c.Page(context.Background(), PopularMovies, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = c.Page(context.Background(), PopularMovies, 501, 0)
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = c.Page(context.Background(), Category("nope"), 1, 0)
	assert.Error(t, err)
}

func TestPageAPIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
	}))

	_, err := c.Page(context.Background(), PopularMovies, 1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.NotContains(t, err.Error(), "test-key")
}

func TestGenres(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/genre/movie/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"genres":[{"id":28,"name":"Ação"},{"id":35,"name":"Comédia"}]}`))
	})
	c := newTestClient(t, mux)

	genres, err := c.Genres(context.Background(), media.Movie)
	require.NoError(t, err)
	assert.Equal(t, []media.Genre{{ID: 28, Name: "Ação"}, {ID: 35, Name: "Comédia"}}, genres)
}

func TestExternalID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/603/external_ids", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":603,"imdb_id":"tt0133093"}`))
	})
	mux.HandleFunc("/tv/42/external_ids", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":42,"imdb_id":null}`))
	})
	c := newTestClient(t, mux)

	id, err := c.ExternalID(context.Background(), media.Movie, 603)
	require.NoError(t, err)
	assert.Equal(t, "tt0133093", id)

	id, err = c.ExternalID(context.Background(), media.Series, 42)
	require.NoError(t, err)
	assert.Empty(t, id, "missing imdb id is not an error")

	_, err = c.ExternalID(context.Background(), media.Series, 999)
	assert.Error(t, err)
}

func TestExternalIDHonorsLimiterContext(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"imdb_id":"tt0133093"}`))
	}))
	c.limiter = rate.NewLimiter(rate.Every(1e12), 1)

	_, err := c.ExternalID(context.Background(), media.Movie, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.ExternalID(ctx, media.Movie, 2)
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchTagsKindsAndDropsPeople(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/multi", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "matrix", r.URL.Query().Get("query"))
		w.Write([]byte(`{"page":1,"total_pages":1,"results":[
			{"id":603,"media_type":"movie","title":"The Matrix"},
			{"id":6384,"media_type":"person","name":"Keanu Reeves"},
			{"id":1,"media_type":"tv","name":"The Matrix Show"}
		]}`))
	})
	c := newTestClient(t, mux)

	items, err := c.Search(context.Background(), " matrix ", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, media.Movie, items[0].Kind)
	assert.Equal(t, media.Series, items[1].Kind)
	assert.Equal(t, "The Matrix Show", items[1].Title)

	_, err = c.Search(context.Background(), "  ", 1)
	assert.Error(t, err)
}

func TestDetailsSeasons(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tv/1399", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":1399,"name":"Game of Thrones","genres":[{"id":18,"name":"Drama"}],
			"seasons":[{"season_number":0,"name":"Specials","episode_count":10},
			           {"season_number":1,"name":"Season 1","episode_count":10}]}`))
	})
	c := newTestClient(t, mux)

	d, err := c.Details(context.Background(), media.Series, 1399)
	require.NoError(t, err)
	assert.Equal(t, "Game of Thrones", d.Title)
	require.Len(t, d.Seasons, 1, "specials are skipped")
	assert.Equal(t, 1, d.Seasons[0].Number)
	assert.Equal(t, 10, d.Seasons[0].EpisodeCount)
	assert.Equal(t, []media.Genre{{ID: 18, Name: "Drama"}}, d.Genres)
}

func TestPageFunc(t *testing.T) {
	var gotPage atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		gotPage.Store(r.URL.Query().Get("page") + "/" + r.URL.Query().Get("with_genres"))
		w.Write([]byte(`{"page":3,"total_pages":4,"results":[]}`))
	})
	c := newTestClient(t, mux)

	fetch := c.PageFunc(MoviesByGenre, 28)
	_, err := fetch(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "3/28", gotPage.Load())
}

func TestImageURLs(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())

	assert.Equal(t, "", c.PosterURL("", ""))
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/p.jpg", c.PosterURL("/p.jpg", ""))
	assert.Equal(t, "https://image.tmdb.org/t/p/original/b.jpg", c.BackdropURL("b.jpg", "original"))
	assert.Equal(t, "https://image.tmdb.org/t/p/w1280/b.jpg", c.BackdropURL("/b.jpg", ""))
}

func TestStatusErrorIsNotWrappedTwice(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())
	_, err := c.Genres(context.Background(), media.Series)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrGenreRequired))
	assert.Contains(t, err.Error(), "TMDB API error: status 404")
}
