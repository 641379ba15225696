package tmdb

import (
	"errors"
	"fmt"
	"strings"

	"marquee/internal/media"
)

// Category names a paginated TMDB listing.
type Category string

const (
	PopularMovies    Category = "popular-movies"
	TrendingMovies   Category = "trending-movies"
	TopRatedMovies   Category = "top-rated-movies"
	NowPlayingMovies Category = "now-playing-movies"
	UpcomingMovies   Category = "upcoming-movies"
	PopularTV        Category = "popular-tv"
	TrendingTV       Category = "trending-tv"
	TopRatedTV       Category = "top-rated-tv"
	MoviesByGenre    Category = "movies-by-genre"
	TVByGenre        Category = "tv-by-genre"
)

// ErrGenreRequired is returned when a by-genre category is used without a genre.
var ErrGenreRequired = errors.New("genre id is required for by-genre categories")

type categoryInfo struct {
	endpoint string
	kind     media.Kind
	title    string
	genre    bool
}

var categories = map[Category]categoryInfo{
	PopularMovies:    {"/movie/popular", media.Movie, "Popular Movies", false},
	TrendingMovies:   {"/trending/movie/day", media.Movie, "Trending Movies", false},
	TopRatedMovies:   {"/movie/top_rated", media.Movie, "Top Rated Movies", false},
	NowPlayingMovies: {"/movie/now_playing", media.Movie, "Now Playing", false},
	UpcomingMovies:   {"/movie/upcoming", media.Movie, "Upcoming Movies", false},
	PopularTV:        {"/tv/popular", media.Series, "Popular Series", false},
	TrendingTV:       {"/trending/tv/day", media.Series, "Trending Series", false},
	TopRatedTV:       {"/tv/top_rated", media.Series, "Top Rated Series", false},
	MoviesByGenre:    {"/discover/movie", media.Movie, "Movies by Genre", true},
	TVByGenre:        {"/discover/tv", media.Series, "Series by Genre", true},
}

// order is the display order used by Categories.
var order = []Category{
	TrendingMovies, PopularMovies, TopRatedMovies, NowPlayingMovies, UpcomingMovies,
	PopularTV, TrendingTV, TopRatedTV, MoviesByGenre, TVByGenre,
}

// Categories returns every known category in display order.
func Categories() []Category {
	out := make([]Category, len(order))
	copy(out, order)
	return out
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categories[c]; !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// GenreCategory returns the by-genre category for a kind.
func GenreCategory(kind media.Kind) Category {
	if kind == media.Series {
		return TVByGenre
	}
	return MoviesByGenre
}

// Kind returns the content kind the category lists.
func (c Category) Kind() media.Kind {
	return categories[c].kind
}

// Title returns a display heading for the category.
func (c Category) Title() string {
	if info, ok := categories[c]; ok {
		return info.title
	}
	return string(c)
}

// NeedsGenre reports whether the category is parameterized by genre.
func (c Category) NeedsGenre() bool {
	return categories[c].genre
}

func (c Category) endpoint() string {
	return categories[c].endpoint
}
