// Package media defines shared types for the marquee application.
package media

import (
	"fmt"
	"strings"
)

// Kind discriminates movies from series. Every catalog item carries one.
type Kind int

const (
	Movie Kind = iota
	Series
)

// String returns the TMDB path segment for the kind.
func (k Kind) String() string {
	switch k {
	case Movie:
		return "movie"
	case Series:
		return "tv"
	default:
		return "unknown"
	}
}

// Label returns a human-readable name.
func (k Kind) Label() string {
	if k == Series {
		return "series"
	}
	return "movie"
}

// ParseKind converts user or API input into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film", "filme":
		return Movie, nil
	case "tv", "series", "serie", "show", "shows":
		return Series, nil
	default:
		return Movie, fmt.Errorf("unknown content kind %q", s)
	}
}

// Key identifies an item across kinds; TMDB ids are only unique per kind.
type Key struct {
	Kind Kind
	ID   int
}

// Item is a movie or series summary as returned by the metadata source.
// Movies and series share this shape; Kind is the discriminator.
type Item struct {
	ID            int     // TMDB id
	Kind          Kind    // Movie or Series
	Title         string  // Display title ("title" for movies, "name" for series)
	OriginalTitle string  // Title in the original language
	Overview      string  // Synopsis
	ReleaseDate   string  // YYYY-MM-DD (first air date for series)
	Rating        float64 // Vote average, 0..10
	VoteCount     int
	Popularity    float64
	PosterPath    string // Relative image path, e.g. "/abc.jpg"
	BackdropPath  string
	GenreIDs      []int
}

// Key returns the (kind, id) identity of the item.
func (i Item) Key() Key {
	return Key{Kind: i.Kind, ID: i.ID}
}

// Year returns the release year hint, or "" when unknown.
func (i Item) Year() string {
	if len(i.ReleaseDate) >= 4 {
		return i.ReleaseDate[:4]
	}
	return ""
}

// Genre is a TMDB genre for one content kind.
type Genre struct {
	ID   int
	Name string
}

// Page is one page of a paginated catalog listing.
type Page struct {
	Items        []Item
	Page         int
	TotalPages   int
	TotalResults int
}

// Season represents a series season.
type Season struct {
	Number       int
	Name         string
	EpisodeCount int
}

// Details holds the extended metadata for a single item.
type Details struct {
	Item
	IMDbID  string
	Runtime int // Minutes, movies only
	Tagline string
	Genres  []Genre
	Seasons []Season // Series only
}

// PlaybackTarget is everything the embed provider needs to render a player.
type PlaybackTarget struct {
	XRefID  string // IMDb id, e.g. "tt0133093"
	Kind    Kind
	Title   string
	Season  int // Series only, 0 when unset
	Episode int // Series only, 0 when unset
}

// DisplayTitle returns the title with an SxxEyy suffix for episodes.
func (t PlaybackTarget) DisplayTitle() string {
	if t.Kind == Series && t.Season > 0 && t.Episode > 0 {
		return fmt.Sprintf("%s S%02dE%02d", t.Title, t.Season, t.Episode)
	}
	return t.Title
}

// FormatDisplayTitle renders an item for a selection list.
func FormatDisplayTitle(i Item) string {
	var b strings.Builder
	b.WriteString(i.Title)
	if y := i.Year(); y != "" {
		fmt.Fprintf(&b, " (%s)", y)
	}
	fmt.Fprintf(&b, " [%s]", i.Kind.Label())
	if i.Rating > 0 {
		fmt.Fprintf(&b, " ★%.1f", i.Rating)
	}
	return b.String()
}

// ClampRating bounds a vote average to 0..10.
func ClampRating(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 10:
		return 10
	default:
		return v
	}
}
