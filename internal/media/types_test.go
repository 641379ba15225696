package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"movie", Movie, false},
		{"Movies", Movie, false},
		{"tv", Series, false},
		{"series", Series, false},
		{" shows ", Series, false},
		{"anime", Movie, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "movie", Movie.String())
	assert.Equal(t, "tv", Series.String())
	assert.Equal(t, "series", Series.Label())
}

func TestItemYearAndKey(t *testing.T) {
	it := Item{ID: 603, Kind: Movie, ReleaseDate: "1999-03-31"}
	assert.Equal(t, "1999", it.Year())
	assert.Equal(t, Key{Kind: Movie, ID: 603}, it.Key())

	assert.Equal(t, "", Item{ReleaseDate: "19"}.Year())
}

func TestFormatDisplayTitle(t *testing.T) {
	movie := Item{Title: "The Matrix", Kind: Movie, ReleaseDate: "1999-03-31", Rating: 8.2}
	assert.Equal(t, "The Matrix (1999) [movie] ★8.2", FormatDisplayTitle(movie))

	show := Item{Title: "Dark", Kind: Series}
	assert.Equal(t, "Dark [series]", FormatDisplayTitle(show))
}

func TestPlaybackTargetDisplayTitle(t *testing.T) {
	ep := PlaybackTarget{Title: "Dark", Kind: Series, Season: 2, Episode: 5}
	assert.Equal(t, "Dark S02E05", ep.DisplayTitle())

	movie := PlaybackTarget{Title: "Heat", Kind: Movie, Season: 1, Episode: 1}
	assert.Equal(t, "Heat", movie.DisplayTitle())
}

func TestClampRating(t *testing.T) {
	assert.Equal(t, 0.0, ClampRating(-1))
	assert.Equal(t, 10.0, ClampRating(11))
	assert.Equal(t, 7.5, ClampRating(7.5))
}
