package tmdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marquee/internal/media"
)

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Popular-Movies ")
	require.NoError(t, err)
	assert.Equal(t, PopularMovies, c)

	_, err = ParseCategory("best-movies")
	assert.Error(t, err)
}

func TestCategoryKinds(t *testing.T) {
	for _, c := range Categories() {
		info, ok := categories[c]
		require.True(t, ok, "category %s has no endpoint", c)
		assert.NotEmpty(t, info.endpoint)
		assert.NotEmpty(t, c.Title())
	}

	assert.Equal(t, media.Movie, PopularMovies.Kind())
	assert.Equal(t, media.Series, TrendingTV.Kind())
	assert.True(t, MoviesByGenre.NeedsGenre())
	assert.False(t, TopRatedMovies.NeedsGenre())
	assert.Equal(t, TVByGenre, GenreCategory(media.Series))
	assert.Equal(t, MoviesByGenre, GenreCategory(media.Movie))
}

func TestCategoriesIsACopy(t *testing.T) {
	list := Categories()
	list[0] = "mutated"
	assert.Equal(t, TrendingMovies, Categories()[0])
}
