package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumbered(t *testing.T) {
	got := numbered([]string{"The Matrix (1999) [movie]", "Dark\tSeries\nline"})
	assert.Equal(t, "0\tThe Matrix (1999) [movie]\n1\tDark Series line\n", got)
}

func TestParseSelection(t *testing.T) {
	idx, err := parseSelection("1\tDark Series\n", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = parseSelection("", 2)
	assert.ErrorIs(t, err, ErrCancelled)

	_, err = parseSelection("7\tnope", 2)
	assert.Error(t, err)

	_, err = parseSelection("x\tnope", 2)
	assert.Error(t, err)
}

func TestSelectEmpty(t *testing.T) {
	_, err := Select("Pick", nil)
	assert.Error(t, err)
}
