package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marquee/internal/availability"
	"marquee/internal/config"
	"marquee/internal/embed"
	"marquee/internal/logging"
	"marquee/internal/media"
)

func testApp(t *testing.T, out *bytes.Buffer, p *fakePlayer) *app {
	t.Helper()
	b, err := embed.NewBuilder([]string{"embed.warezcdn.com", "mirror.example.net"})
	require.NoError(t, err)
	return &app{embed: b, player: p, out: out, log: logging.Discard()}
}

type fakePlayer struct {
	opened string
	err    error
}

func (f *fakePlayer) Open(url, title string) error {
	f.opened = url
	return f.err
}
func (f *fakePlayer) Name() string    { return "fake" }
func (f *fakePlayer) Available() bool { return true }

func TestNewProber(t *testing.T) {
	b, err := embed.NewBuilder(nil)
	require.NoError(t, err)
	c := config.Default()

	c.Probe = "optimistic"
	assert.IsType(t, availability.Optimistic{}, newProber(c, b, http.DefaultClient))

	c.Probe = "head"
	assert.IsType(t, &availability.HeadProbe{}, newProber(c, b, http.DefaultClient))

	c.Probe = "embed"
	chain, ok := newProber(c, b, http.DefaultClient).(*availability.Chain)
	require.True(t, ok)
	assert.Len(t, chain.Strategies, 2)
	assert.Equal(t, c.ProbeTimeout()/2, chain.Timeout)
}

func TestHandoffJSON(t *testing.T) {
	var out bytes.Buffer
	a := testApp(t, &out, &fakePlayer{})

	target := media.PlaybackTarget{XRefID: "tt0944947", Kind: media.Series, Title: "Game of Thrones", Season: 1, Episode: 2}
	require.NoError(t, a.handoff(target, true, false))

	var got handoffOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "series", got.Kind)
	assert.Equal(t, "tt0944947", got.IMDbID)
	assert.Equal(t, "https://embed.warezcdn.com/serie/tt0944947/1/2#transparent#color6c5ce7", got.URL)
	assert.Equal(t, []string{"https://mirror.example.net/serie/tt0944947/1/2#transparent#color6c5ce7"}, got.Mirrors)
}

func TestHandoffPrint(t *testing.T) {
	var out bytes.Buffer
	p := &fakePlayer{}
	a := testApp(t, &out, p)

	target := media.PlaybackTarget{XRefID: "tt0133093", Kind: media.Movie, Title: "The Matrix"}
	require.NoError(t, a.handoff(target, false, true))
	assert.Equal(t, "https://embed.warezcdn.com/filme/tt0133093#transparent#color6c5ce7\n", out.String())
	assert.Empty(t, p.opened)
}

func TestHandoffOpens(t *testing.T) {
	var out bytes.Buffer
	p := &fakePlayer{}
	a := testApp(t, &out, p)

	target := media.PlaybackTarget{XRefID: "tt0133093", Kind: media.Movie, Title: "The Matrix"}
	require.NoError(t, a.handoff(target, false, false))
	assert.Equal(t, "https://embed.warezcdn.com/filme/tt0133093#transparent#color6c5ce7", p.opened)

	p.err = errors.New("no display")
	assert.ErrorContains(t, a.handoff(target, false, false), "opening player")
}

func TestHandoffInvalidTarget(t *testing.T) {
	var out bytes.Buffer
	a := testApp(t, &out, &fakePlayer{})

	err := a.handoff(media.PlaybackTarget{XRefID: "bogus", Kind: media.Movie}, false, true)
	assert.ErrorIs(t, err, embed.ErrInvalidTarget)
	assert.Empty(t, out.String())
}
