package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"marquee/internal/media"
)

// loadTimeout covers one page fetch plus its availability checks.
const loadTimeout = 60 * time.Second

// playTimeout covers the cross-reference lookup and launching the opener.
const playTimeout = 30 * time.Second

// Handoff resolves an item to its player URL and opens it.
type Handoff func(ctx context.Context, item media.Item) error

// LoadMoreCmd fetches the next page of a section.
func LoadMoreCmd(index int, s *Section) tea.Cmd {
	gen := s.Generation()
	l := s.Loader()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		err := l.LoadMore(ctx)
		return SectionLoadedMsg{Index: index, Generation: gen, Err: err}
	}
}

// PlayCmd hands item off to the player.
func PlayCmd(play Handoff, item media.Item) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), playTimeout)
		defer cancel()

		if err := play(ctx, item); err != nil {
			return ErrMsg{Err: err, Context: "starting playback"}
		}
		return PlaybackStartedMsg{Title: item.Title}
	}
}
