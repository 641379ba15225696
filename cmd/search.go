package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/media"
	"marquee/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search movies and series, then play",
	Args:  cobra.ArbitraryArgs,
	RunE:  searchRun,
}

func searchRun(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if query == "" {
		var err error
		query, err = ui.Input("Search")
		if err != nil {
			return fmt.Errorf("no search query provided")
		}
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	ctx := context.Background()

	logger.Debug("searching", "query", query)
	results, err := a.tmdb.Search(ctx, query, 1)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	results = a.filterItems(ctx, "search", results)
	if len(results) == 0 {
		return fmt.Errorf("no playable results for %q", query)
	}

	selected, err := ui.SelectItem("Select", results)
	if err != nil {
		return err
	}
	logger.Debug("selected", "title", selected.Title, "id", selected.ID, "kind", selected.Kind)

	return a.resolveAndPlay(ctx, selected, 0, 0)
}

// resolveAndPlay picks season and episode for series (unless given), then
// hands the title off.
func (a *app) resolveAndPlay(ctx context.Context, item media.Item, season, episode int) error {
	if item.Kind == media.Series && season == 0 {
		details, err := a.tmdb.Details(ctx, item.Kind, item.ID)
		if err != nil {
			return fmt.Errorf("getting seasons: %w", err)
		}
		if len(details.Seasons) == 0 {
			return fmt.Errorf("no seasons found")
		}

		s, err := ui.SelectSeason(details.Seasons)
		if err != nil {
			return err
		}
		season = s.Number

		if s.EpisodeCount > 0 {
			episode, err = ui.SelectEpisode(s.EpisodeCount)
			if err != nil {
				return err
			}
		}
		logger.Debug("episode chosen", "season", season, "episode", episode)
	}

	t, err := a.target(ctx, item.Kind, item.ID, item.Title, season, episode)
	if err != nil {
		return err
	}
	return a.handoff(t, flagJSON, flagPrint)
}
