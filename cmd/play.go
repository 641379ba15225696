package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	flagSeason  int
	flagEpisode int
)

var playCmd = &cobra.Command{
	Use:   "play <movie|tv> <tmdb-id>",
	Short: "Hand a title off to the player by TMDB id",
	Long: `Resolve a TMDB id to its IMDb id and open the embed player.
Series open at the title level unless --season (and optionally --episode) is given.`,
	Args: cobra.ExactArgs(2),
	RunE: playRun,
}

func init() {
	playCmd.Flags().IntVarP(&flagSeason, "season", "s", 0, "Season number (series only)")
	playCmd.Flags().IntVarP(&flagEpisode, "episode", "e", 0, "Episode number (series only, needs --season)")
}

func playRun(cmd *cobra.Command, args []string) error {
	kind, err := parseKindArg(args[:1])
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(args[1])
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid TMDB id %q", args[1])
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	ctx := context.Background()

	details, err := a.tmdb.Details(ctx, kind, id)
	if err != nil {
		return err
	}

	t, err := a.target(ctx, kind, id, details.Title, flagSeason, flagEpisode)
	if err != nil {
		return err
	}
	return a.handoff(t, flagJSON, flagPrint)
}
