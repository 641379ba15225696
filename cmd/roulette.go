package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"marquee/internal/media"
	"marquee/internal/roulette"
	"marquee/internal/tmdb"
	"marquee/internal/ui"
)

var rouletteCmd = &cobra.Command{
	Use:       "roulette [movies|tv]",
	Short:     "Pick something random to watch",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"movies", "tv"},
	RunE:      rouletteRun,
}

func rouletteRun(cmd *cobra.Command, args []string) error {
	kind, err := parseKindArg(args)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	opts := roulette.Options{
		Fetch: func(ctx context.Context, kind media.Kind, page int) (media.Page, error) {
			category := tmdb.PopularMovies
			if kind == media.Series {
				category = tmdb.PopularTV
			}
			return a.tmdb.Page(ctx, category, page, 0)
		},
		Logger: logger,
	}
	if a.filter != nil {
		opts.Filter = a.filter
	}
	picker := roulette.New(opts)

	ctx := context.Background()
	for {
		item, err := picker.Spin(ctx, kind)
		if err != nil {
			if errors.Is(err, roulette.ErrNoCandidates) {
				return fmt.Errorf("roulette came up empty, try again: %w", err)
			}
			return err
		}

		fmt.Fprintf(os.Stderr, "🎲 %s\n", media.FormatDisplayTitle(item))
		if item.Overview != "" {
			fmt.Fprintf(os.Stderr, "   %s\n", item.Overview)
		}

		ok, err := ui.Confirm("Play " + item.Title + "?")
		if err != nil {
			return err
		}
		if ok {
			return a.resolveAndPlay(ctx, item, 0, 0)
		}
	}
}
