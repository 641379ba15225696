package cmd

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"marquee/internal/media"
	"marquee/internal/tmdb"
	"marquee/internal/tui"
	"marquee/internal/ui"
)

// homeCategories are the sections of the home screen, in tab order. The
// first one feeds the hero banner.
var homeCategories = []tmdb.Category{
	tmdb.TrendingMovies,
	tmdb.PopularMovies,
	tmdb.TopRatedMovies,
	tmdb.PopularTV,
	tmdb.TrendingTV,
}

// homeRun is the default command: the home screen.
func homeRun(cmd *cobra.Command, args []string) error {
	return runTUI(func(a *app) (tui.Config, error) {
		sections := make([]*tui.Section, len(homeCategories))
		for i, c := range homeCategories {
			sections[i] = a.section(c, 0, c.Title())
		}
		return tui.Config{Sections: sections}, nil
	})
}

var browseGenre int

var browseCmd = &cobra.Command{
	Use:       "browse <category>",
	Short:     "Browse one listing",
	Long:      "Browse one TMDB listing. By-genre categories need --genre (see `marquee genres`).",
	Args:      cobra.ExactArgs(1),
	ValidArgs: categoryNames(),
	RunE:      browseRun,
}

func init() {
	browseCmd.Flags().IntVarP(&browseGenre, "genre", "g", 0, "TMDB genre id for by-genre categories")
}

func browseRun(cmd *cobra.Command, args []string) error {
	category, err := tmdb.ParseCategory(args[0])
	if err != nil {
		return err
	}
	if category.NeedsGenre() && browseGenre <= 0 {
		return fmt.Errorf("%s: %w", category, tmdb.ErrGenreRequired)
	}
	genre := 0
	if category.NeedsGenre() {
		genre = browseGenre
	}

	return runTUI(func(a *app) (tui.Config, error) {
		title := category.Title()
		if genre > 0 {
			title += " #" + strconv.Itoa(genre)
		}
		return tui.Config{Sections: []*tui.Section{a.section(category, genre, title)}}, nil
	})
}

var genresCmd = &cobra.Command{
	Use:       "genres [movie|tv]",
	Short:     "Pick a genre and browse it",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"movie", "tv"},
	RunE:      genresRun,
}

func genresRun(cmd *cobra.Command, args []string) error {
	kind, err := parseKindArg(args)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	genres, err := a.tmdb.Genres(context.Background(), kind)
	if err != nil {
		return err
	}
	if len(genres) == 0 {
		return fmt.Errorf("no %s genres found", kind.Label())
	}

	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
	}
	idx, err := ui.Select("Genre", names)
	if err != nil {
		return err
	}

	category := tmdb.GenreCategory(kind)
	return runTUI(func(a *app) (tui.Config, error) {
		source := func(g media.Genre) tui.Source {
			return tui.Source{
				Key:   tui.SourceKey{Category: string(category), Genre: g.ID},
				Title: g.Name,
				Fetch: a.tmdb.PageFunc(category, g.ID),
			}
		}
		first := genres[idx]
		return tui.Config{
			Sections:    []*tui.Section{a.section(category, first.ID, first.Name)},
			Genres:      genres,
			GenreIndex:  idx,
			GenreSource: source,
		}, nil
	})
}

// section builds a TUI section over a category listing.
func (a *app) section(c tmdb.Category, genre int, title string) *tui.Section {
	key := tui.SourceKey{Category: string(c), Genre: genre}
	return tui.NewSection(title, key, a.newLoader(string(c), a.tmdb.PageFunc(c, genre)))
}

// runTUI builds the app with a TUI-safe logger and runs the program.
func runTUI(build func(*app) (tui.Config, error)) error {
	tlog, closeLog, err := tuiLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := newApp(cfg, tlog)
	if err != nil {
		return err
	}
	tc, err := build(a)
	if err != nil {
		return err
	}
	tc.Play = a.tuiHandoff
	tc.Logger = tlog

	if _, err := tea.NewProgram(tui.New(tc), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func categoryNames() []string {
	cats := tmdb.Categories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// parseKindArg reads an optional movie|tv argument; movies by default.
func parseKindArg(args []string) (media.Kind, error) {
	if len(args) == 0 {
		return media.Movie, nil
	}
	return media.ParseKind(args[0])
}
