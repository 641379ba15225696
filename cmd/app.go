package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"marquee/internal/availability"
	"marquee/internal/config"
	"marquee/internal/embed"
	"marquee/internal/httputil"
	"marquee/internal/loader"
	"marquee/internal/media"
	"marquee/internal/player"
	"marquee/internal/tmdb"
)

// app wires the components every command shares.
type app struct {
	tmdb   *tmdb.Client
	embed  *embed.Builder
	filter *availability.Filter // nil when filtering is off
	player player.Player
	out    io.Writer
	log    *log.Logger
}

func newApp(c *config.Config, logger *log.Logger) (*app, error) {
	client := httputil.NewClient()

	md, err := tmdb.New(tmdb.Options{
		APIKey:      c.APIKey,
		Language:    c.Language,
		BaseURL:     c.APIBase,
		ImageBase:   c.ImageBase,
		HTTPClient:  client,
		Logger:      logger,
		XRefLimiter: rate.NewLimiter(rate.Limit(c.XRefRate), c.XRefBurst),
	})
	if err != nil {
		return nil, err
	}

	builder, err := embed.NewBuilder(c.EmbedDomains)
	if err != nil {
		return nil, err
	}

	p, err := player.New(c.Player)
	if err != nil {
		return nil, err
	}

	a := &app{
		tmdb:   md,
		embed:  builder,
		player: p,
		out:    os.Stdout,
		log:    logger,
	}

	if c.Filter {
		checker := availability.NewChecker(availability.CheckerOptions{
			Prober:   newProber(c, builder, client),
			Cache:    availability.NewCache(c.CacheWindow(), availability.SystemClock{}),
			Timeout:  c.ProbeTimeout(),
			FailOpen: c.FailOpen,
			Logger:   logger,
		})
		a.filter = availability.NewFilter(md, checker, c.BatchSize, logger)
	}

	logger.Debug("app ready",
		"language", c.Language,
		"probe", c.Probe,
		"filter", c.Filter,
		"fail_open", c.FailOpen,
		"player", p.Name(),
	)
	return a, nil
}

// newProber selects the availability strategy named in the config.
func newProber(c *config.Config, b *embed.Builder, client *http.Client) availability.Prober {
	switch strings.ToLower(c.Probe) {
	case "embed":
		// Page inspection first, HEAD as the fallback; they share the
		// checker's budget.
		return &availability.Chain{
			Strategies: []availability.Prober{
				&availability.EmbedProbe{URLs: b.ProbeURLs, Client: client},
				&availability.HeadProbe{URLs: b.ProbeURLs, Client: client},
			},
			Timeout: c.ProbeTimeout() / 2,
		}
	case "head":
		return &availability.HeadProbe{URLs: b.ProbeURLs, Client: client}
	default:
		return availability.Optimistic{}
	}
}

// newLoader creates a loader over fetch with the app's filter.
func (a *app) newLoader(label string, fetch loader.FetchFunc) *loader.Loader {
	opts := []loader.Option{loader.WithLogger(a.log), loader.WithLabel(label)}
	if a.filter != nil {
		opts = append(opts, loader.WithFilter(a.filter))
	}
	return loader.New(fetch, opts...)
}

// filterItems applies availability filtering to a one-shot result list.
func (a *app) filterItems(ctx context.Context, label string, items []media.Item) []media.Item {
	if a.filter == nil {
		return items
	}
	kept := a.filter.FilterBatch(ctx, items)
	a.filter.LogResult(label, len(items), len(kept))
	return kept
}

// target resolves an item's cross-reference id into a playback target.
func (a *app) target(ctx context.Context, kind media.Kind, id int, title string, season, episode int) (media.PlaybackTarget, error) {
	xref, err := a.tmdb.ExternalID(ctx, kind, id)
	if err != nil {
		return media.PlaybackTarget{}, err
	}
	if xref == "" {
		return media.PlaybackTarget{}, fmt.Errorf("%q has no IMDb id; the embed provider cannot play it", title)
	}
	return media.PlaybackTarget{
		XRefID:  xref,
		Kind:    kind,
		Title:   title,
		Season:  season,
		Episode: episode,
	}, nil
}

// handoffOutput is the --json form of a playback handoff.
type handoffOutput struct {
	Title   string   `json:"title"`
	Kind    string   `json:"kind"`
	IMDbID  string   `json:"imdb_id"`
	Season  int      `json:"season,omitempty"`
	Episode int      `json:"episode,omitempty"`
	URL     string   `json:"url"`
	Mirrors []string `json:"mirrors,omitempty"`
}

// handoff prints or opens the player URL for t.
func (a *app) handoff(t media.PlaybackTarget, asJSON, printOnly bool) error {
	urls, err := a.embed.URLs(t)
	if err != nil {
		return err
	}
	a.log.Debug("handoff", "title", t.DisplayTitle(), "url", urls[0])

	switch {
	case asJSON:
		out := handoffOutput{
			Title:   t.Title,
			Kind:    t.Kind.Label(),
			IMDbID:  t.XRefID,
			Season:  t.Season,
			Episode: t.Episode,
			URL:     urls[0],
			Mirrors: urls[1:],
		}
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)

	case printOnly:
		_, err := fmt.Fprintln(a.out, urls[0])
		return err
	}

	if !a.player.Available() {
		return fmt.Errorf("player %q not found in PATH (try --print)", a.player.Name())
	}
	if err := a.player.Open(urls[0], t.DisplayTitle()); err != nil {
		return fmt.Errorf("opening player: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Opened %s\n", t.DisplayTitle())
	return nil
}

// tuiHandoff is the TUI's playback action: series open at the title level,
// where the provider's own picker chooses the episode.
func (a *app) tuiHandoff(ctx context.Context, item media.Item) error {
	t, err := a.target(ctx, item.Kind, item.ID, item.Title, 0, 0)
	if err != nil {
		return err
	}
	u, err := a.embed.URL(t)
	if err != nil {
		return err
	}
	return a.player.Open(u, t.DisplayTitle())
}
