// Package embed builds player URLs for the external embed provider.
package embed

import (
	"errors"
	"fmt"
	"strconv"

	"marquee/internal/availability"
	"marquee/internal/httputil"
	"marquee/internal/media"
)

// DefaultDomain is the embed provider used when none is configured.
const DefaultDomain = "embed.warezcdn.com"

// DefaultFragment customizes the player look (transparent background,
// accent colour).
const DefaultFragment = "#transparent#color6c5ce7"

// ErrInvalidTarget reports a playback target the provider cannot address.
var ErrInvalidTarget = errors.New("invalid playback target")

// Builder turns playback targets into embed URLs over an ordered list of
// provider domains. The first domain is the primary one.
type Builder struct {
	domains  []string
	fragment string
}

// NewBuilder validates domains and returns a Builder. An empty list uses
// DefaultDomain.
func NewBuilder(domains []string) (*Builder, error) {
	if len(domains) == 0 {
		domains = []string{DefaultDomain}
	}
	for _, d := range domains {
		if err := httputil.ValidateHost(d); err != nil {
			return nil, fmt.Errorf("embed domain: %w", err)
		}
	}
	return &Builder{domains: domains, fragment: DefaultFragment}, nil
}

// WithFragment returns a copy of b that appends fragment to player URLs.
func (b *Builder) WithFragment(fragment string) *Builder {
	c := *b
	c.fragment = fragment
	return &c
}

// Domains returns the configured domains in order.
func (b *Builder) Domains() []string {
	return append([]string(nil), b.domains...)
}

// URL returns the player URL on the primary domain.
func (b *Builder) URL(t media.PlaybackTarget) (string, error) {
	path, err := targetPath(t)
	if err != nil {
		return "", err
	}
	return "https://" + b.domains[0] + path + b.fragment, nil
}

// URLs returns one player URL per domain, in order.
func (b *Builder) URLs(t media.PlaybackTarget) ([]string, error) {
	path, err := targetPath(t)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(b.domains))
	for i, d := range b.domains {
		out[i] = "https://" + d + path + b.fragment
	}
	return out, nil
}

// ProbeURLs returns the title-level page on every domain, without the
// player fragment. It satisfies availability.URLFunc.
func (b *Builder) ProbeURLs(kind media.Kind, xrefID string) ([]string, error) {
	path, err := targetPath(media.PlaybackTarget{XRefID: xrefID, Kind: kind})
	if err != nil {
		return nil, err
	}
	out := make([]string, len(b.domains))
	for i, d := range b.domains {
		out[i] = "https://" + d + path
	}
	return out, nil
}

var _ availability.URLFunc = (*Builder)(nil).ProbeURLs

// targetPath builds /filme/{id} or /serie/{id}[/{season}[/{episode}]].
// Season and episode are ignored for movies.
func targetPath(t media.PlaybackTarget) (string, error) {
	if err := availability.ValidateXRef(t.XRefID); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}

	switch t.Kind {
	case media.Movie:
		return httputil.BuildURL("", "filme", t.XRefID), nil
	case media.Series:
	default:
		return "", fmt.Errorf("%w: unknown kind %d", ErrInvalidTarget, int(t.Kind))
	}

	if t.Season < 0 || t.Episode < 0 {
		return "", fmt.Errorf("%w: negative season or episode", ErrInvalidTarget)
	}
	if t.Episode > 0 && t.Season == 0 {
		return "", fmt.Errorf("%w: episode %d without a season", ErrInvalidTarget, t.Episode)
	}

	segs := []string{"serie", t.XRefID}
	if t.Season > 0 {
		segs = append(segs, strconv.Itoa(t.Season))
		if t.Episode > 0 {
			segs = append(segs, strconv.Itoa(t.Episode))
		}
	}
	return httputil.BuildURL("", segs...), nil
}
