package availability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"marquee/internal/httputil"
	"marquee/internal/media"
)

// Prober decides whether the embed provider has a title.
// An error means "could not tell", not "unavailable".
type Prober interface {
	Probe(ctx context.Context, kind media.Kind, xrefID string) (bool, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, kind media.Kind, xrefID string) (bool, error)

func (f ProberFunc) Probe(ctx context.Context, kind media.Kind, xrefID string) (bool, error) {
	return f(ctx, kind, xrefID)
}

var errNoCandidates = errors.New("no probe URLs for title")

// Optimistic assumes everything with a valid id is available.
type Optimistic struct{}

func (Optimistic) Probe(context.Context, media.Kind, string) (bool, error) {
	return true, nil
}

// URLFunc builds candidate probe URLs for a title, one per embed domain.
type URLFunc func(kind media.Kind, xrefID string) ([]string, error)

// DefaultNotFoundMarkers are page texts the embed provider shows for
// titles it does not have.
var DefaultNotFoundMarkers = []string{
	"não encontrado",
	"nao encontrado",
	"not found",
	"video unavailable",
	"conteúdo indisponível",
}

// playerSelector matches elements that indicate a player is present.
const playerSelector = "iframe, video, [data-player], #player, .player"

// EmbedProbe fetches the embed page and looks for a player.
type EmbedProbe struct {
	URLs    URLFunc
	Client  *http.Client
	Markers []string
}

// Probe tries each candidate URL in order. The first page with a player
// and no not-found marker wins. Pages that answer but show no player count
// as a definitive "no"; if every candidate failed at the transport level
// the error is returned.
func (p *EmbedProbe) Probe(ctx context.Context, kind media.Kind, xrefID string) (bool, error) {
	urls, err := p.URLs(kind, xrefID)
	if err != nil {
		return false, err
	}
	if len(urls) == 0 {
		return false, errNoCandidates
	}

	markers := p.Markers
	if markers == nil {
		markers = DefaultNotFoundMarkers
	}

	var errs []error
	answered := false
	for _, u := range urls {
		ok, err := p.probeOne(ctx, u, markers)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		answered = true
		if ok {
			return true, nil
		}
	}
	if answered {
		return false, nil
	}
	return false, errors.Join(errs...)
}

func (p *EmbedProbe) probeOne(ctx context.Context, u string, markers []string) (bool, error) {
	resp, err := httputil.Get(ctx, p.Client, u)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return false, &httputil.StatusError{Code: resp.StatusCode, URL: u}
	}

	doc, err := goquery.NewDocumentFromReader(httputil.LimitBody(resp.Body))
	if err != nil {
		return false, fmt.Errorf("parsing embed page: %w", err)
	}

	text := strings.ToLower(doc.Find("title").Text() + " " + doc.Find("body").Text())
	for _, m := range markers {
		if strings.Contains(text, m) {
			return false, nil
		}
	}
	return doc.Find(playerSelector).Length() > 0, nil
}

// HeadProbe sends HEAD requests to candidate URLs in order.
type HeadProbe struct {
	URLs   URLFunc
	Client *http.Client
}

// Probe returns true on the first 2xx/3xx answer. If every candidate
// answered 404/410 the title is definitively unavailable; any other
// outcome is an error.
func (p *HeadProbe) Probe(ctx context.Context, kind media.Kind, xrefID string) (bool, error) {
	urls, err := p.URLs(kind, xrefID)
	if err != nil {
		return false, err
	}
	if len(urls) == 0 {
		return false, errNoCandidates
	}

	var errs []error
	notFound := 0
	for _, u := range urls {
		code, err := httputil.Head(ctx, p.Client, u)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		switch {
		case code >= 200 && code < 400:
			return true, nil
		case code == http.StatusNotFound || code == http.StatusGone:
			notFound++
		default:
			errs = append(errs, &httputil.StatusError{Code: code, URL: u})
		}
	}
	if notFound == len(urls) {
		return false, nil
	}
	return false, errors.Join(errs...)
}

// Chain tries strategies in order, each bounded by the same timeout. The
// first definitive answer wins; when all strategies fail the joined error
// is returned so the caller applies its single fallback.
type Chain struct {
	Strategies []Prober
	Timeout    time.Duration
}

func (c *Chain) Probe(ctx context.Context, kind media.Kind, xrefID string) (bool, error) {
	var errs []error
	for _, s := range c.Strategies {
		ok, err := c.try(ctx, s, kind, xrefID)
		if err == nil {
			return ok, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return false, errors.New("no probe strategies configured")
	}
	return false, errors.Join(errs...)
}

func (c *Chain) try(ctx context.Context, s Prober, kind media.Kind, xrefID string) (bool, error) {
	if c.Timeout <= 0 {
		return s.Probe(ctx, kind, xrefID)
	}
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	return s.Probe(ctx, kind, xrefID)
}
