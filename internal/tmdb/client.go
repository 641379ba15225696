// Package tmdb is the metadata client for The Movie Database v3 API.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"marquee/internal/httputil"
	"marquee/internal/media"
)

const (
	// maxPages is TMDB's hard cap; requests beyond page 500 are rejected.
	maxPages = 500

	DefaultPosterSize   = "w500"
	DefaultBackdropSize = "w1280"
)

// ErrInvalidPage is returned for page numbers outside 1..500.
var ErrInvalidPage = errors.New("page out of range")

// Options configures a Client.
type Options struct {
	APIKey    string
	Language  string
	BaseURL   string // e.g. "https://api.themoviedb.org/3"
	ImageBase string // e.g. "https://image.tmdb.org/t/p"

	HTTPClient *http.Client
	Logger     *log.Logger

	// XRefLimiter throttles external id lookups, which fan out per item.
	XRefLimiter *rate.Limiter
}

// Client implements the metadata source operations against TMDB.
type Client struct {
	apiKey    string
	language  string
	baseURL   string
	imageBase string
	client    *http.Client
	limiter   *rate.Limiter
	log       *log.Logger
}

// New creates a TMDB client. Zero-valued options fall back to defaults.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("no TMDB API key configured (set api_key or TMDB_API_KEY)")
	}
	c := &Client{
		apiKey:    opts.APIKey,
		language:  opts.Language,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		imageBase: strings.TrimRight(opts.ImageBase, "/"),
		client:    opts.HTTPClient,
		limiter:   opts.XRefLimiter,
		log:       opts.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = "https://api.themoviedb.org/3"
	}
	if c.imageBase == "" {
		c.imageBase = "https://image.tmdb.org/t/p"
	}
	if c.language == "" {
		c.language = "en-US"
	}
	if c.client == nil {
		c.client = httputil.NewClient()
	}
	if c.limiter == nil {
		c.limiter = rate.NewLimiter(rate.Limit(20), 5)
	}
	if c.log == nil {
		c.log = log.Default()
	}
	return c, nil
}

// endpointURL assembles an API URL with credentials and language.
func (c *Client) endpointURL(endpoint string, params url.Values) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	return httputil.WithQuery(c.baseURL+endpoint, q)
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	u := c.endpointURL(endpoint, params)
	c.log.Debug("tmdb request", "endpoint", endpoint, "params", params.Encode())
	if err := httputil.GetJSON(ctx, c.client, u, v); err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) {
			return fmt.Errorf("TMDB API error: status %d", se.Code)
		}
		return err
	}
	return nil
}

// Page fetches one page of a category. genreID is required for by-genre
// categories and ignored otherwise.
func (c *Client) Page(ctx context.Context, category Category, page, genreID int) (media.Page, error) {
	if _, ok := categories[category]; !ok {
		return media.Page{}, fmt.Errorf("unknown category %q", category)
	}
	if page < 1 || page > maxPages {
		return media.Page{}, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if category.NeedsGenre() {
		if genreID <= 0 {
			return media.Page{}, ErrGenreRequired
		}
		params.Set("with_genres", strconv.Itoa(genreID))
	}

	var dto pageDTO
	if err := c.get(ctx, category.endpoint(), params, &dto); err != nil {
		return media.Page{}, fmt.Errorf("getting %s page %d: %w", category, page, err)
	}

	result := parsePage(dto, category.Kind())
	if result.Page == 0 {
		result.Page = page
	}
	return result, nil
}

// PageFunc binds a category and genre into a page fetcher for a loader.
func (c *Client) PageFunc(category Category, genreID int) func(ctx context.Context, page int) (media.Page, error) {
	return func(ctx context.Context, page int) (media.Page, error) {
		return c.Page(ctx, category, page, genreID)
	}
}

// Genres returns the genre list for a kind.
func (c *Client) Genres(ctx context.Context, kind media.Kind) ([]media.Genre, error) {
	var dto genresDTO
	if err := c.get(ctx, "/genre/"+kind.String()+"/list", nil, &dto); err != nil {
		return nil, fmt.Errorf("getting %s genres: %w", kind, err)
	}
	return parseGenres(dto), nil
}

// ExternalID returns the IMDb id for a TMDB item, or "" when TMDB has none.
// Calls are throttled by the cross-reference limiter.
func (c *Client) ExternalID(ctx context.Context, kind media.Kind, id int) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("invalid TMDB id %d", id)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	var dto externalIDsDTO
	endpoint := fmt.Sprintf("/%s/%d/external_ids", kind, id)
	if err := c.get(ctx, endpoint, nil, &dto); err != nil {
		return "", fmt.Errorf("getting external ids for %s %d: %w", kind, id, err)
	}
	return strings.TrimSpace(dto.IMDbID), nil
}

// Search runs a multi search. Results of both kinds are returned, each
// tagged with its kind; people are dropped.
func (c *Client) Search(ctx context.Context, query string, page int) ([]media.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	var dto pageDTO
	if err := c.get(ctx, "/search/multi", params, &dto); err != nil {
		return nil, fmt.Errorf("searching for %q: %w", query, err)
	}

	items := make([]media.Item, 0, len(dto.Results))
	for _, r := range dto.Results {
		kind, ok := kindFromMediaType(r.MediaType)
		if !ok || r.ID <= 0 {
			continue
		}
		items = append(items, r.toItem(kind))
	}
	return items, nil
}

// Details fetches extended metadata (runtime, genres, seasons).
func (c *Client) Details(ctx context.Context, kind media.Kind, id int) (media.Details, error) {
	if id <= 0 {
		return media.Details{}, fmt.Errorf("invalid TMDB id %d", id)
	}

	var dto detailsDTO
	endpoint := fmt.Sprintf("/%s/%d", kind, id)
	if err := c.get(ctx, endpoint, nil, &dto); err != nil {
		return media.Details{}, fmt.Errorf("getting %s %d details: %w", kind, id, err)
	}
	return parseDetails(dto, kind), nil
}

// PosterURL returns the full poster URL, or "" when the item has none.
func (c *Client) PosterURL(path, size string) string {
	return c.imageURL(path, size, DefaultPosterSize)
}

// BackdropURL returns the full backdrop URL, or "" when the item has none.
func (c *Client) BackdropURL(path, size string) string {
	return c.imageURL(path, size, DefaultBackdropSize)
}

func (c *Client) imageURL(path, size, fallback string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = fallback
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.imageBase + "/" + size + path
}
