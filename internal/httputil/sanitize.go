package httputil

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// imdbIDPattern matches IMDb title ids ("tt" followed by 7 to 10 digits).
	imdbIDPattern = regexp.MustCompile(`^tt[0-9]{7,10}$`)

	// hostPattern matches bare host names used for embed domains.
	hostPattern = regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)
)

// ValidateURL checks that a URL is well-formed and uses HTTPS.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("only HTTPS URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateIMDbID checks that an id has the shape of an IMDb title id.
func ValidateIMDbID(id string) error {
	if id == "" {
		return fmt.Errorf("IMDb ID cannot be empty")
	}
	if !imdbIDPattern.MatchString(id) {
		return fmt.Errorf("malformed IMDb ID %q", id)
	}
	return nil
}

// ValidateHost checks that a string is a bare host name (optionally with port).
func ValidateHost(host string) error {
	name := host
	if i := strings.LastIndex(host, ":"); i != -1 {
		name = host[:i]
	}
	if name == "" || !hostPattern.MatchString(name) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid host %q", host)
	}
	return nil
}

// BuildURL constructs a URL from base and path components, encoding each path segment.
func BuildURL(base string, pathSegments ...string) string {
	u := strings.TrimRight(base, "/")
	for _, seg := range pathSegments {
		u += "/" + url.PathEscape(seg)
	}
	return u
}

// WithQuery appends encoded query parameters to a URL.
func WithQuery(base string, params url.Values) string {
	if len(params) == 0 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + params.Encode()
}

// RedactQuery strips credentials from a URL before it is logged or returned in errors.
func RedactQuery(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
