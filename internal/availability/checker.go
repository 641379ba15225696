package availability

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"marquee/internal/httputil"
	"marquee/internal/media"
)

// DefaultProbeTimeout bounds a single probe.
const DefaultProbeTimeout = 5 * time.Second

// statsEvery is how often (in checks) a stats summary is logged.
const statsEvery = 50

// ErrInvalidXRef reports a cross-reference id that cannot address the
// embed provider.
var ErrInvalidXRef = errors.New("invalid cross-reference id")

// ValidateXRef checks the shape of an IMDb title id.
func ValidateXRef(id string) error {
	if err := httputil.ValidateIMDbID(id); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidXRef, err)
	}
	return nil
}

// Stats counts checker outcomes.
type Stats struct {
	Total       int
	Available   int
	Unavailable int
	Errors      int
	CacheHits   int
}

// CheckerOptions configures a Checker.
type CheckerOptions struct {
	Prober  Prober
	Cache   *Cache
	Timeout time.Duration

	// FailOpen is the decision recorded when a probe errors or times out.
	// true treats the title as available.
	FailOpen bool

	Logger *log.Logger
}

// Checker resolves one cross-reference id to a cached availability decision.
type Checker struct {
	prober   Prober
	cache    *Cache
	timeout  time.Duration
	failOpen bool
	log      *log.Logger

	mu    sync.Mutex
	stats Stats
}

// NewChecker creates a Checker. A nil cache gets a private default cache;
// a nil prober is Optimistic.
func NewChecker(opts CheckerOptions) *Checker {
	c := &Checker{
		prober:   opts.Prober,
		cache:    opts.Cache,
		timeout:  opts.Timeout,
		failOpen: opts.FailOpen,
		log:      opts.Logger,
	}
	if c.prober == nil {
		c.prober = Optimistic{}
	}
	if c.cache == nil {
		c.cache = NewCache(DefaultWindow, nil)
	}
	if c.timeout <= 0 {
		c.timeout = DefaultProbeTimeout
	}
	if c.log == nil {
		c.log = log.Default()
	}
	return c
}

// Check returns whether the title is believed to be available. It never
// fails: malformed ids are unavailable, probe failures resolve to the
// fail-open/closed fallback, and every decision is cached. When ctx itself
// is done the fallback is returned without being cached or counted.
func (c *Checker) Check(ctx context.Context, kind media.Kind, xrefID string) bool {
	key := CacheKey{Kind: kind, XRefID: xrefID}

	if v, ok := c.cache.Get(key); ok {
		c.record(func(s *Stats) { s.CacheHits++ })
		return v
	}

	if err := ValidateXRef(xrefID); err != nil {
		c.cache.Set(key, false)
		c.record(func(s *Stats) { s.Unavailable++ })
		c.log.Debug("rejected cross-reference id", "id", xrefID, "kind", kind, "err", err)
		return false
	}

	pctx, cancel := context.WithTimeout(ctx, c.timeout)
	available, err := c.prober.Probe(pctx, kind, xrefID)
	cancel()

	if err != nil && ctx.Err() != nil {
		// The caller gave up, so nothing was learned about the title.
		c.log.Debug("availability check abandoned", "id", xrefID, "kind", kind, "err", ctx.Err())
		return c.failOpen
	}
	if err != nil {
		available = c.failOpen
		c.cache.Set(key, available)
		c.record(func(s *Stats) { s.Errors++ })
		c.log.Warn("availability probe failed, using fallback", "id", xrefID, "kind", kind, "fallback", available, "err", err)
		return available
	}

	c.cache.Set(key, available)
	c.record(func(s *Stats) {
		if available {
			s.Available++
		} else {
			s.Unavailable++
		}
	})
	c.log.Debug("availability probed", "id", xrefID, "kind", kind, "available", available)
	return available
}

// Stats returns a snapshot of the counters.
func (c *Checker) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Checker) record(update func(*Stats)) {
	c.mu.Lock()
	c.stats.Total++
	update(&c.stats)
	snapshot := c.stats
	c.mu.Unlock()

	if snapshot.Total%statsEvery == 0 {
		c.log.Info("availability stats",
			"checks", snapshot.Total,
			"available", percent(snapshot.Available, snapshot.Total),
			"cache_hits", percent(snapshot.CacheHits, snapshot.Total),
			"errors", snapshot.Errors,
		)
	}
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return formatPercent(float64(n) / float64(total) * 100)
}
