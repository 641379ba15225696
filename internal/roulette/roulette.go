// Package roulette picks a random title from the popular listings.
package roulette

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"marquee/internal/media"
)

const (
	// DefaultMaxPage bounds the random page; deep pages are mostly obscure.
	DefaultMaxPage = 10
	// DefaultKeep is how many shuffled candidates are offered.
	DefaultKeep = 12
)

// ErrNoCandidates is returned when a spin yields nothing playable.
var ErrNoCandidates = errors.New("no candidates found")

// FetchFunc fetches a page of the popular listing for kind.
type FetchFunc func(ctx context.Context, kind media.Kind, page int) (media.Page, error)

// Filterer drops titles that cannot be played.
type Filterer interface {
	FilterBatch(ctx context.Context, items []media.Item) []media.Item
}

// Options configures a Picker.
type Options struct {
	Fetch   FetchFunc
	Filter  Filterer // optional
	Rand    *rand.Rand
	MaxPage int
	Keep    int
	Logger  *log.Logger
}

// Picker spins the roulette.
type Picker struct {
	fetch   FetchFunc
	filter  Filterer
	rng     *rand.Rand
	maxPage int
	keep    int
	log     *log.Logger
}

// New creates a Picker. A nil Rand is seeded from the clock.
func New(opts Options) *Picker {
	p := &Picker{
		fetch:   opts.Fetch,
		filter:  opts.Filter,
		rng:     opts.Rand,
		maxPage: opts.MaxPage,
		keep:    opts.Keep,
		log:     opts.Logger,
	}
	if p.rng == nil {
		seed := uint64(time.Now().UnixNano())
		p.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if p.maxPage <= 0 {
		p.maxPage = DefaultMaxPage
	}
	if p.keep <= 0 {
		p.keep = DefaultKeep
	}
	if p.log == nil {
		p.log = log.Default()
	}
	return p
}

// Candidates fetches a random popular page for kind, shuffles it and returns
// at most Keep playable items.
func (p *Picker) Candidates(ctx context.Context, kind media.Kind) ([]media.Item, error) {
	page := p.rng.IntN(p.maxPage) + 1
	p.log.Debug("spinning roulette", "kind", kind, "page", page)

	result, err := p.fetch(ctx, kind, page)
	if err != nil {
		return nil, fmt.Errorf("fetching roulette page %d: %w", page, err)
	}

	items := append([]media.Item(nil), result.Items...)
	p.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	if p.filter != nil {
		items = p.filter.FilterBatch(ctx, items)
	}
	if len(items) == 0 {
		return nil, ErrNoCandidates
	}
	if len(items) > p.keep {
		items = items[:p.keep]
	}
	return items, nil
}

// Spin returns one random playable item of kind.
func (p *Picker) Spin(ctx context.Context, kind media.Kind) (media.Item, error) {
	items, err := p.Candidates(ctx, kind)
	if err != nil {
		return media.Item{}, err
	}
	return items[p.rng.IntN(len(items))], nil
}
