package availability

import (
	"context"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"

	"marquee/internal/media"
)

// DefaultBatchSize is how many items are checked concurrently.
const DefaultBatchSize = 5

// XRefResolver maps a catalog item to its cross-reference (IMDb) id.
// An empty id with a nil error means the item has none.
type XRefResolver interface {
	ExternalID(ctx context.Context, kind media.Kind, id int) (string, error)
}

// Filter keeps only the items the embed provider is believed to have.
//
// Items whose cross-reference id is missing, or whose lookup fails, are
// excluded: they cannot be addressed by the embed provider either way.
type Filter struct {
	resolver  XRefResolver
	checker   *Checker
	batchSize int
	log       *log.Logger
}

// NewFilter creates a Filter. batchSize <= 0 uses DefaultBatchSize.
func NewFilter(resolver XRefResolver, checker *Checker, batchSize int, logger *log.Logger) *Filter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Filter{
		resolver:  resolver,
		checker:   checker,
		batchSize: batchSize,
		log:       logger,
	}
}

// FilterBatch returns the available subset of items in input order. Items
// are processed in groups of batchSize: items within a group concurrently,
// groups one after another. A cancelled context stops before the next group
// and drops the unchecked remainder, so callers must check ctx.Err() before
// trusting the result.
func (f *Filter) FilterBatch(ctx context.Context, items []media.Item) []media.Item {
	keep := make([]bool, len(items))

	for start := 0; start < len(items); start += f.batchSize {
		if ctx.Err() != nil {
			break
		}
		end := min(start+f.batchSize, len(items))

		p := pool.New()
		for i := start; i < end; i++ {
			p.Go(func() {
				keep[i] = f.check(ctx, items[i])
			})
		}
		p.Wait()
	}

	out := make([]media.Item, 0, len(items))
	for i, item := range items {
		if keep[i] {
			out = append(out, item)
		}
	}
	return out
}

func (f *Filter) check(ctx context.Context, item media.Item) bool {
	xref, err := f.resolver.ExternalID(ctx, item.Kind, item.ID)
	if err != nil {
		f.log.Warn("cross-reference lookup failed, excluding item", "id", item.ID, "kind", item.Kind, "err", err)
		return false
	}
	if xref == "" {
		f.log.Debug("no cross-reference id, excluding item", "id", item.ID, "kind", item.Kind, "title", item.Title)
		return false
	}
	return f.checker.Check(ctx, item.Kind, xref)
}

// LogResult reports how many fetched items survived filtering.
func (f *Filter) LogResult(label string, fetched, available int) {
	rate := "0.0%"
	if fetched > 0 {
		rate = formatPercent(float64(available) / float64(fetched) * 100)
	}
	f.log.Info(label, "fetched", fetched, "available", available, "rate", rate)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
