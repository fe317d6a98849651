package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pricedigest/internal/catalog"
	"pricedigest/internal/logger"
	"pricedigest/internal/metrics"
	"pricedigest/internal/normalize"
	"pricedigest/internal/quote"
)

// DefaultMaxItems is the per-keyword result bound used when none is set.
const DefaultMaxItems = 10

// Failure records a catalog error for one keyword.
type Failure struct {
	Keyword string
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("search %q: %v", f.Keyword, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Searcher queries a catalog per keyword and normalizes the results.
type Searcher struct {
	Catalog catalog.Catalog
	// MaxItems bounds the records taken per keyword. Zero means DefaultMaxItems.
	MaxItems int
	// Concurrency is the number of keywords searched at once. Values
	// below 2 search sequentially.
	Concurrency int
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

func (s *Searcher) maxItems() int {
	if s.MaxItems <= 0 {
		return DefaultMaxItems
	}
	return s.MaxItems
}

// query performs the catalog call and bounds its result.
func (s *Searcher) query(ctx context.Context, keyword string) ([]catalog.Item, error) {
	n := s.maxItems()
	items, err := s.Catalog.Search(ctx, keyword, n)
	if err != nil {
		return nil, &Failure{Keyword: keyword, Err: err}
	}
	if len(items) > n {
		items = items[:n]
	}
	return items, nil
}

// Search returns the normalized quotes for one keyword in catalog order.
// A failed search is logged and yields no quotes.
func (s *Searcher) Search(ctx context.Context, keyword string) []quote.ProductQuote {
	log := logger.OrNop(s.Logger)

	items, err := s.query(ctx, keyword)
	if err != nil {
		s.Metrics.ObserveSearch(metrics.SearchFailed)
		log.Warn("search failed", zap.String("keyword", keyword), zap.Error(err))
		return nil
	}
	s.Metrics.ObserveSearch(metrics.SearchOK)

	out := make([]quote.ProductQuote, 0, len(items))
	for _, item := range items {
		q, ok := normalize.Quote(item, keyword)
		switch {
		case !ok:
			s.Metrics.ObserveQuote(metrics.QuoteRejected)
			continue
		case q.HasPrice():
			s.Metrics.ObserveQuote(metrics.QuotePriced)
		default:
			s.Metrics.ObserveQuote(metrics.QuoteUnpriced)
		}
		out = append(out, q)
	}
	log.Debug("search done",
		zap.String("keyword", keyword),
		zap.Int("records", len(items)),
		zap.Int("quotes", len(out)),
	)
	return out
}

// SearchAll searches every keyword and concatenates the quotes in keyword
// order, whether or not the searches ran concurrently.
func (s *Searcher) SearchAll(ctx context.Context, keywords []string) []quote.ProductQuote {
	if s.Concurrency < 2 || len(keywords) < 2 {
		var out []quote.ProductQuote
		for _, kw := range keywords {
			out = append(out, s.Search(ctx, kw)...)
		}
		return out
	}

	slots := make([][]quote.ProductQuote, len(keywords))
	var g errgroup.Group
	g.SetLimit(s.Concurrency)
	for i, kw := range keywords {
		i, kw := i, kw
		g.Go(func() error {
			slots[i] = s.Search(ctx, kw)
			return nil
		})
	}
	_ = g.Wait()

	var out []quote.ProductQuote
	for _, qs := range slots {
		out = append(out, qs...)
	}
	return out
}
