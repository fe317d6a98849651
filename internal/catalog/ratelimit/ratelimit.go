package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"pricedigest/internal/catalog"
)

// Catalog wraps a catalog and gates every Search through a token bucket.
// Concurrent callers queue on the limiter, or return early if the context
// is canceled.
type Catalog struct {
	C catalog.Catalog
	L *rate.Limiter
}

// New returns a Catalog allowing perSecond searches with the given burst.
// A non-positive perSecond disables limiting.
func New(c catalog.Catalog, perSecond float64, burst int) *Catalog {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Catalog{C: c, L: rate.NewLimiter(limit, burst)}
}

// Every returns a Catalog allowing one search per interval.
func Every(c catalog.Catalog, interval time.Duration) *Catalog {
	return &Catalog{C: c, L: rate.NewLimiter(rate.Every(interval), 1)}
}

func (r *Catalog) Name() string { return r.C.Name() }

func (r *Catalog) Search(ctx context.Context, keyword string, itemCount int) ([]catalog.Item, error) {
	if r.L != nil {
		if err := r.L.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return r.C.Search(ctx, keyword, itemCount)
}
