package discover

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/metrics"
)

// DefaultEnrichConcurrency bounds concurrent detail lookups per page.
const DefaultEnrichConcurrency = 8

// Enricher augments listing results with one detail lookup each.
type Enricher struct {
	catalog     core.Catalog
	concurrency int64
	logger      *slog.Logger
}

// NewEnricher creates an Enricher. concurrency < 1 uses DefaultEnrichConcurrency.
func NewEnricher(catalog core.Catalog, concurrency int, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = DefaultEnrichConcurrency
	}
	return &Enricher{
		catalog:     catalog,
		concurrency: int64(concurrency),
		logger:      logger,
	}
}

// Enrich looks up details for every result concurrently and returns items in
// the original order. A failed lookup keeps the item with RuntimeUnavailable.
// Items without a title after enrichment are dropped.
func (e *Enricher) Enrich(ctx context.Context, results []core.Result, fallback core.MediaType) []Item {
	items := make([]Item, len(results))
	for i, r := range results {
		mediaType := r.MediaType
		if mediaType == "" {
			mediaType = fallback
		}
		items[i] = itemFromResult(r, mediaType)
	}

	sem := semaphore.NewWeighted(e.concurrency)
	var wg sync.WaitGroup
	for i := range items {
		if items[i].MediaType == "" {
			continue
		}
		if ctx.Err() != nil || sem.Acquire(ctx, 1) != nil {
			// Context done; the remaining items keep the sentinel runtime.
			e.logger.Debug("enrichment cancelled", slog.Int("remaining", len(items)-i))
			break
		}
		wg.Add(1)
		go func(slot *Item) {
			defer wg.Done()
			defer sem.Release(1)
			e.enrichOne(ctx, slot)
		}(&items[i])
	}
	wg.Wait()

	return dropUntitled(items)
}

func (e *Enricher) enrichOne(ctx context.Context, it *Item) {
	details, err := e.catalog.Details(ctx, it.MediaType, it.ID)
	if err != nil {
		metrics.EnrichmentFailures.WithLabelValues(string(it.MediaType)).Inc()
		e.logger.Warn("enrichment failed",
			slog.String("media_type", string(it.MediaType)),
			slog.Int("id", it.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	it.applyDetails(details)
}

func dropUntitled(items []Item) []Item {
	out := items[:0]
	for _, it := range items {
		if it.Title != "" {
			out = append(out, it)
		}
	}
	return out
}
