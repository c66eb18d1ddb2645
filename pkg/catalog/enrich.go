package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/keyscope/pkg/content"
	"github.com/umputun/keyscope/pkg/domain"
)

//go:generate moq -out mocks/page_fetcher.go -pkg mocks -skip-ensure -fmt goimports . PageFetcher
//go:generate moq -out mocks/page_extractor.go -pkg mocks -skip-ensure -fmt goimports . PageExtractor
//go:generate moq -out mocks/page_cache.go -pkg mocks -skip-ensure -fmt goimports . PageCache

// PageFetcher retrieves raw page HTML, either over plain HTTP or through a
// headless browser.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// PageExtractor pulls structured page info out of raw HTML.
type PageExtractor interface {
	Extract(rawHTML, pageURL string) (*content.PageInfo, error)
}

// PageCache persists fetched pages between runs.
type PageCache interface {
	GetPage(ctx context.Context, pageURL string) (*domain.Page, error)
	UpsertPage(ctx context.Context, page *domain.Page) error
}

// Enricher fills catalog items with page details, cache first, crawl second.
type Enricher struct {
	fetcher     PageFetcher
	extractor   PageExtractor
	cache       PageCache
	concurrency int
	delay       time.Duration
	force       bool
}

// EnricherParams configures the enricher
type EnricherParams struct {
	Fetcher     PageFetcher
	Extractor   PageExtractor
	Cache       PageCache
	Concurrency int           // parallel page fetches, defaults to 4
	Delay       time.Duration // pause after each network fetch
	ForceCrawl  bool          // bypass cache reads, refresh every page
}

// NewEnricher creates an enricher. Cache may be nil, every page is then
// fetched fresh and nothing is persisted.
func NewEnricher(p EnricherParams) *Enricher {
	if p.Concurrency <= 0 {
		p.Concurrency = 4
	}
	return &Enricher{
		fetcher:     p.Fetcher,
		extractor:   p.Extractor,
		cache:       p.Cache,
		concurrency: p.Concurrency,
		delay:       p.Delay,
		force:       p.ForceCrawl,
	}
}

// Enrich fetches page details for every item with bounded parallelism.
// Failed pages keep their catalog name with empty description and tags, the
// run proceeds with what it has. Returns early on context cancellation with
// whatever was enriched so far.
func (e *Enricher) Enrich(ctx context.Context, items []domain.Item) ([]domain.Item, error) {
	result := make([]domain.Item, len(items))
	var fromCache, fetched, failed int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, item := range items {
		result[i] = item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result[i] = e.enrichOne(gctx, item, &fromCache, &fetched, &failed)
			return nil
		})
	}
	err := g.Wait()

	lgr.Printf("[INFO] enriched %d items: %d from cache, %d fetched, %d failed",
		len(items), atomic.LoadInt32(&fromCache), atomic.LoadInt32(&fetched), atomic.LoadInt32(&failed))
	return result, err
}

func (e *Enricher) enrichOne(ctx context.Context, item domain.Item, fromCache, fetched, failed *int32) domain.Item {
	if e.cache != nil && !e.force {
		page, err := e.cache.GetPage(ctx, item.URL)
		if err != nil {
			lgr.Printf("[WARN] page cache read failed for %s: %v", item.URL, err)
		}
		if page != nil {
			atomic.AddInt32(fromCache, 1)
			return e.apply(item, page.Name, page.Description, page.Tags)
		}
	}

	// slow down between page fetches, cached entries skip the nap
	defer e.pause(ctx)

	rawHTML, err := e.fetcher.Fetch(ctx, item.URL)
	if err != nil {
		atomic.AddInt32(failed, 1)
		lgr.Printf("[WARN] fetch failed for %s: %v", item.URL, err)
		return item
	}

	info, err := e.extractor.Extract(rawHTML, item.URL)
	if err != nil {
		atomic.AddInt32(failed, 1)
		lgr.Printf("[WARN] extract failed for %s: %v", item.URL, err)
		return item
	}
	atomic.AddInt32(fetched, 1)

	item = e.apply(item, info.Name, info.Description, info.Tags)
	if e.cache != nil {
		page := &domain.Page{URL: item.URL, Name: item.Name, Description: item.Description,
			Tags: item.Tags, FetchedAt: time.Now()}
		if err := e.cache.UpsertPage(ctx, page); err != nil {
			lgr.Printf("[WARN] page cache write failed for %s: %v", item.URL, err)
		}
	}
	return item
}

// apply merges page details into the item. The page name wins over the
// catalog name when present.
func (e *Enricher) apply(item domain.Item, name, description string, tags []string) domain.Item {
	if name != "" {
		item.Name = name
	}
	item.Description = description
	item.Tags = tags
	return item
}

func (e *Enricher) pause(ctx context.Context) {
	if e.delay <= 0 {
		return
	}
	select {
	case <-time.After(e.delay):
	case <-ctx.Done():
	}
}
