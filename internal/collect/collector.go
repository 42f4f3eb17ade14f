// Package collect gathers a bounded random sample of articles from a
// paginated search endpoint.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/qiita-stats/qiistat/internal/qiita"
)

// Searcher fetches one page of search results. A failed page is
// reported as an error; the collector treats it as empty and moves on.
type Searcher interface {
	Search(ctx context.Context, query string, page, perPage int) ([]qiita.Article, error)
}

// Collector accumulates articles across pages and trims the result to
// a target sample size. The random source is used for page selection
// and sample trimming; the two draws are independent.
type Collector struct {
	searcher Searcher
	rng      *rand.Rand
	logger   *slog.Logger
}

// NewCollector creates a Collector. A nil rng gets a fresh PCG source.
func NewCollector(searcher Searcher, rng *rand.Rand, logger *slog.Logger) *Collector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Collector{
		searcher: searcher,
		rng:      rng,
		logger:   logger,
	}
}

// FindLastValidPage returns the highest page in [1, MaxPages] that
// still has results for query, or 0 when page 1 is already empty.
// The emptiness of pages is monotonic past the end of the result set,
// so a binary search needs at most seven probes after the initial
// page-1 check.
func (c *Collector) FindLastValidPage(ctx context.Context, query string) int {
	if len(c.fetchPage(ctx, query, 1)) == 0 {
		return 0
	}

	left, right := 1, qiita.MaxPages
	lastValid := 1

	for left <= right {
		mid := (left + right) / 2
		if len(c.fetchPage(ctx, query, mid)) > 0 {
			lastValid = mid
			left = mid + 1
		} else {
			right = mid - 1
		}
	}
	return lastValid
}

// SelectPages decides which pages to fetch for a target sample size.
// When the sample covers everything theoretically available, all pages
// are returned in order. Otherwise just enough pages are drawn
// uniformly at random, so the sample is not biased toward the front of
// the result set.
func (c *Collector) SelectPages(lastPage, sampleSize int) []int {
	allPages := func() []int {
		pages := make([]int, lastPage)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	if sampleSize >= lastPage*qiita.MaxPerPage {
		return allPages()
	}

	needed := sampleSize/qiita.MaxPerPage + 1
	if needed > lastPage {
		return allPages()
	}

	perm := c.rng.Perm(lastPage)
	pages := make([]int, needed)
	for i := 0; i < needed; i++ {
		pages[i] = perm[i] + 1
	}
	return pages
}

// Collect fetches the given pages in order until sampleSize articles
// have accumulated, then trims any excess with a uniform random sample
// without replacement. An entirely empty result is an error: the run
// has nothing to aggregate and the caller must stop.
func (c *Collector) Collect(ctx context.Context, query string, sampleSize int, pages []int) ([]qiita.Article, error) {
	var collected []qiita.Article

	for _, page := range pages {
		articles := c.fetchPage(ctx, query, page)
		c.logger.Info("fetched page", "page", page, "articles", len(articles))
		collected = append(collected, articles...)
		if len(collected) >= sampleSize {
			break
		}
	}

	if len(collected) == 0 {
		return nil, fmt.Errorf("no articles found: check the date range and query")
	}

	if len(collected) > sampleSize {
		collected = c.sample(collected, sampleSize)
	}
	return collected, nil
}

// fetchPage wraps one Search call, mapping failure to an empty page.
func (c *Collector) fetchPage(ctx context.Context, query string, page int) []qiita.Article {
	articles, err := c.searcher.Search(ctx, query, page, qiita.MaxPerPage)
	if err != nil {
		c.logger.Warn("page fetch failed, treating as empty", "page", page, "error", err)
		return nil
	}
	return articles
}

// sample draws n articles uniformly without replacement.
func (c *Collector) sample(articles []qiita.Article, n int) []qiita.Article {
	perm := c.rng.Perm(len(articles))
	out := make([]qiita.Article, n)
	for i := 0; i < n; i++ {
		out[i] = articles[perm[i]]
	}
	return out
}
