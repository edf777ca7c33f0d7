// Package sources finds and fetches web evidence about a person:
// search with query widening, partition into reference-only and
// scrapeable sources, then paced content fetching under a
// substantiality floor.
package sources

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/malhajar17/jim-and-dwight/internal/config"
	"github.com/malhajar17/jim-and-dwight/internal/llm"
	"github.com/malhajar17/jim-and-dwight/internal/model"
	"github.com/malhajar17/jim-and-dwight/internal/resilience"
	"github.com/malhajar17/jim-and-dwight/pkg/firecrawl"
	"github.com/malhajar17/jim-and-dwight/pkg/jina"
)

// Bundle is the outcome of source collection for one person. Content
// holds one entry per usable scraped source, in fetch order.
type Bundle struct {
	Sources []model.Source
	Content []string
}

// HasContent reports whether any usable content was collected. A false
// value is the explicit "no content" signal, not an error.
func (b *Bundle) HasContent() bool {
	return len(b.Content) > 0
}

// Collector drives search and fetch for one person at a time.
type Collector struct {
	client   jina.Client
	fallback firecrawl.Client
	matcher  *PathMatcher
	pacer    *resilience.Pacer
	cfg      config.SourcesConfig
}

// NewCollector creates a collector. The pacer spaces fetches to respect
// provider rate limits. A nil fallback disables the secondary scraper.
func NewCollector(client jina.Client, fallback firecrawl.Client, pacer *resilience.Pacer, cfg config.SourcesConfig) *Collector {
	return &Collector{
		client:   client,
		fallback: fallback,
		matcher:  NewPathMatcher(cfg.ExcludePaths),
		pacer:    pacer,
		cfg:      cfg.WithDefaults(),
	}
}

// Collect searches with the given query variants (most specific first),
// keeps at most one reference source, and fetches content from the top
// scrapeable candidates. Individual fetch failures are logged and
// skipped; an empty Bundle with a nil error means no content was found.
func (c *Collector) Collect(ctx context.Context, person string, queries []string) (*Bundle, error) {
	log := zap.L().With(zap.String("person", person))
	bundle := &Bundle{}

	results := c.searchWidening(ctx, log, queries)
	if len(results) == 0 {
		log.Info("sources: no search results after all query variants")
		return bundle, ctx.Err()
	}

	reference, scrapeable := partition(results, c.matcher)

	// One reference source is enough for attribution.
	if len(reference) > 0 {
		bundle.Sources = append(bundle.Sources, model.Source{
			URL:   reference[0].URL,
			Title: reference[0].Title,
			Kind:  model.SourceKindReference,
		})
	}

	// Primary fetch round over the top candidates.
	end := min(c.cfg.MaxScrapeSources, len(scrapeable))
	c.fetchSlice(ctx, log, scrapeable[:end], bundle)

	// Top-up round: too few usable sources and candidates remain.
	if len(bundle.Content) < c.cfg.MinUsableSources && end < len(scrapeable) {
		extra := min(end+c.cfg.TopUpAttempts, len(scrapeable))
		log.Debug("sources: topping up from remaining candidates",
			zap.Int("usable", len(bundle.Content)),
			zap.Int("extra_attempts", extra-end),
		)
		c.fetchSlice(ctx, log, scrapeable[end:extra], bundle)
	}

	log.Info("sources: collection complete",
		zap.Int("sources", len(bundle.Sources)),
		zap.Int("usable_content", len(bundle.Content)),
	)
	return bundle, ctx.Err()
}

// searchWidening tries each query variant in order until one returns
// results. Provider errors degrade to empty results.
func (c *Collector) searchWidening(ctx context.Context, log *zap.Logger, queries []string) []jina.SearchResult {
	for _, q := range queries {
		if ctx.Err() != nil {
			return nil
		}
		resp, err := c.client.Search(ctx, q, c.cfg.SearchLimit)
		if err != nil {
			log.Warn("sources: search failed, widening query", zap.String("query", q), zap.Error(err))
			continue
		}
		if len(resp.Data) > 0 {
			log.Debug("sources: search hit", zap.String("query", q), zap.Int("results", len(resp.Data)))
			return resp.Data
		}
		log.Debug("sources: empty results, widening query", zap.String("query", q))
	}
	return nil
}

// fetchSlice fetches each candidate with a paced delay, appending a
// Source record for every attempt and content for usable pages.
func (c *Collector) fetchSlice(ctx context.Context, log *zap.Logger, candidates []jina.SearchResult, bundle *Bundle) {
	for _, cand := range candidates {
		if err := c.pacer.Wait(ctx); err != nil {
			return
		}

		content, ok := c.fetchOne(ctx, log, cand.URL)
		bundle.Sources = append(bundle.Sources, model.Source{
			URL:                 cand.URL,
			Title:               cand.Title,
			ScrapedSuccessfully: ok,
			Kind:                model.SourceKindScraped,
		})
		if ok {
			bundle.Content = append(bundle.Content, content)
		}
	}
}

// fetchOne returns the page content and whether it clears the
// substantiality floor. Content is truncated to the per-source cap.
// When the primary reader fails, the fallback scraper gets one shot.
func (c *Collector) fetchOne(ctx context.Context, log *zap.Logger, url string) (string, bool) {
	content, err := c.readPage(ctx, url)
	if err != nil {
		log.Warn("sources: fetch failed, skipping", zap.String("url", url), zap.Error(err))
		return "", false
	}

	content = strings.TrimSpace(content)
	if len(content) < c.cfg.SubstantialityFloor {
		log.Debug("sources: content below substantiality floor",
			zap.String("url", url),
			zap.Int("length", len(content)),
		)
		return "", false
	}
	// Cap on a rune boundary so stored content stays valid UTF-8.
	content = llm.TruncateRunes(content, c.cfg.PerSourceCap)
	return content, true
}

// readPage fetches through the primary reader, falling back to the
// secondary scraper when configured.
func (c *Collector) readPage(ctx context.Context, url string) (string, error) {
	resp, err := c.client.Read(ctx, url)
	if err == nil {
		return resp.Data.Content, nil
	}
	if c.fallback == nil {
		return "", err
	}

	zap.L().Debug("sources: primary reader failed, trying fallback",
		zap.String("url", url), zap.Error(err))
	scraped, ferr := c.fallback.Scrape(ctx, firecrawl.ScrapeRequest{URL: url})
	if ferr != nil {
		return "", err
	}
	return scraped.Data.Markdown, nil
}
