package scrape

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/gauravrohinda/trackprices/internal/model"
)

// Pipeline turns a product URL into a scraped (name, price) pair. Any stage
// failure collapses to a single error carrying no partial data; callers treat
// it as "skip this product this cycle".
type Pipeline struct {
	fetcher  *Fetcher
	registry *Registry
}

// NewPipeline constructs a Pipeline.
func NewPipeline(f *Fetcher, r *Registry) *Pipeline {
	return &Pipeline{fetcher: f, registry: r}
}

// Extract fetches url, parses the page, and applies the matching site rule.
func (p *Pipeline) Extract(ctx context.Context, url string) (model.Extraction, error) {
	body, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return model.Extraction{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return model.Extraction{}, fmt.Errorf("parse %s: %w", url, err)
	}

	return p.registry.Extract(url, doc)
}
