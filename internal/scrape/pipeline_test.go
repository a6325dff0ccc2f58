package scrape_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gauravrohinda/trackprices/internal/scrape"
)

// Rules match domains as URL substrings, so test URLs carry the domain in
// the path against a local server.
func newSiteServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, page := range pages {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(page))
		})
	}
	return httptest.NewServer(mux)
}

func TestPipelineExtract_Success(t *testing.T) {
	ts := newSiteServer(t, map[string]string{"/amazon.in/dp/B0XYZ": amazonPage})
	defer ts.Close()

	p := scrape.NewPipeline(scrape.NewFetcher(), scrape.NewRegistry())
	got, err := p.Extract(context.Background(), ts.URL+"/amazon.in/dp/B0XYZ")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Name != "Echo Dot (4th Gen) Smart Speaker" || got.Price != 49.99 {
		t.Errorf("Extract = %+v", got)
	}
}

func TestPipelineExtract_FetchFailureCollapses(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	p := scrape.NewPipeline(scrape.NewFetcher(), scrape.NewRegistry())
	_, err := p.Extract(context.Background(), ts.URL+"/amazon.in/dp/B0XYZ")
	var fe *scrape.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
}

func TestPipelineExtract_UnsupportedSite(t *testing.T) {
	ts := newSiteServer(t, map[string]string{"/shop.example.org/item": amazonPage})
	defer ts.Close()

	p := scrape.NewPipeline(scrape.NewFetcher(), scrape.NewRegistry())
	_, err := p.Extract(context.Background(), ts.URL+"/shop.example.org/item")
	if !errors.Is(err, scrape.ErrUnsupportedSite) {
		t.Errorf("err = %v, want ErrUnsupportedSite", err)
	}
}

func TestPipelineExtract_SelectorDrift(t *testing.T) {
	// Page shape changed: the old price selector finds nothing.
	drifted := `<html><body><span id="productTitle">Echo Dot</span><span class="new-price">49.99</span></body></html>`
	ts := newSiteServer(t, map[string]string{"/amazon.com/dp/B0XYZ": drifted})
	defer ts.Close()

	p := scrape.NewPipeline(scrape.NewFetcher(), scrape.NewRegistry())
	_, err := p.Extract(context.Background(), ts.URL+"/amazon.com/dp/B0XYZ")
	if !errors.Is(err, scrape.ErrSelectorMiss) {
		t.Errorf("err = %v, want ErrSelectorMiss", err)
	}
}
