// Package monitor runs the concurrent price-check batches: one bounded
// worker pool per batch, one task per tracked product.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/gauravrohinda/trackprices/internal/alert"
	"github.com/gauravrohinda/trackprices/internal/logger"
	"github.com/gauravrohinda/trackprices/internal/model"
	"github.com/gauravrohinda/trackprices/internal/notify"
)

const defaultWorkers = 5

var (
	checksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_checks_total",
			Help: "Per-product check outcomes",
		},
		[]string{"result"}, // ok | skipped | append_failed
	)
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_notifications_total",
			Help: "Notification events decided, by kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(checksTotal)
	prometheus.MustRegister(notificationsTotal)
}

// Extractor turns a product URL into a scraped (name, price) pair.
type Extractor interface {
	Extract(ctx context.Context, url string) (model.Extraction, error)
}

// HistoryStore is the slice of the price ledger the orchestrator needs.
type HistoryStore interface {
	Append(ctx context.Context, productID string, price float64, observedAt time.Time) error
	Latest(ctx context.Context, productID string) (*float64, error)
}

// ProductSource lists a user's tracked products. The orchestrator never
// mutates products.
type ProductSource interface {
	ListByUser(ctx context.Context, userID string) ([]model.Product, error)
}

// Checker fans a user's product set out across a bounded worker pool,
// scraping each product once per batch and driving the decision policy,
// notifier, and history writes. Reentrant; holds no cross-batch state.
type Checker struct {
	products ProductSource
	history  HistoryStore
	extract  Extractor
	notifier notify.Notifier
	workers  int
}

// NewChecker constructs a Checker. workers <= 0 selects the default width.
func NewChecker(products ProductSource, history HistoryStore, extractor Extractor, notifier notify.Notifier, workers int) *Checker {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Checker{
		products: products,
		history:  history,
		extract:  extractor,
		notifier: notifier,
		workers:  workers,
	}
}

// RunCheck checks every product the user tracks and blocks until the whole
// batch has completed. Per-product failures are logged and skipped; only a
// failure to list the products at all is returned.
func (c *Checker) RunCheck(ctx context.Context, userID string) error {
	ctx, span := otel.Tracer("trackprices").Start(ctx, "RunCheck")
	defer span.End()

	products, err := c.products.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list products for user %s: %w", userID, err)
	}
	if len(products) == 0 {
		return nil
	}

	logger.Log.Info("price check batch started",
		zap.String("user_id", userID),
		zap.Int("products", len(products)),
	)

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	for _, p := range products {
		wg.Add(1)
		sem <- struct{}{}
		go func(p model.Product) {
			defer wg.Done()
			defer func() { <-sem }()
			c.checkProduct(ctx, p)
		}(p)
	}
	wg.Wait()

	logger.Log.Info("price check batch complete", zap.String("user_id", userID))
	return nil
}

// checkProduct runs one product's cycle: extract → latest → decide → notify →
// append. Steps are sequential; no error here aborts the batch.
func (c *Checker) checkProduct(ctx context.Context, p model.Product) {
	res, err := c.extract.Extract(ctx, p.URL)
	if err != nil {
		checksTotal.WithLabelValues("skipped").Inc()
		logger.Log.Warn("extraction failed — skipping product this cycle",
			zap.String("product_id", p.ID),
			zap.String("url", p.URL),
			zap.Error(err),
		)
		return
	}

	last, err := c.history.Latest(ctx, p.ID)
	if err != nil {
		// Treat as no prior observation; threshold alerts still apply.
		logger.Log.Error("latest price lookup failed",
			zap.String("product_id", p.ID),
			zap.Error(err),
		)
		last = nil
	}

	if ev := alert.Decide(p.LowPrice, p.HighPrice, last, res.Price, res.Name); ev != nil {
		notificationsTotal.WithLabelValues(string(ev.Kind)).Inc()
		if err := c.notifier.Notify(ctx, ev.Title, ev.Message); err != nil {
			logger.Log.Warn("notification delivery failed",
				zap.String("product_id", p.ID),
				zap.String("kind", string(ev.Kind)),
				zap.Error(err),
			)
		}
	}

	// The observation is appended regardless of the decision outcome.
	if err := c.history.Append(ctx, p.ID, res.Price, time.Now()); err != nil {
		checksTotal.WithLabelValues("append_failed").Inc()
		logger.Log.Error("history append failed",
			zap.String("product_id", p.ID),
			zap.Error(err),
		)
		return
	}
	checksTotal.WithLabelValues("ok").Inc()
}
