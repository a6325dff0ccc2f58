// Package model defines shared data structures for the price monitor.
package model

import "time"

// Product is one tracked product page belonging to one user. The URL is
// unique per user; Name stays nil until the first successful scrape.
type Product struct {
	ID        string
	UserID    string
	URL       string
	Name      *string
	LowPrice  float64 // always > 0 once set
	HighPrice float64 // 0 means no high-price alert configured
	CreatedAt time.Time

	// LatestPrice is the most recent observed price, populated by
	// ListByUser. Nil when the product has no history yet.
	LatestPrice *float64
}

// PriceObservation is one appended row of a product's price ledger.
// Rows are immutable once written.
type PriceObservation struct {
	ID         int64
	ProductID  string
	Price      float64
	Source     string
	ObservedAt time.Time
}

// Extraction is the transient result of a successful scrape.
// Price is always > 0 by construction.
type Extraction struct {
	Name  string
	Price float64
}
