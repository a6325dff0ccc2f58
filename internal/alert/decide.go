// Package alert implements the notification decision policy for observed
// prices: absolute threshold breaches first, then deltas against the last
// recorded observation.
package alert

import "fmt"

// Kind identifies which notification policy fired.
type Kind string

const (
	KindDropAlert     Kind = "PRICE_DROP_ALERT"
	KindIncreaseAlert Kind = "PRICE_INCREASE_ALERT"
	KindDrop          Kind = "PRICE_DROP"
	KindIncrease      Kind = "PRICE_INCREASE"
)

// Event is one notification decided for a single price check.
type Event struct {
	Kind    Kind
	Title   string
	Message string
}

// Decide evaluates thresholds and the last observation against a freshly
// scraped price and returns at most one event, or nil.
//
// Priority order, first match wins:
//  1. price <= low            → PRICE_DROP_ALERT
//  2. high > 0, price >= high → PRICE_INCREASE_ALERT
//  3. last set, price < last  → PRICE_DROP
//  4. last set, price > last  → PRICE_INCREASE
//
// Threshold breaches always beat deltas — even if the price moved the other
// way relative to the last observation, the threshold event wins. high == 0
// means no high-price alert is configured.
func Decide(low, high float64, last *float64, price float64, name string) *Event {
	switch {
	case price <= low:
		return &Event{
			Kind:    KindDropAlert,
			Title:   "Price Drop Alert!",
			Message: fmt.Sprintf("The price of %s has dropped to %.2f! Original target was %.2f.", name, price, low),
		}
	case high > 0 && price >= high:
		return &Event{
			Kind:    KindIncreaseAlert,
			Title:   "Price Increase Alert!",
			Message: fmt.Sprintf("The price of %s has increased to %.2f! Original high price was %.2f.", name, price, high),
		}
	case last != nil && price < *last:
		return &Event{
			Kind:    KindDrop,
			Title:   "Price Drop!",
			Message: fmt.Sprintf("The price of %s has dropped to %.2f.", name, price),
		}
	case last != nil && price > *last:
		return &Event{
			Kind:    KindIncrease,
			Title:   "Price Increase!",
			Message: fmt.Sprintf("The price of %s has increased to %.2f.", name, price),
		}
	default:
		return nil
	}
}
