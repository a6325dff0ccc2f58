// Package scrape implements product page fetching and price extraction.
package scrape

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gauravrohinda/trackprices/internal/model"
)

// priceNumeral extracts the first decimal numeral from a cleaned price string.
var priceNumeral = regexp.MustCompile(`\$?(\d+\.?\d*)`)

var (
	ErrUnsupportedSite = errors.New("no extraction rule matches URL")
	ErrSelectorMiss    = errors.New("selector matched no node")
	ErrBadPrice        = errors.New("price text has no parsable numeral")
)

// Rule locates a product's name and price within parsed page content for one
// site family. Domains are matched as substrings of the URL.
type Rule struct {
	Site     string
	Domains  []string
	NameSel  string
	PriceSel string
}

// Extract applies the rule's selectors to a parsed document.
func (ru *Rule) Extract(doc *goquery.Document) (model.Extraction, error) {
	nameNode := doc.Find(ru.NameSel).First()
	if nameNode.Length() == 0 {
		return model.Extraction{}, fmt.Errorf("%s name selector %q: %w", ru.Site, ru.NameSel, ErrSelectorMiss)
	}

	priceNode := doc.Find(ru.PriceSel).First()
	if priceNode.Length() == 0 {
		return model.Extraction{}, fmt.Errorf("%s price selector %q: %w", ru.Site, ru.PriceSel, ErrSelectorMiss)
	}

	price, err := parsePrice(priceNode.Text())
	if err != nil {
		return model.Extraction{}, fmt.Errorf("%s price %q: %w", ru.Site, strings.TrimSpace(priceNode.Text()), err)
	}

	return model.Extraction{
		Name:  strings.TrimSpace(nameNode.Text()),
		Price: price,
	}, nil
}

// siteRules is the ordered site table. The first rule with a matching domain
// wins; adding a site is appending one entry.
var siteRules = []Rule{
	{
		Site:     "amazon",
		Domains:  []string{"amazon.in", "amazon.com"},
		NameSel:  "#productTitle",
		PriceSel: ".a-price-whole, #corePrice_feature_div .a-offscreen",
	},
	{
		Site:     "flipkart",
		Domains:  []string{"flipkart.com"},
		NameSel:  "span.B_NuCI",
		PriceSel: "div._30jeq3, div._16Jk6d ._30jeq3",
	},
	{
		Site:     "myntra",
		Domains:  []string{"myntra.com"},
		NameSel:  ".pdp-title",
		PriceSel: ".pdp-price .pdp-price-amount",
	},
}

// Registry selects extraction rules by URL.
type Registry struct {
	rules []Rule
}

// NewRegistry returns a Registry over the built-in site table.
func NewRegistry() *Registry {
	return &Registry{rules: siteRules}
}

// Lookup returns the first rule whose domain appears in url.
func (r *Registry) Lookup(url string) (*Rule, bool) {
	for i := range r.rules {
		for _, d := range r.rules[i].Domains {
			if strings.Contains(url, d) {
				return &r.rules[i], true
			}
		}
	}
	return nil, false
}

// Extract selects the rule for url and applies it to doc.
func (r *Registry) Extract(url string, doc *goquery.Document) (model.Extraction, error) {
	rule, ok := r.Lookup(url)
	if !ok {
		return model.Extraction{}, fmt.Errorf("%q: %w", url, ErrUnsupportedSite)
	}
	return rule.Extract(doc)
}

// parsePrice normalizes a raw price string (thousands separators, currency
// symbols) and parses the first numeral. Zero is not a valid price.
func parsePrice(text string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	m := priceNumeral.FindStringSubmatch(cleaned)
	if m == nil {
		return 0, ErrBadPrice
	}
	price, err := strconv.ParseFloat(m[1], 64)
	if err != nil || price <= 0 {
		return 0, ErrBadPrice
	}
	return price, nil
}
