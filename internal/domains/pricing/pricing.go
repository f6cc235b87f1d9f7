// Package pricing holds the static TLD price table and the locale-specific
// price formatting the frontend depends on.
package pricing

import (
	"fmt"
	"strings"

	"zorgsites/internal/domains/dnsname"
)

// Price is a yearly sale price and wholesale cost in eurocents.
type Price struct {
	SaleCents int64
	CostCents int64
}

// Prices per TLD. Sale prices are what the customer pays per year; cost is
// what the registrar charges us.
var tldPrices = map[string]Price{
	".nl":     {SaleCents: 1250, CostCents: 499},
	".com":    {SaleCents: 1499, CostCents: 899},
	".eu":     {SaleCents: 999, CostCents: 399},
	".be":     {SaleCents: 1299, CostCents: 649},
	".net":    {SaleCents: 1699, CostCents: 1099},
	".org":    {SaleCents: 1599, CostCents: 999},
	".online": {SaleCents: 3499, CostCents: 2499},
	".zorg":   {SaleCents: 2499, CostCents: 1599},
}

// defaultPrice covers TLDs outside the table.
var defaultPrice = Price{SaleCents: 1999, CostCents: 1299}

// ForDomain returns the yearly price for a domain based on its TLD, falling
// back to the default for unknown TLDs.
func ForDomain(domain string) Price {
	return ForTLD(dnsname.TLD(domain))
}

// ForTLD returns the yearly price for a TLD (leading dot included).
func ForTLD(tld string) Price {
	if p, ok := tldPrices[strings.ToLower(tld)]; ok {
		return p
	}
	return defaultPrice
}

// Euros returns the sale price in euros as a float for API payloads.
func (p Price) Euros() float64 {
	return float64(p.SaleCents) / 100
}

// Format renders the sale price the way the Dutch frontend shows it:
// comma decimal separator, per-year suffix. 1250 cents → "€12,50/jaar".
// The exact format is load-bearing; the frontend string-matches it.
func (p Price) Format() string {
	return FormatEuros(p.Euros())
}

// FormatEuros renders a euro amount with the Dutch comma decimal separator.
func FormatEuros(amount float64) string {
	cents := int64(amount*100 + 0.5)
	return fmt.Sprintf("€%d,%02d/jaar", cents/100, cents%100)
}
