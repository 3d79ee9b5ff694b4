// Package quote resolves current market prices for the folio valuation.
//
// Fetchers get the price of one symbol from a market data provider. FanOut turns
// a Fetcher into a folio.QuoteSource that queries many symbols concurrently.
package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/etnz/folio"
)

// Fetcher returns the current price of one symbol. A symbol the provider does
// not know is reported with an error wrapping folio.ErrQuoteUnavailable.
type Fetcher interface {
	Quote(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Static is a fixed price list, used offline and to override live quotes.
type Static map[string]decimal.Decimal

func (s Static) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if p, ok := s[symbol]; ok {
		return p, nil
	}
	return decimal.Decimal{}, fmt.Errorf("%w: %s", folio.ErrQuoteUnavailable, symbol)
}

// ParseStatic parses "SYMBOL=PRICE" pairs.
func ParseStatic(pairs []string) (Static, error) {
	s := make(Static, len(pairs))
	for _, pair := range pairs {
		symbol, price, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid quote %q, want SYMBOL=PRICE", pair)
		}
		p, err := decimal.NewFromString(strings.TrimSpace(price))
		if err != nil {
			return nil, fmt.Errorf("invalid price in %q: %w", pair, err)
		}
		s[folio.NormalizeSymbol(symbol)] = p
	}
	return s, nil
}

// Overlay answers from the first fetcher that knows the symbol.
type Overlay []Fetcher

func (o Overlay) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	err := fmt.Errorf("%w: %s", folio.ErrQuoteUnavailable, symbol)
	for _, f := range o {
		var p decimal.Decimal
		if p, err = f.Quote(ctx, symbol); err == nil {
			return p, nil
		}
	}
	return decimal.Decimal{}, err
}

// Exchange suffixes used by Yahoo and Finnhub for Indian listings.
const (
	NSE = ".NS"
	BSE = ".BO"
)

// Normalize maps a stored symbol to its exchange listing: "NSE:TCS" becomes
// "TCS.NS", "BSE:500325" becomes "500325.BO" and a bare "RELIANCE" is looked up
// on the NSE. Symbols that already carry a suffix are kept.
func Normalize(symbol string) string {
	s := folio.NormalizeSymbol(symbol)
	switch {
	case strings.HasPrefix(s, "NSE:"):
		return strings.TrimPrefix(s, "NSE:") + NSE
	case strings.HasPrefix(s, "BSE:"):
		return strings.TrimPrefix(s, "BSE:") + BSE
	case strings.Contains(s, "."):
		return s
	default:
		return s + NSE
	}
}
