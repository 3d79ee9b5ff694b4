package quote

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/etnz/folio"
)

// FanOut queries a Fetcher for many symbols concurrently. It implements
// folio.QuoteSource.
//
// Failures are per symbol: a symbol that cannot be priced is left out of the
// result. Only when every lookup failed on a transport error does QuotePrices
// report folio.ErrUpstreamUnavailable. There is no retry.
type FanOut struct {
	Fetcher Fetcher
	// Limit bounds the number of concurrent lookups, 8 when zero.
	Limit int
	// Normalize maps stored symbols to provider symbols. Results are keyed by
	// the stored symbol.
	Normalize func(string) string
	Logger    *zap.SugaredLogger
}

// QuotePrices implements folio.QuoteSource.
func (f *FanOut) QuotePrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	log := f.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 8
	}

	symbols = slices.Compact(slices.Sorted(slices.Values(symbols)))
	prices := make(map[string]decimal.Decimal, len(symbols))
	var (
		mu       sync.Mutex
		failures []error
		missing  int
	)

	var g errgroup.Group
	g.SetLimit(limit)
	for _, symbol := range symbols {
		g.Go(func() error {
			lookup := symbol
			if f.Normalize != nil {
				lookup = f.Normalize(symbol)
			}
			price, err := f.Fetcher.Quote(ctx, lookup)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && price.IsPositive():
				prices[symbol] = price
			case err == nil, errors.Is(err, folio.ErrQuoteUnavailable):
				missing++
				log.Debugw("no quote", "symbol", symbol, "lookup", lookup)
			default:
				failures = append(failures, fmt.Errorf("%s: %w", lookup, err))
			}
			return nil // one symbol never fails the others
		})
	}
	_ = g.Wait()

	if len(failures) > 0 && len(prices) == 0 && missing == 0 {
		return nil, fmt.Errorf("%w: %w", folio.ErrUpstreamUnavailable, errors.Join(failures...))
	}
	for _, err := range failures {
		log.Warnw("quote lookup failed", "err", err)
	}
	return prices, nil
}
