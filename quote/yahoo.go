package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"github.com/etnz/folio"
)

// Yahoo fetches the last daily close from the Yahoo Finance chart API.
type Yahoo struct {
	// Lookback is how far back daily bars are requested, to cover weekends and
	// holidays. A week when zero.
	Lookback time.Duration
}

// Quote returns the most recent close of symbol.
func (y *Yahoo) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	lookback := y.Lookback
	if lookback <= 0 {
		lookback = 7 * 24 * time.Hour
	}
	now := time.Now()
	start := now.Add(-lookback)
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&now),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}

	type result struct {
		price decimal.Decimal
		err   error
	}
	// the chart client does not take a context.
	done := make(chan result, 1)
	go func() {
		iter := chart.Get(params)
		var last decimal.Decimal
		for iter.Next() {
			if c := iter.Bar().Close; c.IsPositive() {
				last = c
			}
		}
		if err := iter.Err(); err != nil {
			done <- result{err: fmt.Errorf("failed to get prices for %s: %w", symbol, err)}
			return
		}
		done <- result{price: last}
	}()

	select {
	case <-ctx.Done():
		return decimal.Decimal{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return decimal.Decimal{}, r.err
		}
		if !r.price.IsPositive() {
			return decimal.Decimal{}, fmt.Errorf("%w: %s has no recent close", folio.ErrQuoteUnavailable, symbol)
		}
		return r.price, nil
	}
}
