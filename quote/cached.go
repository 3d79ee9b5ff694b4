package quote

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/shopspring/decimal"
)

// Cached keeps the prices returned by a Fetcher for a while. Failures are not
// cached.
type Cached struct {
	fetcher Fetcher
	c       *ristretto.Cache
	ttl     time.Duration
}

// NewCached wraps f with a cache whose entries expire after ttl.
func NewCached(f Fetcher, ttl time.Duration) (*Cached, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cached{fetcher: f, c: c, ttl: ttl}, nil
}

func (c *Cached) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if v, ok := c.c.Get(symbol); ok {
		return v.(decimal.Decimal), nil
	}
	price, err := c.fetcher.Quote(ctx, symbol)
	if err != nil {
		return decimal.Decimal{}, err
	}
	c.c.SetWithTTL(symbol, price, 1, c.ttl)
	c.c.Wait()
	return price, nil
}

// Close releases the cache.
func (c *Cached) Close() { c.c.Close() }
