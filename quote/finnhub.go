package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/etnz/folio"
)

// FinnhubURL is the base address of the Finnhub REST API.
const FinnhubURL = "https://finnhub.io/api/v1"

/*
Finnhub answers GET /quote?symbol=RELIANCE.NS&token=... with

	{
	    "c": 2945.5,    current price
	    "d": 12.3,      change
	    "dp": 0.42,     percent change
	    "h": 2950,      high of the day
	    "l": 2920.1,    low of the day
	    "o": 2931,      open
	    "pc": 2933.2,   previous close
	    "t": 1717142400
	}

An unknown symbol is answered with every field at 0.
*/

// Finnhub fetches last prices from the Finnhub quote endpoint.
type Finnhub struct {
	APIKey  string
	BaseURL string       // FinnhubURL when empty
	Client  *http.Client // http.DefaultClient when nil
}

// Quote returns the current price of symbol. A zero price is reported as
// folio.ErrQuoteUnavailable.
func (f *Finnhub) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	base, client := f.BaseURL, f.Client
	if base == "" {
		base = FinnhubURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	addr := fmt.Sprintf("%s/quote?symbol=%s&token=%s", base, url.QueryEscape(symbol), url.QueryEscape(f.APIKey))

	var jobj any
	if err := jwget(ctx, client, addr, &jobj); err != nil {
		var status *statusError
		if errors.As(err, &status) && status.Code == http.StatusNotFound {
			return decimal.Decimal{}, fmt.Errorf("%w: %s: %v", folio.ErrQuoteUnavailable, symbol, err)
		}
		return decimal.Decimal{}, fmt.Errorf("error retrieving %q: %w", symbol, err)
	}
	path := "$.c"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: %q %v", folio.ErrQuoteUnavailable, symbol, path, err)
	}
	val, ok := jval.(float64)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: %q is not a number: %v", folio.ErrQuoteUnavailable, symbol, path, jval)
	}
	if val <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", folio.ErrQuoteUnavailable, symbol)
	}
	return decimal.NewFromFloat(val), nil
}
