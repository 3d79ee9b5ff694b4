package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/etnz/folio"
)

// EODHDURL is the base address of the EODHD API.
const EODHDURL = "https://eodhd.com/api"

// EODHD fetches delayed prices from the EODHD real-time endpoint.
//
// EODHD names Indian exchanges NSE and BSE: "TCS.NS" is asked as "TCS.NSE".
type EODHD struct {
	APIKey  string
	BaseURL string       // EODHDURL when empty
	Client  *http.Client // http.DefaultClient when nil
}

// eodhdTicker maps an exchange listing to the EODHD ticker.
func eodhdTicker(symbol string) string {
	switch {
	case strings.HasSuffix(symbol, NSE):
		return strings.TrimSuffix(symbol, NSE) + ".NSE"
	case strings.HasSuffix(symbol, BSE):
		return strings.TrimSuffix(symbol, BSE) + ".BSE"
	default:
		return symbol
	}
}

// Quote returns the last price of symbol.
func (e *EODHD) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	base, client := e.BaseURL, e.Client
	if base == "" {
		base = EODHDURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	// https://eodhd.com/api/real-time/TCS.NSE?api_token=demo&fmt=json
	ticker := eodhdTicker(symbol)
	addr := fmt.Sprintf("%s/real-time/%s?fmt=json&api_token=%s", base, url.PathEscape(ticker), url.QueryEscape(e.APIKey))

	// unknown tickers are answered with "NA" fields.
	var resp struct {
		Code  string `json:"code"`
		Close any    `json:"close"`
	}
	if err := jwget(ctx, client, addr, &resp); err != nil {
		var status *statusError
		if errors.As(err, &status) && status.Code == http.StatusNotFound {
			return decimal.Decimal{}, fmt.Errorf("%w: %s: %v", folio.ErrQuoteUnavailable, symbol, err)
		}
		return decimal.Decimal{}, fmt.Errorf("error retrieving %q: %w", ticker, err)
	}
	val, ok := resp.Close.(float64)
	if !ok || val <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: close is %v", folio.ErrQuoteUnavailable, symbol, resp.Close)
	}
	return decimal.NewFromFloat(val), nil
}
