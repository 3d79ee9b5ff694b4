package folio

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func equity(symbol string, quantity, avgCost float64) Holding {
	return Holding{Owner: "alice", Symbol: symbol, Instrument: symbol, Quantity: Q(quantity), AvgCost: M(avgCost, "INR"), Class: Equity}
}

func TestValuateEquity(t *testing.T) {
	v := Valuate([]Holding{equity("TCS", 5, 200)}, Prices{"TCS": decimal.NewFromInt(250)}, DefaultGrowthFactor)

	if got, want := v.UnrealizedPnL, M(250, "INR"); !got.Equal(want) {
		t.Errorf("UnrealizedPnL = %s, want %s", got, want)
	}
	if got, want := v.TotalValue, M(1250, "INR"); !got.Equal(want) {
		t.Errorf("TotalValue = %s, want %s", got, want)
	}
	if len(v.Fallbacks) != 0 {
		t.Errorf("Fallbacks = %v, want none", v.Fallbacks)
	}
	if len(v.Allocation) != 1 || v.Allocation[0].Class != Equity || !v.Allocation[0].Share.Equal(100) {
		t.Errorf("Allocation = %v, want 100%% Equity", v.Allocation)
	}
	if p := v.Positions[0]; !p.Quoted || p.Estimated() {
		t.Errorf("position = %+v, want quoted", p)
	}
}

func TestValuateFallback(t *testing.T) {
	holdings := []Holding{
		equity("INFY", 2, 1500),
		equity("TCS", 1, 3000),
		equity("WIPRO", 10, 400),
	}
	// a zero quote counts as no quote.
	prices := Prices{"TCS": decimal.Zero, "WIPRO": decimal.NewFromInt(450)}
	v := Valuate(holdings, prices, DefaultGrowthFactor)

	if diff := cmp.Diff([]string{"INFY", "TCS"}, v.Fallbacks); diff != "" {
		t.Errorf("Fallbacks mismatch (-want +got):\n%s", diff)
	}
	for _, p := range v.Positions[:2] {
		if !p.Estimated() || !p.CurrentPrice.Equal(p.AvgCost) || !p.UnrealizedPnL.IsZero() {
			t.Errorf("%s = %+v, want valued at average cost", p.Symbol, p)
		}
	}
	if got, want := v.UnrealizedPnL, M(500, "INR"); !got.Equal(want) {
		t.Errorf("UnrealizedPnL = %s, want %s", got, want)
	}
}

func TestValuateDeposits(t *testing.T) {
	fd := Holding{Owner: "alice", Symbol: "SBI", Instrument: "SBI", Quantity: Q(100000), AvgCost: M(1, "INR"), Class: FixedDeposit}
	bond := Holding{Owner: "alice", Symbol: "GOI", Instrument: "GOI", Quantity: Q(50000), AvgCost: M(1, "INR"), Class: Bond}
	holdings := []Holding{equity("TCS", 10, 1500), fd, bond}

	// quotes never apply to synthetic classes.
	prices := Prices{"SBI": decimal.NewFromInt(2), "TCS": decimal.NewFromInt(1500)}
	v := Valuate(holdings, prices, decimal.RequireFromString("1.07"))

	if got, want := v.Positions[1].TotalValue, M(107000, "INR"); !got.Equal(want) {
		t.Errorf("FD value = %s, want %s", got, want)
	}
	if got, want := v.Positions[2].UnrealizedPnL, M(3500, "INR"); !got.Equal(want) {
		t.Errorf("bond pnl = %s, want %s", got, want)
	}
	if v.Positions[1].Estimated() {
		t.Error("deposits are never estimated")
	}

	want := []AssetClass{Equity, Bond, FixedDeposit}
	var got []AssetClass
	var total Percent
	for _, a := range v.Allocation {
		got = append(got, a.Class)
		total += a.Share
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Allocation classes mismatch (-want +got):\n%s", diff)
	}
	if !total.Equal(100) {
		t.Errorf("shares add up to %s, want 100%%", total)
	}
}

func TestValuateEmpty(t *testing.T) {
	v := Valuate(nil, nil, DefaultGrowthFactor)
	if !v.TotalValue.IsZero() || len(v.Allocation) != 0 {
		t.Errorf("Valuate(nil) = %+v, want zero", v)
	}
}

func TestValuateExcludesForeignCurrency(t *testing.T) {
	usd := equity("AAPL", 2, 150)
	usd.AvgCost = usd.AvgCost.In("USD")
	v := Valuate([]Holding{equity("TCS", 5, 200), usd}, Prices{"AAPL": decimal.NewFromInt(160)}, DefaultGrowthFactor)

	if len(v.Positions) != 1 || len(v.Excluded) != 1 || v.Excluded[0].Symbol != "AAPL" {
		t.Fatalf("Positions = %d, Excluded = %v, want AAPL left out", len(v.Positions), v.Excluded)
	}
	if got, want := v.TotalValue, M(1000, "INR"); !got.Equal(want) {
		t.Errorf("TotalValue = %s, want %s", got, want)
	}
}

func TestFixedDepositRates(t *testing.T) {
	rates := FixedDepositRates()
	if len(rates) != 3 {
		t.Fatalf("got %d rates, want 3", len(rates))
	}
	if got, want := rates[1].GrowthFactor(), decimal.RequireFromString("1.0725"); !got.Equal(want) {
		t.Errorf("GrowthFactor() = %s, want %s", got, want)
	}
}
