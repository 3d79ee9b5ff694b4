package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/etnz/folio"
)

var at = time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)

func equityScenario() (folio.Valuation, *folio.LedgerReplay) {
	buy := folio.NewTransaction("alice", at, folio.Buy, "TCS", folio.Q(5), folio.M(200, "INR"))
	h := folio.Holding{Owner: "alice", Symbol: "TCS", Instrument: "TCS", Quantity: folio.Q(5), AvgCost: folio.M(200, "INR"), Class: folio.Equity}
	v := folio.Valuate([]folio.Holding{h}, folio.Prices{"TCS": decimal.NewFromInt(250)}, folio.DefaultGrowthFactor)
	return v, folio.Replay([]folio.Transaction{buy})
}

// assertContains checks that every line of want is in got.
func assertContains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("output does not contain %q:\n%s", w, got)
		}
	}
}

func TestRenderHoldings(t *testing.T) {
	v, _ := equityScenario()
	got := RenderHoldings("alice", v)
	assertContains(t, got,
		"# Holdings of alice",
		"| TCS | Equity | 5 | ₹200.00 | ₹250.00 | ₹1,250.00 | +₹250.00 |",
		"| Equity | ₹1,250.00 | 100.00% |",
	)
	if strings.Contains(got, "no quote available") {
		t.Errorf("quoted holdings must not be flagged:\n%s", got)
	}

	// without quotes the position is flagged
	h := v.Positions[0].Holding
	fallback := folio.Valuate([]folio.Holding{h}, nil, folio.DefaultGrowthFactor)
	assertContains(t, RenderHoldings("alice", fallback), "| TCS* |", "no quote available")

	assertContains(t, RenderHoldings("bob", folio.Valuation{}), "No holdings.")
}

func TestRenderDashboard(t *testing.T) {
	v, r := equityScenario()
	got := RenderDashboard("alice", folio.NewDashboard(v, r))
	assertContains(t, got,
		"# Portfolio Summary of alice",
		"| Total Value | ₹1,250.00 |",
		"| Total Investment | ₹1,000.00 |",
		"| Unrealized P&L | +₹250.00 |",
		"| Realized P&L | - |",
		"| Start | ₹1,000.00 | - |",
		"| Now | ₹1,250.00 | +₹250.00 |",
		"## Allocation",
	)
}

func TestRenderScore(t *testing.T) {
	got := RenderScore("alice", folio.Score(nil, nil, at))
	assertContains(t, got,
		"**300** / 900",
		"| Discipline | 0 | No History (0 days) |",
	)
}

func TestPnLMarkdown(t *testing.T) {
	txs := []folio.Transaction{
		folio.NewTransaction("alice", at, folio.Buy, "TCS", folio.Q(10), folio.M(100, "INR")),
		folio.NewTransaction("alice", at.Add(time.Hour), folio.Buy, "TCS", folio.Q(10), folio.M(120, "INR")),
		folio.NewTransaction("alice", at.Add(2*time.Hour), folio.Sell, "TCS", folio.Q(12), folio.M(150, "INR")),
		folio.NewTransaction("alice", at, folio.Buy, "INFY", folio.Q(1), folio.M(1500, "INR")),
	}
	got := PnLMarkdown(folio.PnL(folio.Replay(txs)))
	assertContains(t, got, "| TCS | 12 | ₹1,800.00 | ₹1,240.00 | +₹560.00 |")
	if strings.Contains(got, "INFY") {
		t.Errorf("instruments without sales must be omitted:\n%s", got)
	}

	assertContains(t, PnLMarkdown(folio.PnLStatement{}), "Nothing sold yet.")
}

func TestRealReturnsMarkdown(t *testing.T) {
	txs := []folio.Transaction{
		folio.NewTransaction("alice", at, folio.Buy, "TCS", folio.Q(1), folio.M(100, "INR")),
		folio.NewTransaction("alice", at, folio.Sell, "TCS", folio.Q(1), folio.M(150, "INR")),
	}
	got := RealReturnsMarkdown(folio.RealReturns(folio.Replay(txs), 0.06))
	assertContains(t, got, "Inflation: 6.00% per year", "| TCS | +₹50.00 | - | +₹50.00 |")
}

func TestTransactionsMarkdown(t *testing.T) {
	tx := folio.NewTransaction("alice", at, folio.Buy, "TCS", folio.Q(5), folio.M(200, "INR"))
	assertContains(t, TransactionsMarkdown([]folio.Transaction{tx}),
		"| 2024-01-10 09:30:00 | buy | TCS | 5 | ₹200.00 | ₹1,000.00 |")
	assertContains(t, TransactionsMarkdown(nil), "No transactions.")

	if got, want := Transaction(tx), "Bought 5 of TCS at ₹200.00 for ₹1,000.00"; got != want {
		t.Errorf("Transaction() = %q, want %q", got, want)
	}
}

func TestFixedDepositRatesMarkdown(t *testing.T) {
	assertContains(t, FixedDepositRatesMarkdown(folio.FixedDepositRates()), "| HDFC Bank | 7.25% | 1 Year |")
}
