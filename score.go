package folio

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Score bounds and factor caps.
const (
	ScoreBase       = 300
	ScoreMax        = 900
	factorCap       = 200
	pointsPerSymbol = 20
	daysPerPoint    = 3.65
)

// Discipline labels, from the longest history down.
const (
	Veteran           = "Veteran"
	LongTermFocused   = "Long-Term Focused"
	GettingConsistent = "Getting Consistent"
	BuildingHabits    = "Building Habits"
	JustStarted       = "Just Started"
	NoHistory         = "No History"
)

var (
	profitHigh = decimal.NewFromInt(50000)
	profitMid  = decimal.NewFromInt(10000)
)

// Feedback holds the presentation labels of each score factor.
type Feedback struct {
	Diversification string
	Profitability   string
	Discipline      string
}

// ScoreReport is the investor score with its breakdown.
type ScoreReport struct {
	Total           int
	Base            int
	Diversification int
	Profitability   int
	Discipline      int

	Holdings    int   // distinct symbols held
	RealizedPnL Money // realized profit the profitability factor is based on
	Days        int   // days since the earliest valid transaction
	Feedback    Feedback
}

// Score rates an owner from its current holdings and full transaction history.
// The total is always within [ScoreBase, ScoreMax].
//
// An owner without any valid transaction scores ScoreBase plus diversification,
// with profitability and discipline left at zero.
func Score(holdings []Holding, txs []Transaction, now time.Time) ScoreReport {
	s := ScoreReport{Base: ScoreBase}

	symbols := make(map[string]struct{})
	for _, h := range holdings {
		if h.Quantity.IsPositive() {
			symbols[h.Symbol] = struct{}{}
		}
	}
	s.Holdings = len(symbols)
	s.Diversification = min(factorCap, pointsPerSymbol*s.Holdings)

	r := Replay(txs)
	s.RealizedPnL = r.RealizedPnL()
	history := !r.First.IsZero()
	var days float64
	if history {
		s.Profitability = profitability(s.RealizedPnL)
		days = now.Sub(r.First).Hours() / 24
		s.Days = int(math.Floor(days))
		s.Discipline = min(factorCap, max(0, int(math.Floor(days/daysPerPoint))))
	}

	s.Total = min(ScoreMax, s.Base+s.Diversification+s.Profitability+s.Discipline)
	s.Feedback = Feedback{
		Diversification: diversificationLabel(s.Diversification),
		Profitability:   profitabilityLabel(s.Profitability),
		Discipline:      disciplineLabel(history, days),
	}
	return s
}

func profitability(pnl Money) int {
	switch v := pnl.Decimal(); {
	case v.GreaterThan(profitHigh):
		return 200
	case v.GreaterThan(profitMid):
		return 150
	case v.IsPositive():
		return 100
	default:
		return 50
	}
}

func diversificationLabel(points int) string {
	switch {
	case points > 150:
		return "Excellent"
	case points > 80:
		return "Good"
	default:
		return "Needs Improvement"
	}
}

func profitabilityLabel(points int) string {
	switch {
	case points > 150:
		return "Excellent"
	case points > 100:
		return "Good"
	default:
		return "Average"
	}
}

// disciplineLabel bands compare the exact, unfloored number of days.
func disciplineLabel(history bool, days float64) string {
	switch {
	case !history || days < 0:
		return NoHistory
	case days > 730:
		return Veteran
	case days > 365:
		return LongTermFocused
	case days > 180:
		return GettingConsistent
	case days > 30:
		return BuildingHabits
	default:
		return JustStarted
	}
}
