package folio

// PnLLine is the realized profit of one instrument.
type PnLLine struct {
	Instrument  string
	Sold        Quantity
	SaleValue   Money
	CostBasis   Money
	RealizedPnL Money
}

// PnLStatement lists realized profit per instrument that has been sold.
type PnLStatement struct {
	Lines       []PnLLine
	SaleValue   Money
	CostBasis   Money
	RealizedPnL Money
}

// PnL builds the realized profit statement of a replay. Instruments without
// sales are omitted.
func PnL(r *LedgerReplay) PnLStatement {
	var s PnLStatement
	for ir := range r.Instruments() {
		if ir.Sells == 0 {
			continue
		}
		line := PnLLine{
			Instrument:  ir.Instrument,
			SaleValue:   ir.SaleValue(),
			CostBasis:   ir.MatchedCost(),
			RealizedPnL: ir.RealizedPnL(),
		}
		for _, e := range ir.Events {
			line.Sold = line.Sold.Add(e.Quantity)
		}
		s.Lines = append(s.Lines, line)
		s.SaleValue = s.SaleValue.Add(line.SaleValue)
		s.CostBasis = s.CostBasis.Add(line.CostBasis)
	}
	s.RealizedPnL = s.SaleValue.Sub(s.CostBasis)
	return s
}

// HistoryPoint is one point of the dashboard value chart.
type HistoryPoint struct {
	Label string
	Value Money
	PnL   Money
}

// Dashboard summarizes an owner's portfolio.
type Dashboard struct {
	TotalValue      Money
	TotalInvestment Money
	UnrealizedPnL   Money
	RealizedPnL     Money
	TotalPnL        Money
	Allocation      []Allocation
	History         []HistoryPoint // Start is the amount invested, Now the current value
}

// NewDashboard combines a valuation with the realized profit of the replay.
// Both must be expressed in the same currency.
func NewDashboard(v Valuation, r *LedgerReplay) Dashboard {
	d := Dashboard{
		TotalValue:      v.TotalValue,
		TotalInvestment: v.TotalInvestment,
		UnrealizedPnL:   v.UnrealizedPnL,
		RealizedPnL:     r.RealizedPnL(),
		Allocation:      v.Allocation,
	}
	d.TotalPnL = d.UnrealizedPnL.Add(d.RealizedPnL)
	d.History = []HistoryPoint{
		{Label: "Start", Value: d.TotalInvestment, PnL: M(0, d.TotalInvestment.Currency())},
		{Label: "Now", Value: d.TotalValue, PnL: d.TotalPnL},
	}
	return d
}
