package folio

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultInflationRate is the annual inflation rate used to discount sales.
const DefaultInflationRate = 0.06

// inflationFactor returns (1+rate)^years, exactly 1 when years is not positive.
func inflationFactor(rate, years float64) decimal.Decimal {
	if years <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(math.Pow(1+rate, years))
}

// RealSaleValue is the sale value discounted by compounding inflation over the
// holding period of the matched lot.
func (e RealizedEvent) RealSaleValue(rate float64) Money {
	return e.SaleValue().Discount(inflationFactor(rate, e.HoldingYears()))
}

// RealPnL is the realized profit of the event once the sale value is expressed
// in money of the acquisition date.
func (e RealizedEvent) RealPnL(rate float64) Money {
	return e.RealSaleValue(rate).Sub(e.MatchedCost)
}

// RealReturn is the inflation adjusted realized return of one instrument.
type RealReturn struct {
	Instrument          string
	NominalPnL          Money
	InflationAdjustment Money
	RealPnL             Money
}

// RealReturnStatement lists the real return of every instrument that was sold.
type RealReturnStatement struct {
	Rate                float64
	Instruments         []RealReturn
	NominalPnL          Money
	InflationAdjustment Money
	RealPnL             Money
}

// RealReturns discounts every realized event of the replay at the annual
// inflation rate. Instruments that were never sold are omitted.
func RealReturns(r *LedgerReplay, rate float64) RealReturnStatement {
	s := RealReturnStatement{Rate: rate}
	for ir := range r.Instruments() {
		if ir.Sells == 0 {
			continue
		}
		rr := RealReturn{Instrument: ir.Instrument}
		for _, e := range ir.Events {
			nominal := e.PnL()
			realPnL := e.RealPnL(rate)
			rr.NominalPnL = rr.NominalPnL.Add(nominal)
			rr.InflationAdjustment = rr.InflationAdjustment.Add(nominal.Sub(realPnL))
		}
		rr.RealPnL = rr.NominalPnL.Sub(rr.InflationAdjustment)

		s.Instruments = append(s.Instruments, rr)
		s.NominalPnL = s.NominalPnL.Add(rr.NominalPnL)
		s.InflationAdjustment = s.InflationAdjustment.Add(rr.InflationAdjustment)
	}
	s.RealPnL = s.NominalPnL.Sub(s.InflationAdjustment)
	return s
}
