package folio

import (
	"github.com/shopspring/decimal"
)

// DefaultGrowthFactor values fixed deposits and bonds at one year of accrual at 7%.
var DefaultGrowthFactor = decimal.RequireFromString("1.07")

// Prices maps a holding symbol to its current market price.
type Prices map[string]decimal.Decimal

// Lookup returns the price of symbol. A missing or non-positive price is absent.
func (p Prices) Lookup(symbol string) (decimal.Decimal, bool) {
	price, ok := p[symbol]
	if !ok || !price.IsPositive() {
		return decimal.Decimal{}, false
	}
	return price, true
}

// Position is a holding enriched with its current valuation.
type Position struct {
	Holding
	CurrentPrice  Money
	TotalValue    Money
	Investment    Money
	UnrealizedPnL Money
	Quoted        bool // CurrentPrice comes from a market quote
}

// Estimated reports whether an equity position is valued at its average cost
// for lack of a quote.
func (p Position) Estimated() bool { return !p.Quoted && !p.Class.synthetic() }

// Allocation is the value held in one asset class.
type Allocation struct {
	Class AssetClass
	Value Money
	Share Percent
}

// Valuation is the valued portfolio of one owner.
type Valuation struct {
	Positions       []Position
	TotalValue      Money
	TotalInvestment Money
	UnrealizedPnL   Money
	Allocation      []Allocation // zero valued classes are omitted
	Fallbacks       []string     // equity symbols valued at their average cost
	Excluded        []Holding    // holdings in another currency, left out of every total
}

// Valuate values holdings with prices. Equities without a usable quote fall back
// to their average cost; fixed deposits and bonds use growthFactor per unit.
//
// Totals are exact sums; nothing is rounded. They are expressed in the currency
// of the first holding that has one; holdings in any other currency are listed
// in Excluded.
func Valuate(holdings []Holding, prices Prices, growthFactor decimal.Decimal) Valuation {
	var (
		v        Valuation
		currency string
	)
	byClass := make(map[AssetClass]Money)

	for _, h := range holdings {
		if c := h.AvgCost.Currency(); c != "" {
			if currency == "" {
				currency = c
			}
			if c != currency {
				v.Excluded = append(v.Excluded, h)
				continue
			}
		}
		p := Position{Holding: h, Investment: h.CostBasis()}
		switch {
		case h.Class.synthetic():
			p.CurrentPrice = M(growthFactor, h.AvgCost.Currency())
		default:
			if price, ok := prices.Lookup(h.Symbol); ok {
				p.CurrentPrice = M(price, h.AvgCost.Currency())
				p.Quoted = true
			} else {
				p.CurrentPrice = h.AvgCost
				v.Fallbacks = append(v.Fallbacks, h.Symbol)
			}
		}
		p.TotalValue = p.CurrentPrice.Mul(h.Quantity)
		p.UnrealizedPnL = p.CurrentPrice.Sub(h.AvgCost).Mul(h.Quantity)

		v.Positions = append(v.Positions, p)
		v.TotalValue = v.TotalValue.Add(p.TotalValue)
		v.TotalInvestment = v.TotalInvestment.Add(p.Investment)
		byClass[h.Class] = byClass[h.Class].Add(p.TotalValue)
	}
	v.UnrealizedPnL = v.TotalValue.Sub(v.TotalInvestment)

	for _, class := range assetClasses {
		value := byClass[class]
		if !value.IsPositive() {
			continue
		}
		v.Allocation = append(v.Allocation, Allocation{
			Class: class,
			Value: value,
			Share: share(value, v.TotalValue),
		})
	}
	return v
}

// share returns part as a percentage of total, 0 when total is not positive.
func share(part, total Money) Percent {
	if !total.IsPositive() {
		return 0
	}
	return Percent(part.Decimal().Div(total.Decimal()).Mul(decimal.NewFromInt(100)).InexactFloat64())
}
