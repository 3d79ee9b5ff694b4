package folio

import (
	"fmt"
	"time"
)

// Change is the store mutation produced by applying one action to a holding.
// At most one of Save and Delete is set; a zero Record is not written.
type Change struct {
	Save   *Holding
	Delete *HoldingKey
	Record Transaction
}

// ApplyBuy adds quantity bought at price to the current holding, or opens a new
// equity holding when current is nil. The average cost becomes the quantity
// weighted average of the old position and the purchase.
func ApplyBuy(current *Holding, owner, symbol string, quantity Quantity, price Money, at time.Time) (Change, error) {
	symbol = NormalizeSymbol(symbol)
	record := NewTransaction(owner, at, Buy, symbol, quantity, price)
	if err := record.Validate(); err != nil {
		return Change{}, err
	}

	if current == nil {
		h := Holding{
			Owner:      owner,
			Symbol:     symbol,
			Instrument: symbol,
			Quantity:   quantity,
			AvgCost:    price,
			Class:      Equity,
		}
		return Change{Save: &h, Record: record}, nil
	}

	if err := sameCurrency(current, price); err != nil {
		return Change{}, err
	}
	h := *current
	total := h.Quantity.Add(quantity)
	// total is positive: quantity was validated positive and holdings never go negative.
	h.AvgCost = h.CostBasis().Add(price.Mul(quantity)).Div(total)
	h.Quantity = total
	record.Instrument = h.Symbol
	return Change{Save: &h, Record: record}, nil
}

// ApplySell removes quantity from the current holding. The average cost is left
// unchanged; the holding is deleted when nothing remains.
//
// It fails with ErrHoldingNotFound when current is nil, with
// ErrInsufficientQuantity when more is sold than held and with
// ErrCurrencyMismatch when price is not in the holding's currency.
func ApplySell(current *Holding, owner, symbol string, quantity Quantity, price Money, at time.Time) (Change, error) {
	symbol = NormalizeSymbol(symbol)
	record := NewTransaction(owner, at, Sell, symbol, quantity, price)
	if err := record.Validate(); err != nil {
		return Change{}, err
	}
	if current == nil {
		return Change{}, fmt.Errorf("%w: %s has no %s", ErrHoldingNotFound, owner, symbol)
	}
	if err := sameCurrency(current, price); err != nil {
		return Change{}, err
	}
	if quantity.GreaterThan(current.Quantity) {
		return Change{}, fmt.Errorf("%w: cannot sell %s %s, holding is only %s", ErrInsufficientQuantity, quantity, current.Symbol, current.Quantity)
	}

	record.Instrument = current.Symbol
	remaining := current.Quantity.Sub(quantity)
	if remaining.IsZero() {
		key := current.Key()
		return Change{Delete: &key, Record: record}, nil
	}
	h := *current
	h.Quantity = remaining
	return Change{Save: &h, Record: record}, nil
}

// sameCurrency rejects a price in another currency than the holding's cost.
func sameCurrency(h *Holding, price Money) error {
	have, got := h.AvgCost.Currency(), price.Currency()
	if have != "" && got != "" && have != got {
		return fmt.Errorf("%w: %w: %s is held in %s, not %s", ErrInvalidTransaction, ErrCurrencyMismatch, h.Symbol, have, got)
	}
	return nil
}

// ApplyDeposit opens a fixed deposit or bond holding. The principal is tracked
// as quantity at a unit cost of 1; growth is synthetic and applied at valuation.
//
// It fails with ErrHoldingExists when existing is not nil.
func ApplyDeposit(existing *Holding, owner, instrument string, principal Money, class AssetClass, at time.Time) (Change, error) {
	if !class.synthetic() {
		return Change{}, fmt.Errorf("%w: cannot deposit into %s", ErrInvalidTransaction, class)
	}
	symbol := DepositSymbol(instrument)
	quantity := Q(principal.Decimal())
	unit := M(1, principal.Currency())
	record := NewTransaction(owner, at, Deposit, symbol, quantity, unit)
	record.Class = class
	if err := record.Validate(); err != nil {
		return Change{}, err
	}
	if existing != nil {
		return Change{}, fmt.Errorf("%w: %s already holds %s", ErrHoldingExists, owner, symbol)
	}

	h := Holding{
		Owner:      owner,
		Symbol:     symbol,
		Instrument: instrument,
		Quantity:   quantity,
		AvgCost:    unit,
		Class:      class,
	}
	return Change{Save: &h, Record: record}, nil
}
