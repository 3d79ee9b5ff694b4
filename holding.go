package folio

import (
	"fmt"
	"strings"
)

// AssetClass groups holdings for valuation and allocation.
type AssetClass string

const (
	Equity       AssetClass = "Equity"
	Bond         AssetClass = "Bond"
	FixedDeposit AssetClass = "FixedDeposit"
)

// assetClasses lists the classes in allocation order.
var assetClasses = []AssetClass{Equity, Bond, FixedDeposit}

// ParseAssetClass parses an asset class name. "FD" and "Bonds" are accepted aliases.
func ParseAssetClass(s string) (AssetClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equity":
		return Equity, nil
	case "bond", "bonds":
		return Bond, nil
	case "fd", "fixeddeposit", "fixed-deposit":
		return FixedDeposit, nil
	default:
		return "", fmt.Errorf("unknown asset class %q", s)
	}
}

// synthetic reports whether holdings of this class are valued with the fixed growth factor.
func (c AssetClass) synthetic() bool { return c == Bond || c == FixedDeposit }

// Holding is the current position of an owner in one symbol.
type Holding struct {
	Owner      string     `json:"owner"`
	Symbol     string     `json:"symbol"`
	Instrument string     `json:"instrument"`
	Quantity   Quantity   `json:"quantity"`
	AvgCost    Money      `json:"avg_cost"`
	Class      AssetClass `json:"type"`
}

// CostBasis is the amount invested in the remaining quantity.
func (h Holding) CostBasis() Money { return h.AvgCost.Mul(h.Quantity) }

// HoldingKey identifies a holding in a store.
type HoldingKey struct {
	Owner  string
	Symbol string
}

// Key returns the store key of the holding.
func (h Holding) Key() HoldingKey { return HoldingKey{Owner: h.Owner, Symbol: h.Symbol} }

// NormalizeSymbol returns the canonical symbol stored for a user supplied ticker.
func NormalizeSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// DepositSymbol derives the holding symbol of a deposit from its instrument name,
// "SBI fixed deposit" becomes "SBI-FIXED-DEPOSIT".
func DepositSymbol(instrument string) string {
	return strings.ToUpper(strings.Join(strings.Fields(instrument), "-"))
}
