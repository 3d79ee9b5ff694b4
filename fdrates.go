package folio

import "github.com/shopspring/decimal"

// FixedDepositRate is an indicative deposit rate offered by a bank.
type FixedDepositRate struct {
	Bank  string
	Rate  Percent
	Tenor string
}

// FixedDepositRates lists indicative one year deposit rates. They are shown as
// hints when recording a deposit and play no part in valuation.
func FixedDepositRates() []FixedDepositRate {
	return []FixedDepositRate{
		{Bank: "State Bank of India (SBI)", Rate: 7.10, Tenor: "1 Year"},
		{Bank: "HDFC Bank", Rate: 7.25, Tenor: "1 Year"},
		{Bank: "ICICI Bank", Rate: 7.20, Tenor: "1 Year"},
	}
}

// GrowthFactor is the value of one unit of principal after one tenor at rate r.
func (r FixedDepositRate) GrowthFactor() decimal.Decimal {
	return decimal.NewFromFloat(float64(r.Rate)).Shift(-2).Add(decimal.NewFromInt(1))
}
