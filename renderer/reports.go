package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/folio"
)

// PnLMarkdown renders the realized profit statement.
func PnLMarkdown(s folio.PnLStatement) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Realized P&L\n\n")
	if len(s.Lines) == 0 {
		fmt.Fprint(&b, "Nothing sold yet.\n")
		return b.String()
	}
	fmt.Fprintln(&b, "| Instrument | Sold | Sale Value | Cost Basis | Realized P&L |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			l.Instrument,
			l.Sold,
			l.SaleValue,
			l.CostBasis,
			l.RealizedPnL.SignedString(),
		)
	}
	fmt.Fprintf(&b, "| **%s** | | **%s** | **%s** | **%s** |\n",
		"Total",
		s.SaleValue,
		s.CostBasis,
		s.RealizedPnL.SignedString(),
	)
	return b.String()
}

// RealReturnsMarkdown renders the inflation adjusted returns.
func RealReturnsMarkdown(s folio.RealReturnStatement) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Real Returns\n\n")
	fmt.Fprintf(&b, "Inflation: %s per year\n\n", folio.Percent(s.Rate*100))
	if len(s.Instruments) == 0 {
		fmt.Fprint(&b, "Nothing sold yet.\n")
		return b.String()
	}
	fmt.Fprintln(&b, "| Instrument | Nominal P&L | Inflation | Real P&L |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	for _, r := range s.Instruments {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			r.Instrument,
			r.NominalPnL.SignedString(),
			r.InflationAdjustment.Neg().SignedString(),
			r.RealPnL.SignedString(),
		)
	}
	fmt.Fprintf(&b, "| **%s** | **%s** | **%s** | **%s** |\n",
		"Total",
		s.NominalPnL.SignedString(),
		s.InflationAdjustment.Neg().SignedString(),
		s.RealPnL.SignedString(),
	)
	return b.String()
}

// TransactionsMarkdown renders a transaction listing in the given order.
func TransactionsMarkdown(txs []folio.Transaction) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Transactions\n\n")
	if len(txs) == 0 {
		fmt.Fprint(&b, "No transactions.\n")
		return b.String()
	}
	fmt.Fprintln(&b, "| Date | Type | Instrument | Quantity | Price | Amount |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|")
	for _, tx := range txs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			tx.Timestamp,
			tx.Kind,
			tx.Instrument,
			tx.Quantity,
			tx.UnitPrice,
			tx.Amount(),
		)
	}
	return b.String()
}

// Transaction renders a transaction to a sentence.
func Transaction(tx folio.Transaction) string {
	switch tx.Kind {
	case folio.Buy:
		return fmt.Sprintf("Bought %s of %s at %s for %s", tx.Quantity, tx.Instrument, tx.UnitPrice, tx.Amount())
	case folio.Sell:
		return fmt.Sprintf("Sold %s of %s at %s for %s", tx.Quantity, tx.Instrument, tx.UnitPrice, tx.Amount())
	case folio.Deposit:
		return fmt.Sprintf("Deposited %s in %s", tx.Amount(), tx.Instrument)
	default:
		return string(tx.Kind)
	}
}

// FixedDepositRatesMarkdown renders the indicative deposit rates.
func FixedDepositRatesMarkdown(rates []folio.FixedDepositRate) string {
	var b strings.Builder
	fmt.Fprint(&b, "## Indicative Fixed Deposit Rates\n\n")
	fmt.Fprintln(&b, "| Bank | Rate | Tenor |")
	fmt.Fprintln(&b, "|:---|---:|:---|")
	for _, r := range rates {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", r.Bank, r.Rate, r.Tenor)
	}
	return b.String()
}
