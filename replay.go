package folio

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"time"
)

// RealizedEvent pairs one sell with one consumed lot.
//
// A sell that drains several lots produces one event per lot. Quantity sold
// beyond every open lot produces a single Unmatched event with zero cost.
type RealizedEvent struct {
	Instrument  string
	Quantity    Quantity
	SalePrice   Money
	MatchedCost Money
	SoldAt      time.Time
	AcquiredAt  time.Time
	Unmatched   bool
}

// SaleValue is the proceeds of the event at the sale price.
func (e RealizedEvent) SaleValue() Money { return e.SalePrice.Mul(e.Quantity) }

// PnL is the realized profit or loss of the event.
func (e RealizedEvent) PnL() Money { return e.SaleValue().Sub(e.MatchedCost) }

// daysPerYear is the average year length used for holding periods.
const daysPerYear = 365.25

// HoldingYears is the holding period of the matched lot in years, never negative.
func (e RealizedEvent) HoldingYears() float64 {
	years := e.SoldAt.Sub(e.AcquiredAt).Hours() / 24 / daysPerYear
	return max(0, years)
}

// InstrumentReplay is the outcome of replaying the ledger of one instrument.
type InstrumentReplay struct {
	Instrument string
	Events     []RealizedEvent
	Open       []Lot // residual FIFO queue, oldest first
	Sells      int   // number of sell transactions replayed
}

// SaleValue is the total proceeds of all sells.
func (r *InstrumentReplay) SaleValue() Money {
	var total Money
	for _, e := range r.Events {
		total = total.Add(e.SaleValue())
	}
	return total
}

// MatchedCost is the total cost of the lots consumed by sells.
func (r *InstrumentReplay) MatchedCost() Money {
	var total Money
	for _, e := range r.Events {
		total = total.Add(e.MatchedCost)
	}
	return total
}

// RealizedPnL is the sum of the realized profit of every event.
func (r *InstrumentReplay) RealizedPnL() Money { return r.SaleValue().Sub(r.MatchedCost()) }

// OpenQuantity is the quantity still held according to the lots.
func (r *InstrumentReplay) OpenQuantity() Quantity { return lots(r.Open).quantity() }

// OpenCost is the cost basis still held according to the lots.
func (r *InstrumentReplay) OpenCost() Money { return lots(r.Open).cost() }

// Warning reports a transaction the replay could not account for normally.
type Warning struct {
	Transaction Transaction
	Err         error
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s %s %s on %q: %v", w.Transaction.Kind, w.Transaction.Quantity, w.Transaction.Instrument, w.Transaction.Timestamp, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }

// LedgerReplay is the result of replaying an owner's ledger.
type LedgerReplay struct {
	instruments []*InstrumentReplay // in order of first appearance
	index       map[string]*InstrumentReplay

	// Skipped lists transactions excluded for a malformed timestamp or for a
	// currency other than the ledger's.
	Skipped []Warning
	// Currency is the currency of the replayed amounts, the one of the earliest
	// transaction that carries one.
	Currency string
	// Inconsistencies lists sells that exceeded the open lots.
	Inconsistencies []Warning
	// First is the timestamp of the earliest valid transaction, zero when there is none.
	First time.Time
}

// Replay replays the transactions of one owner in timestamp order (ties keep the
// given order) and returns per instrument FIFO lots and realized events.
//
// The input is not modified. Transactions with a malformed timestamp, or priced
// in another currency than the earliest priced transaction, are skipped and
// listed in Skipped.
func Replay(txs []Transaction) *LedgerReplay {
	r := &LedgerReplay{index: make(map[string]*InstrumentReplay)}

	ledger := make([]dated, 0, len(txs))
	for i, tx := range txs {
		at, err := tx.Time()
		if err != nil {
			r.Skipped = append(r.Skipped, Warning{Transaction: tx, Err: err})
			continue
		}
		ledger = append(ledger, dated{Transaction: tx, at: at, seq: i})
	}
	sort.SliceStable(ledger, func(i, j int) bool { return ledger[i].at.Before(ledger[j].at) })
	ledger = slices.DeleteFunc(ledger, func(tx dated) bool {
		c := tx.UnitPrice.Currency()
		switch {
		case c == "" || c == r.Currency:
			return false
		case r.Currency == "":
			r.Currency = c
			return false
		}
		r.Skipped = append(r.Skipped, Warning{
			Transaction: tx.Transaction,
			Err:         fmt.Errorf("%w: %s in a %s ledger", ErrCurrencyMismatch, c, r.Currency),
		})
		return true
	})
	if len(ledger) > 0 {
		r.First = ledger[0].at
	}

	queues := make(map[string]*lots)
	for _, tx := range ledger {
		ir := r.instrument(tx.Instrument)
		q, ok := queues[tx.Instrument]
		if !ok {
			q = new(lots)
			queues[tx.Instrument] = q
		}

		switch tx.Kind {
		case Buy, Deposit:
			q.acquire(tx.Quantity, tx.UnitPrice, tx.at)
		case Sell:
			ir.Sells++
			unmatched := q.consume(tx.Quantity, func(from Lot, quantity Quantity) {
				ir.Events = append(ir.Events, RealizedEvent{
					Instrument:  tx.Instrument,
					Quantity:    quantity,
					SalePrice:   tx.UnitPrice,
					MatchedCost: from.UnitCost.Mul(quantity),
					SoldAt:      tx.at,
					AcquiredAt:  from.AcquiredAt,
				})
			})
			if unmatched.IsPositive() {
				// more sold than ever bought: the remainder is matched against zero cost.
				ir.Events = append(ir.Events, RealizedEvent{
					Instrument:  tx.Instrument,
					Quantity:    unmatched,
					SalePrice:   tx.UnitPrice,
					MatchedCost: M(0, tx.UnitPrice.Currency()),
					SoldAt:      tx.at,
					AcquiredAt:  tx.at,
					Unmatched:   true,
				})
				r.Inconsistencies = append(r.Inconsistencies, Warning{
					Transaction: tx.Transaction,
					Err:         fmt.Errorf("%w: %s unmatched by open lots", ErrLedgerInconsistency, unmatched),
				})
			}
		}
	}

	for name, q := range queues {
		r.index[name].Open = slices.Clone(*q)
	}
	return r
}

func (r *LedgerReplay) instrument(name string) *InstrumentReplay {
	if ir, ok := r.index[name]; ok {
		return ir
	}
	ir := &InstrumentReplay{Instrument: name}
	r.index[name] = ir
	r.instruments = append(r.instruments, ir)
	return ir
}

// Instrument returns the replay of one instrument.
func (r *LedgerReplay) Instrument(name string) (*InstrumentReplay, bool) {
	ir, ok := r.index[name]
	return ir, ok
}

// Instruments iterates over replayed instruments in order of first appearance.
func (r *LedgerReplay) Instruments() iter.Seq[*InstrumentReplay] {
	return func(yield func(*InstrumentReplay) bool) {
		for _, ir := range r.instruments {
			if !yield(ir) {
				return
			}
		}
	}
}

// Events returns every realized event, grouped by instrument.
func (r *LedgerReplay) Events() []RealizedEvent {
	var events []RealizedEvent
	for _, ir := range r.instruments {
		events = append(events, ir.Events...)
	}
	return events
}

// RealizedPnL is the total realized profit across instruments.
func (r *LedgerReplay) RealizedPnL() Money {
	var total Money
	for _, ir := range r.instruments {
		total = total.Add(ir.RealizedPnL())
	}
	return total
}
