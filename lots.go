package folio

import "time"

// Lot is a quantity acquired at one time and price, tracked until fully sold.
type Lot struct {
	Remaining  Quantity
	UnitCost   Money
	AcquiredAt time.Time
}

// Cost is the cost basis of the remaining quantity.
func (l Lot) Cost() Money { return l.UnitCost.Mul(l.Remaining) }

// lots is a FIFO queue of lots for one instrument, oldest first.
type lots []Lot

// acquire appends a new lot at the back of the queue.
func (l *lots) acquire(quantity Quantity, unitCost Money, on time.Time) {
	*l = append(*l, Lot{Remaining: quantity, UnitCost: unitCost, AcquiredAt: on})
}

// consume sells quantityToSell from the oldest lots first. For each lot touched it
// calls matched with the consumed part of that lot. Lots are popped once empty.
// It returns the quantity that could not be matched against any lot.
func (l *lots) consume(quantityToSell Quantity, matched func(from Lot, quantity Quantity)) Quantity {
	q := *l
	for quantityToSell.IsPositive() && len(q) > 0 {
		head := &q[0]
		take := quantityToSell.Min(head.Remaining)
		matched(*head, take)
		head.Remaining = head.Remaining.Sub(take)
		quantityToSell = quantityToSell.Sub(take)
		if !head.Remaining.IsPositive() {
			q = q[1:]
		}
	}
	*l = q
	return quantityToSell
}

// cost is the total cost basis of the open lots.
func (l lots) cost() Money {
	var total Money
	for _, lot := range l {
		total = total.Add(lot.Cost())
	}
	return total
}

// quantity is the total open quantity.
func (l lots) quantity() Quantity {
	var total Quantity
	for _, lot := range l {
		total = total.Add(lot.Remaining)
	}
	return total
}
