// Package store persists folio ledgers and holdings snapshots.
//
// Every store implements folio.Store and folio.ChangeApplier.
package store

import (
	"cmp"
	"slices"

	"github.com/etnz/folio"
)

var (
	_ folio.Store         = (*Memory)(nil)
	_ folio.ChangeApplier = (*Memory)(nil)
	_ folio.Store         = (*Pebble)(nil)
	_ folio.ChangeApplier = (*Pebble)(nil)
	_ folio.Store         = (*Postgres)(nil)
	_ folio.ChangeApplier = (*Postgres)(nil)
)

func sortBySymbol(holdings []folio.Holding) {
	slices.SortFunc(holdings, func(a, b folio.Holding) int { return cmp.Compare(a.Symbol, b.Symbol) })
}
