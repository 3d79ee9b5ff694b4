package store

import (
	"context"
	"slices"
	"sync"

	"github.com/etnz/folio"
)

// Memory keeps everything in process memory. Its zero value is ready to use.
type Memory struct {
	mu       sync.RWMutex
	txs      map[string][]folio.Transaction
	holdings map[folio.HoldingKey]folio.Holding
}

func (m *Memory) LoadTransactions(ctx context.Context, owner string) ([]folio.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.txs[owner]), nil
}

func (m *Memory) LoadHoldings(ctx context.Context, owner string) ([]folio.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var holdings []folio.Holding
	for k, h := range m.holdings {
		if k.Owner == owner {
			holdings = append(holdings, h)
		}
	}
	sortBySymbol(holdings)
	return holdings, nil
}

func (m *Memory) SaveHolding(ctx context.Context, h folio.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.save(h)
	return nil
}

func (m *Memory) DeleteHolding(ctx context.Context, owner, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holdings, folio.HoldingKey{Owner: owner, Symbol: symbol})
	return nil
}

func (m *Memory) AppendTransaction(ctx context.Context, tx folio.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.append(tx)
	return nil
}

// ApplyChanges implements folio.ChangeApplier.
func (m *Memory) ApplyChanges(ctx context.Context, changes ...folio.Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range changes {
		switch {
		case c.Save != nil:
			m.save(*c.Save)
		case c.Delete != nil:
			delete(m.holdings, *c.Delete)
		}
		if c.Record.Owner != "" {
			m.append(c.Record)
		}
	}
	return nil
}

func (m *Memory) save(h folio.Holding) {
	if m.holdings == nil {
		m.holdings = make(map[folio.HoldingKey]folio.Holding)
	}
	m.holdings[h.Key()] = h
}

func (m *Memory) append(tx folio.Transaction) {
	if m.txs == nil {
		m.txs = make(map[string][]folio.Transaction)
	}
	m.txs[tx.Owner] = append(m.txs[tx.Owner], tx)
}
