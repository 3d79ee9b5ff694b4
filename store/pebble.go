package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/etnz/folio"
)

// Pebble stores owners in a local pebble database.
//
// keys: h:<owner>\x00<symbol> holds a holding, t:<owner>\x00<8-byte-seq> a
// transaction in insertion order.
type Pebble struct {
	db *pebble.DB
	mu sync.Mutex // serializes transaction sequence allocation
}

// OpenPebble opens, or creates, the database in directory path.
func OpenPebble(path string) (*Pebble, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("could not open pebble store %s: %w", path, err)
	}
	return &Pebble{db: db}, nil
}

func (s *Pebble) Close() error { return s.db.Close() }

func ownerPrefix(kind byte, owner string) []byte {
	p := append([]byte{kind, ':'}, owner...)
	return append(p, 0)
}

func kHolding(owner, symbol string) []byte { return append(ownerPrefix('h', owner), symbol...) }

func kTransaction(owner string, seq uint64) []byte {
	return binary.BigEndian.AppendUint64(ownerPrefix('t', owner), seq)
}

// upperBound returns the smallest key greater than every key starting with prefix.
func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil // no upper-bound
}

// scan calls fn with the value of every key starting with prefix, in key order.
func (s *Pebble) scan(prefix []byte, fn func(value []byte) error) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upperBound(prefix)})
	if err != nil {
		return err
	}
	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Value()); err != nil {
			iter.Close()
			return err
		}
	}
	return errors.Join(iter.Error(), iter.Close())
}

func (s *Pebble) LoadTransactions(ctx context.Context, owner string) ([]folio.Transaction, error) {
	var txs []folio.Transaction
	err := s.scan(ownerPrefix('t', owner), func(value []byte) error {
		var tx folio.Transaction
		if err := json.Unmarshal(value, &tx); err != nil {
			return fmt.Errorf("failed to unmarshal transaction: %w", err)
		}
		txs = append(txs, tx)
		return nil
	})
	return txs, err
}

// LoadHoldings returns the holdings ordered by symbol, the key order.
func (s *Pebble) LoadHoldings(ctx context.Context, owner string) ([]folio.Holding, error) {
	var holdings []folio.Holding
	err := s.scan(ownerPrefix('h', owner), func(value []byte) error {
		var h folio.Holding
		if err := json.Unmarshal(value, &h); err != nil {
			return fmt.Errorf("failed to unmarshal holding: %w", err)
		}
		holdings = append(holdings, h)
		return nil
	})
	return holdings, err
}

func (s *Pebble) SaveHolding(ctx context.Context, h folio.Holding) error {
	return s.ApplyChanges(ctx, folio.Change{Save: &h})
}

func (s *Pebble) DeleteHolding(ctx context.Context, owner, symbol string) error {
	if err := s.db.Delete(kHolding(owner, symbol), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

func (s *Pebble) AppendTransaction(ctx context.Context, tx folio.Transaction) error {
	return s.ApplyChanges(ctx, folio.Change{Record: tx})
}

// ApplyChanges writes the holding changes and the transaction records in one
// batch. A zero Record is not written.
func (s *Pebble) ApplyChanges(ctx context.Context, changes ...folio.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.db.NewBatch()
	defer batch.Close()

	seqs := make(map[string]uint64) // next sequence per owner within the batch
	for _, c := range changes {
		switch {
		case c.Save != nil:
			data, err := json.Marshal(c.Save)
			if err != nil {
				return fmt.Errorf("failed to marshal holding: %w", err)
			}
			if err := batch.Set(kHolding(c.Save.Owner, c.Save.Symbol), data, nil); err != nil {
				return err
			}
		case c.Delete != nil:
			if err := batch.Delete(kHolding(c.Delete.Owner, c.Delete.Symbol), nil); err != nil {
				return err
			}
		}

		owner := c.Record.Owner
		if owner == "" {
			continue
		}
		seq, ok := seqs[owner]
		if !ok {
			var err error
			if seq, err = s.nextSeq(owner); err != nil {
				return err
			}
		}
		seqs[owner] = seq + 1
		data, err := json.Marshal(c.Record)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction: %w", err)
		}
		if err := batch.Set(kTransaction(owner, seq), data, nil); err != nil {
			return err
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit change: %w", err)
	}
	return nil
}

// nextSeq returns the sequence number following the owner's last transaction.
func (s *Pebble) nextSeq(owner string) (uint64, error) {
	prefix := ownerPrefix('t', owner)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: upperBound(prefix)})
	if err != nil {
		return 0, err
	}
	defer iter.Close()
	if !iter.Last() {
		return 0, iter.Error()
	}
	key := iter.Key()
	return binary.BigEndian.Uint64(key[len(prefix):]) + 1, nil
}
