package chronology

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/termstore/internal/errs"
	"github.com/roach88/termstore/internal/ids"
)

type txState uint8

const (
	txOpen txState = iota
	txCommitted
	txCanceled
)

// Transaction groups versions created together. Its stamps stay uncommitted
// until Commit stamps them with the commit time, or Cancel marks them
// CANCELED.
type Transaction struct {
	id       uuid.UUID
	name     string
	registry *StampRegistry

	mu         sync.Mutex
	state      txState
	stamps     []int32
	components []ids.Nid
}

// Begin opens a transaction on the registry.
func (r *StampRegistry) Begin(name string) *Transaction {
	return &Transaction{id: uuid.New(), name: name, registry: r}
}

func (tx *Transaction) ID() uuid.UUID { return tx.id }
func (tx *Transaction) Name() string  { return tx.name }

// NewStamp allocates an uncommitted stamp owned by the transaction.
func (tx *Transaction) NewStamp(status Status, author, module, path ids.Nid) (int32, error) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.state != txOpen {
		return 0, errs.Invariantf("transaction %q is no longer open", tx.name)
	}
	seq := tx.registry.StampSequence(Stamp{
		Status: status,
		Time:   UncommittedTime,
		Author: author,
		Module: module,
		Path:   path,
	})
	tx.stamps = append(tx.stamps, seq)
	return seq, nil
}

// register records a version created under the transaction.
func (tx *Transaction) register(stampSeq int32, component ids.Nid) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.state != txOpen {
		return errs.Invariantf("transaction %q is no longer open", tx.name)
	}
	if !slices.Contains(tx.stamps, stampSeq) {
		tx.stamps = append(tx.stamps, stampSeq)
	}
	if !slices.Contains(tx.components, component) {
		tx.components = append(tx.components, component)
	}
	return nil
}

// Components returns the nids of the chronologies touched, in first-touch order.
func (tx *Transaction) Components() []ids.Nid {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return slices.Clone(tx.components)
}

// Stamps returns the stamp sequences owned by the transaction.
func (tx *Transaction) Stamps() []int32 {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return slices.Clone(tx.stamps)
}

// Commit sets the time of every uncommitted stamp to at.
func (tx *Transaction) Commit(at time.Time) error {
	return tx.finish(txCommitted, at)
}

// Cancel marks every uncommitted stamp CANCELED at time at.
func (tx *Transaction) Cancel(at time.Time) error {
	return tx.finish(txCanceled, at)
}

func (tx *Transaction) finish(to txState, at time.Time) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.state != txOpen {
		return errs.Invariantf("transaction %q is no longer open", tx.name)
	}
	if err := tx.registry.finish(tx.stamps, at.UnixMilli(), to == txCanceled); err != nil {
		return err
	}
	tx.state = to
	return nil
}
