package txn

import (
	"github.com/google/uuid"

	"github.com/shelfdb/shelfdb/errs"
)

// State is a transaction's lifecycle stage.
type State int

const (
	StateOpen State = iota
	StateCommitting
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCommitting:
		return "committing"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Transaction is an ordered queue of operations identified by a uuid,
// grounded on original_source/deeb_core/src/database/transaction.rs.
type Transaction struct {
	ID    string
	State State
	Ops   []Operation
}

// New starts a fresh, open transaction.
func New() *Transaction {
	return &Transaction{ID: uuid.New().String(), State: StateOpen}
}

// Enqueue appends an operation to the transaction's queue. Enqueueing
// onto a transaction that is no longer open is rejected.
func (t *Transaction) Enqueue(op Operation) error {
	if t.State != StateOpen {
		return errs.InvalidArgumentf("transaction %s is %s, cannot enqueue", t.ID, t.State)
	}
	t.Ops = append(t.Ops, op)
	return nil
}
