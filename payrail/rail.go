// Package payrail supplies the funds-transfer primitive used to release
// collected mint payments, plus wei/ether unit helpers.
//
// Amounts are wei as *big.Int. Implementations must treat amounts as
// read-only and must not retain them.
package payrail

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/bitfsorg/libmint-go/actor"
)

// Rail moves value to an external account.
//
// Transfer may call back into the caller before it returns, so callers must
// commit their own bookkeeping first.
type Rail interface {
	Transfer(ctx context.Context, to actor.Actor, amount *big.Int) error
}

// Ledger is an in-memory Rail that tracks external balances.
type Ledger struct {
	// BeforeTransfer, if set, runs before the recipient is credited.
	// A non-nil error aborts the transfer. It may re-enter the caller.
	BeforeTransfer func(ctx context.Context, to actor.Actor, amount *big.Int) error

	mu       sync.Mutex
	balances map[actor.Actor]*big.Int
}

// Compile-time interface check.
var _ Rail = (*Ledger)(nil)

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[actor.Actor]*big.Int)}
}

// Transfer credits amount to to.
func (l *Ledger) Transfer(ctx context.Context, to actor.Actor, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if hook := l.BeforeTransfer; hook != nil {
		if err := hook(ctx, to, amount); err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
	}
	l.Fund(to, amount)
	return nil
}

// Fund adds amount to a's external balance without going through a transfer.
func (l *Ledger) Fund(a actor.Actor, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.balances[a]
	if !ok {
		bal = new(big.Int)
		l.balances[a] = bal
	}
	bal.Add(bal, amount)
}

// Balance returns a copy of a's external balance.
func (l *Ledger) Balance(a actor.Actor) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if bal, ok := l.balances[a]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}
