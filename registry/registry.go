// Package registry records who holds how many issued units.
//
// Units are issued in contiguous batches with sequential token IDs starting
// at 1, so ownership of any token is recoverable from the batch list alone.
// There is no decrement: units are never burned or transferred here.
package registry

import (
	"fmt"
	"math"
	"sort"

	"github.com/bitfsorg/libmint-go/access"
	"github.com/bitfsorg/libmint-go/actor"
)

// FirstTokenID is the ID of the first unit ever issued.
const FirstTokenID = 1

// Batch is one credit: Quantity tokens starting at Start, held by Owner.
type Batch struct {
	Start    uint64
	Quantity uint64
	Owner    actor.Actor
}

// Holding is one row of the ownership table.
type Holding struct {
	Owner actor.Actor
	Units uint64
}

// Registry is the ownership table plus the total-issued counter.
// It is not safe for concurrent use; the owning engine serializes access.
type Registry struct {
	holdings map[actor.Actor]uint64
	minted   map[access.Phase]map[actor.Actor]uint64
	batches  []Batch
	total    uint64
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		holdings: make(map[actor.Actor]uint64),
		minted:   make(map[access.Phase]map[actor.Actor]uint64),
	}
}

// Restore rebuilds a registry from its batch list and per-phase mint counters.
func Restore(batches []Batch, minted map[access.Phase]map[actor.Actor]uint64) (*Registry, error) {
	r := New()
	for i, b := range batches {
		if b.Start != r.total+FirstTokenID {
			return nil, fmt.Errorf("%w: batch %d starts at %d, want %d",
				ErrInvalidBatches, i, b.Start, r.total+FirstTokenID)
		}
		if _, err := r.Credit(b.Owner, b.Quantity); err != nil {
			return nil, fmt.Errorf("%w: batch %d: %w", ErrInvalidBatches, i, err)
		}
	}
	for phase, counters := range minted {
		for a, n := range counters {
			if n == 0 {
				continue
			}
			if r.minted[phase] == nil {
				r.minted[phase] = make(map[actor.Actor]uint64)
			}
			r.minted[phase][a] = n
		}
	}
	return r, nil
}

// Credit issues qty units to a and returns the first token ID of the batch.
func (r *Registry) Credit(a actor.Actor, qty uint64) (uint64, error) {
	if qty == 0 {
		return 0, ErrZeroQuantity
	}
	if a.IsZero() {
		return 0, ErrZeroActor
	}
	if qty > math.MaxUint64-FirstTokenID-r.total {
		return 0, fmt.Errorf("%w: total %d + %d", ErrOverflow, r.total, qty)
	}

	start := r.total + FirstTokenID
	r.batches = append(r.batches, Batch{Start: start, Quantity: qty, Owner: a})
	r.holdings[a] += qty
	r.total += qty
	return start, nil
}

// CreditPhase issues qty units to a and counts them against a's allowance in phase.
func (r *Registry) CreditPhase(a actor.Actor, qty uint64, phase access.Phase) (uint64, error) {
	start, err := r.Credit(a, qty)
	if err != nil {
		return 0, err
	}
	if r.minted[phase] == nil {
		r.minted[phase] = make(map[actor.Actor]uint64)
	}
	r.minted[phase][a] += qty
	return start, nil
}

// BalanceOf returns the number of units held by a.
func (r *Registry) BalanceOf(a actor.Actor) uint64 { return r.holdings[a] }

// TotalIssued returns the number of units issued so far.
func (r *Registry) TotalIssued() uint64 { return r.total }

// Minted returns how many units a has minted in phase.
func (r *Registry) Minted(a actor.Actor, phase access.Phase) uint64 {
	return r.minted[phase][a]
}

// OwnerOf returns the holder of tokenID.
func (r *Registry) OwnerOf(tokenID uint64) (actor.Actor, error) {
	if tokenID < FirstTokenID || tokenID > r.total {
		return actor.Zero, fmt.Errorf("%w: %d", ErrTokenNotFound, tokenID)
	}
	// First batch whose range ends at or after tokenID.
	i := sort.Search(len(r.batches), func(i int) bool {
		b := r.batches[i]
		return b.Start+b.Quantity-1 >= tokenID
	})
	return r.batches[i].Owner, nil
}

// Holders returns every non-empty holding, largest first, ties in byte order.
func (r *Registry) Holders() []Holding {
	out := make([]Holding, 0, len(r.holdings))
	for a, n := range r.holdings {
		out = append(out, Holding{Owner: a, Units: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		return string(out[i].Owner[:]) < string(out[j].Owner[:])
	})
	return out
}

// Batches returns a copy of the issuance history.
func (r *Registry) Batches() []Batch {
	out := make([]Batch, len(r.batches))
	copy(out, r.batches)
	return out
}

// MintCounters returns a deep copy of the per-phase mint counters.
func (r *Registry) MintCounters() map[access.Phase]map[actor.Actor]uint64 {
	out := make(map[access.Phase]map[actor.Actor]uint64, len(r.minted))
	for phase, counters := range r.minted {
		m := make(map[actor.Actor]uint64, len(counters))
		for a, n := range counters {
			m[a] = n
		}
		out[phase] = m
	}
	return out
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		holdings: make(map[actor.Actor]uint64, len(r.holdings)),
		minted:   r.MintCounters(),
		batches:  r.Batches(),
		total:    r.total,
	}
	for a, n := range r.holdings {
		c.holdings[a] = n
	}
	return c
}
