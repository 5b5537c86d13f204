package engine

import (
	"math/big"

	"github.com/bitfsorg/libmint-go/access"
	"github.com/bitfsorg/libmint-go/actor"
	"github.com/bitfsorg/libmint-go/store"
)

// Simple mints through a single sale phase at a fixed price.
type Simple struct {
	*core
}

// NewSimple deploys a simple engine administered by admin. With a store
// option, the initial state is persisted and the name must be unused.
func NewSimple(admin actor.Actor, baseURI string, opts ...Option) (*Simple, error) {
	c, err := newCore(VariantSimple, admin, baseURI, "", opts)
	if err != nil {
		return nil, err
	}
	return &Simple{core: c}, nil
}

// OpenSimple restores a simple engine persisted under name.
func OpenSimple(s store.Store, name string, opts ...Option) (*Simple, error) {
	c, err := openCore(VariantSimple, s, name, opts)
	if err != nil {
		return nil, err
	}
	return &Simple{core: c}, nil
}

// Mint issues quantity units to caller, who attaches value wei.
func (e *Simple) Mint(caller actor.Actor, quantity uint64, value *big.Int) (*Receipt, error) {
	return e.mint(caller, access.PhaseSale, quantity, value)
}

// ToggleSaleState opens or closes the sale. Administrator only.
func (e *Simple) ToggleSaleState(caller actor.Actor) (access.State, error) {
	return e.toggle(caller, access.PhaseSale)
}

// SaleActive reports whether Mint is open.
func (e *Simple) SaleActive() bool { return e.isOpen(access.PhaseSale) }

// MintPrice returns what quantity units cost.
func (e *Simple) MintPrice(quantity uint64) (*big.Int, error) {
	return e.Price(access.PhaseSale, quantity)
}
