// Package engine implements the issuance engines.
//
// Simple mints through a single sale phase; Whitelist mints through a
// whitelist phase and a public phase, each independently priced and capped.
// Both share one core: every entry point runs under a single mutex and
// commits copy-on-write, so a call either fully applies (credit, retained
// payment, persisted snapshot) or leaves no trace.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/bitfsorg/libmint-go/access"
	"github.com/bitfsorg/libmint-go/actor"
	"github.com/bitfsorg/libmint-go/admission"
	"github.com/bitfsorg/libmint-go/payrail"
	"github.com/bitfsorg/libmint-go/registry"
	"github.com/bitfsorg/libmint-go/store"
)

// Engine is the surface shared by both variants.
type Engine interface {
	AirDropMint(caller, to actor.Actor, quantity uint64) (*Receipt, error)
	Withdraw(ctx context.Context, caller actor.Actor) (*big.Int, error)
	BalanceOf(a actor.Actor) uint64
	OwnerOf(tokenID uint64) (actor.Actor, error)
	TokenURI(tokenID uint64) (string, error)
	TotalSupply() uint64
	MaxSupply() uint64
	Holders() []registry.Holding
	Price(phase access.Phase, quantity uint64) (*big.Int, error)
	Retained() *big.Int
	Administrator() actor.Actor
	Name() string
	Variant() string
	BaseURI() string
	Version() uint64
}

var (
	_ Engine = (*Simple)(nil)
	_ Engine = (*Whitelist)(nil)
)

// Receipt describes one committed issuance.
type Receipt struct {
	Recipient    actor.Actor
	Phase        access.Phase // meaningless for airdrops
	AirDrop      bool
	FirstTokenID uint64
	Quantity     uint64
	Paid         *big.Int // wei retained by the engine
}

// state is everything a call may mutate.
type state struct {
	policy   *access.Policy
	registry *registry.Registry
	retained *big.Int
	revealed bool
	version  uint64
}

func newState() *state {
	return &state{
		policy:   access.NewPolicy(),
		registry: registry.New(),
		retained: new(big.Int),
	}
}

func (s *state) clone() *state {
	return &state{
		policy:   s.policy.Clone(),
		registry: s.registry.Clone(),
		retained: new(big.Int).Set(s.retained),
		revealed: s.revealed,
		version:  s.version,
	}
}

// core is shared by both engine variants.
type core struct {
	mu sync.Mutex

	name      string
	variant   string
	admin     actor.Actor
	baseURI   string
	hiddenURI string

	ctrl  *admission.Controller
	st    *state
	store store.Store
	rail  payrail.Rail
	log   *zap.Logger
}

func newCore(variant string, admin actor.Actor, baseURI, hiddenURI string, opts []Option) (*core, error) {
	if admin.IsZero() {
		return nil, fmt.Errorf("%w: administrator must be set", ErrInvalidParams)
	}
	if baseURI == "" {
		return nil, fmt.Errorf("%w: base metadata URI must be set", ErrInvalidParams)
	}
	c, err := buildCore(variant, opts)
	if err != nil {
		return nil, err
	}
	c.admin = admin
	c.baseURI = baseURI
	c.hiddenURI = hiddenURI
	c.st = newState()

	if c.store != nil {
		_, err := c.store.Load(c.name)
		if err == nil {
			return nil, fmt.Errorf("%w: %q", ErrEngineExists, c.name)
		}
		if !errors.Is(err, store.ErrSnapshotNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrPersist, err)
		}
		if err := c.store.Save(c.snapshot(c.st)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}

	c.log.Info("engine deployed",
		zap.String("variant", variant),
		zap.Stringer("administrator", admin),
		zap.Uint64("max_supply", c.ctrl.MaxSupply()))
	return c, nil
}

func openCore(variant string, s store.Store, name string, opts []Option) (*core, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidParams)
	}
	opts = append(append([]Option{}, opts...), WithName(name), WithStore(s))
	c, err := buildCore(variant, opts)
	if err != nil {
		return nil, err
	}

	snap, err := s.Load(c.name)
	if err != nil {
		return nil, err
	}
	if snap.Variant != variant {
		return nil, fmt.Errorf("%w: %q is a %s engine", ErrVariantMismatch, c.name, snap.Variant)
	}
	st, err := restoreState(snap)
	if err != nil {
		return nil, err
	}
	c.admin = snap.Administrator
	c.baseURI = snap.BaseURI
	c.hiddenURI = snap.HiddenURI
	c.st = st
	return c, nil
}

func buildCore(variant string, opts []Option) (*core, error) {
	o := buildOptions(variant, opts)
	if o.name == "" {
		return nil, fmt.Errorf("%w: engine name must not be empty", ErrInvalidParams)
	}
	ctrl, err := o.params.controller(variant)
	if err != nil {
		return nil, err
	}
	return &core{
		name:    o.name,
		variant: variant,
		ctrl:    ctrl,
		store:   o.store,
		rail:    o.rail,
		log:     o.logger.With(zap.String("engine", o.name)),
	}, nil
}

// update runs fn against a copy of the state and installs the copy only if
// fn and the snapshot write both succeed. The caller holds c.mu.
func (c *core) update(fn func(next *state) error) error {
	next := c.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	next.version++
	if c.store != nil {
		if err := c.store.Save(c.snapshot(next)); err != nil {
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}
	c.st = next
	return nil
}

func (c *core) requireAdmin(caller actor.Actor) error {
	if caller != c.admin {
		return fmt.Errorf("%w: %s is not the administrator", ErrUnauthorized, caller)
	}
	return nil
}

// issue commits an authorization into next.
func issue(next *state, auth *admission.Authorization) (*Receipt, error) {
	if err := auth.Consume(); err != nil {
		return nil, err
	}
	var (
		first uint64
		err   error
	)
	if auth.AirDrop {
		first, err = next.registry.Credit(auth.Recipient, auth.Quantity)
	} else {
		first, err = next.registry.CreditPhase(auth.Recipient, auth.Quantity, auth.Phase)
	}
	if err != nil {
		return nil, err
	}
	next.retained.Add(next.retained, auth.Value)
	return &Receipt{
		Recipient:    auth.Recipient,
		Phase:        auth.Phase,
		AirDrop:      auth.AirDrop,
		FirstTokenID: first,
		Quantity:     auth.Quantity,
		Paid:         new(big.Int).Set(auth.Value),
	}, nil
}

func (c *core) mint(caller actor.Actor, phase access.Phase, quantity uint64, value *big.Int) (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	auth, err := c.ctrl.CheckMint(c.st.policy, c.st.registry, admission.Request{
		Caller:   caller,
		Phase:    phase,
		Quantity: quantity,
		Value:    value,
	})
	if err != nil {
		c.log.Debug("mint rejected",
			zap.Stringer("caller", caller),
			zap.Stringer("phase", phase),
			zap.Uint64("quantity", quantity),
			zap.Error(err))
		return nil, err
	}

	var rcpt *Receipt
	err = c.update(func(next *state) error {
		var err error
		rcpt, err = issue(next, auth)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("minted",
		zap.Stringer("caller", caller),
		zap.Stringer("phase", phase),
		zap.Uint64("first_token_id", rcpt.FirstTokenID),
		zap.Uint64("quantity", quantity),
		zap.String("paid_eth", payrail.FormatEther(rcpt.Paid)))
	return rcpt, nil
}

// AirDropMint issues quantity units to to without payment. Administrator only.
// The supply cap still applies; no phase or per-wallet limit does.
func (c *core) AirDropMint(caller, to actor.Actor, quantity uint64) (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireAdmin(caller); err != nil {
		return nil, err
	}
	auth, err := c.ctrl.CheckAirDrop(c.st.registry, to, quantity)
	if err != nil {
		c.log.Debug("airdrop rejected", zap.Stringer("to", to), zap.Uint64("quantity", quantity), zap.Error(err))
		return nil, err
	}

	var rcpt *Receipt
	err = c.update(func(next *state) error {
		var err error
		rcpt, err = issue(next, auth)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.log.Info("airdropped",
		zap.Stringer("to", to),
		zap.Uint64("first_token_id", rcpt.FirstTokenID),
		zap.Uint64("quantity", quantity))
	return rcpt, nil
}

func (c *core) toggle(caller actor.Actor, phase access.Phase) (access.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireAdmin(caller); err != nil {
		return access.Closed, err
	}
	var s access.State
	err := c.update(func(next *state) error {
		var err error
		s, err = next.policy.Toggle(phase)
		return err
	})
	if err != nil {
		return access.Closed, err
	}
	c.log.Info("phase toggled", zap.Stringer("phase", phase), zap.Stringer("state", s))
	return s, nil
}

func (c *core) isOpen(phase access.Phase) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.policy.IsOpen(phase)
}

// Withdraw sends the whole retained balance to the administrator and returns
// the amount sent. The balance is zeroed and persisted before the rail is
// called, so a rail that re-enters the engine sees nothing left to withdraw.
// If the transfer fails the amount is credited back.
func (c *core) Withdraw(ctx context.Context, caller actor.Actor) (*big.Int, error) {
	amount, err := c.drain(caller)
	if err != nil || amount.Sign() == 0 {
		return amount, err
	}

	if err := c.rail.Transfer(ctx, c.admin, amount); err != nil {
		if rerr := c.refund(amount); rerr != nil {
			c.log.Error("withdraw refund failed",
				zap.String("amount_eth", payrail.FormatEther(amount)),
				zap.NamedError("transfer_error", err),
				zap.Error(rerr))
			return nil, fmt.Errorf("%w: %w (refund: %w)", ErrWithdrawFailed, err, rerr)
		}
		c.log.Warn("withdraw transfer failed", zap.String("amount_eth", payrail.FormatEther(amount)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrWithdrawFailed, err)
	}

	c.log.Info("withdrawn",
		zap.Stringer("to", c.admin),
		zap.String("amount_eth", payrail.FormatEther(amount)))
	return amount, nil
}

// drain zeroes the retained balance and returns what it held.
func (c *core) drain(caller actor.Actor) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireAdmin(caller); err != nil {
		return nil, err
	}
	if c.rail == nil {
		return nil, ErrNoRail
	}
	amount := new(big.Int).Set(c.st.retained)
	if amount.Sign() == 0 {
		return amount, nil
	}
	err := c.update(func(next *state) error {
		next.retained.SetInt64(0)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

func (c *core) refund(amount *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.update(func(next *state) error {
		next.retained.Add(next.retained, amount)
		return nil
	})
}

// BalanceOf returns the number of units held by a.
func (c *core) BalanceOf(a actor.Actor) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.registry.BalanceOf(a)
}

// OwnerOf returns the holder of tokenID.
func (c *core) OwnerOf(tokenID uint64) (actor.Actor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.registry.OwnerOf(tokenID)
}

// TotalSupply returns the number of units issued so far.
func (c *core) TotalSupply() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.registry.TotalIssued()
}

// Holders returns every holding, largest first.
func (c *core) Holders() []registry.Holding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.registry.Holders()
}

// MaxSupply returns the fixed supply cap.
func (c *core) MaxSupply() uint64 { return c.ctrl.MaxSupply() }

// Price returns what quantity units cost in phase.
func (c *core) Price(phase access.Phase, quantity uint64) (*big.Int, error) {
	return c.ctrl.Price(phase, quantity)
}

// Retained returns the collected, not yet withdrawn, payments in wei.
func (c *core) Retained() *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return new(big.Int).Set(c.st.retained)
}

// Administrator returns the actor allowed to toggle, airdrop and withdraw.
func (c *core) Administrator() actor.Actor { return c.admin }

// Name returns the name the engine persists under.
func (c *core) Name() string { return c.name }

// Variant returns VariantSimple or VariantWhitelist.
func (c *core) Variant() string { return c.variant }

// BaseURI returns the base metadata location.
func (c *core) BaseURI() string { return c.baseURI }

// Version returns the number of committed state changes.
func (c *core) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.version
}

// TokenURI returns the metadata location of an issued token: the hidden URI
// while one is set and not yet revealed, otherwise base + id + ".json".
func (c *core) TokenURI(tokenID uint64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.st.registry.OwnerOf(tokenID); err != nil {
		return "", err
	}
	if c.hiddenURI != "" && !c.st.revealed {
		return c.hiddenURI, nil
	}
	return c.baseURI + strconv.FormatUint(tokenID, 10) + ".json", nil
}
