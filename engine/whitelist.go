package engine

import (
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/bitfsorg/libmint-go/access"
	"github.com/bitfsorg/libmint-go/actor"
	"github.com/bitfsorg/libmint-go/store"
)

// Whitelist mints through a members-only phase and a public phase. The two
// phases are priced and capped independently and may be open at once.
// Token metadata points at the hidden URI until the administrator reveals.
type Whitelist struct {
	*core
}

// NewWhitelist deploys a whitelist engine administered by admin.
func NewWhitelist(admin actor.Actor, baseURI, hiddenURI string, opts ...Option) (*Whitelist, error) {
	if hiddenURI == "" {
		return nil, fmt.Errorf("%w: hidden metadata URI must be set", ErrInvalidParams)
	}
	c, err := newCore(VariantWhitelist, admin, baseURI, hiddenURI, opts)
	if err != nil {
		return nil, err
	}
	return &Whitelist{core: c}, nil
}

// OpenWhitelist restores a whitelist engine persisted under name.
func OpenWhitelist(s store.Store, name string, opts ...Option) (*Whitelist, error) {
	c, err := openCore(VariantWhitelist, s, name, opts)
	if err != nil {
		return nil, err
	}
	return &Whitelist{core: c}, nil
}

// WhitelistMint issues quantity units to a whitelisted caller.
func (e *Whitelist) WhitelistMint(caller actor.Actor, quantity uint64, value *big.Int) (*Receipt, error) {
	return e.mint(caller, access.PhaseWhitelist, quantity, value)
}

// PublicMint issues quantity units to any caller while the public phase is open.
func (e *Whitelist) PublicMint(caller actor.Actor, quantity uint64, value *big.Int) (*Receipt, error) {
	return e.mint(caller, access.PhasePublic, quantity, value)
}

// ToggleWhitelist flips a's membership and returns it. Administrator only.
func (e *Whitelist) ToggleWhitelist(caller, a actor.Actor) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return false, err
	}
	var member bool
	err := e.update(func(next *state) error {
		member = next.policy.ToggleWhitelist(a)
		return nil
	})
	if err != nil {
		return false, err
	}
	e.log.Info("whitelist toggled", zap.Stringer("actor", a), zap.Bool("member", member))
	return member, nil
}

// IsWhitelisted reports whether a is a whitelist member.
func (e *Whitelist) IsWhitelisted(a actor.Actor) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.policy.IsWhitelisted(a)
}

// Whitelisted returns every member.
func (e *Whitelist) Whitelisted() []actor.Actor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.policy.Whitelist()
}

// ToggleWlMintActive opens or closes the whitelist phase. Administrator only.
func (e *Whitelist) ToggleWlMintActive(caller actor.Actor) (access.State, error) {
	return e.toggle(caller, access.PhaseWhitelist)
}

// TogglePubMintActive opens or closes the public phase. Administrator only.
func (e *Whitelist) TogglePubMintActive(caller actor.Actor) (access.State, error) {
	return e.toggle(caller, access.PhasePublic)
}

// WlMintActive reports whether the whitelist phase is open.
func (e *Whitelist) WlMintActive() bool { return e.isOpen(access.PhaseWhitelist) }

// PubMintActive reports whether the public phase is open.
func (e *Whitelist) PubMintActive() bool { return e.isOpen(access.PhasePublic) }

// ToggleRevealed switches token metadata between the hidden and base URI.
// Administrator only.
func (e *Whitelist) ToggleRevealed(caller actor.Actor) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireAdmin(caller); err != nil {
		return false, err
	}
	var revealed bool
	err := e.update(func(next *state) error {
		next.revealed = !next.revealed
		revealed = next.revealed
		return nil
	})
	if err != nil {
		return false, err
	}
	e.log.Info("reveal toggled", zap.Bool("revealed", revealed))
	return revealed, nil
}

// Revealed reports whether token metadata points at the base URI.
func (e *Whitelist) Revealed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.revealed
}

// HiddenURI returns the pre-reveal metadata location.
func (e *Whitelist) HiddenURI() string { return e.hiddenURI }
