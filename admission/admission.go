// Package admission decides whether a mint request may proceed.
//
// Checks run in a fixed order (phase gate, quantity, payment, supply) and the
// first failure is returned. A Controller never mutates state; on success it
// hands back an Authorization that the engine consumes exactly once.
package admission

import (
	"fmt"
	"math/big"

	"github.com/bitfsorg/libmint-go/access"
	"github.com/bitfsorg/libmint-go/actor"
	"github.com/bitfsorg/libmint-go/payrail"
)

// Limits are the fixed per-phase constants of a policy.
type Limits struct {
	UnitPrice        *big.Int // wei per unit
	MaxPerCall       uint64
	MaxPerWallet     uint64 // counted per phase
	RequireWhitelist bool
}

// PolicyView is the read side of access.Policy.
type PolicyView interface {
	IsOpen(phase access.Phase) bool
	IsWhitelisted(a actor.Actor) bool
}

// LedgerView is the read side of registry.Registry.
type LedgerView interface {
	Minted(a actor.Actor, phase access.Phase) uint64
	TotalIssued() uint64
}

// Request is a paid mint call.
type Request struct {
	Caller   actor.Actor
	Phase    access.Phase
	Quantity uint64
	Value    *big.Int // attached payment in wei; nil means zero
}

// Authorization is a successful admission decision.
type Authorization struct {
	Recipient actor.Actor
	Phase     access.Phase
	Quantity  uint64
	Value     *big.Int // payment to retain; zero for airdrops
	AirDrop   bool

	used bool
}

// Consume marks the authorization used. A second call fails.
func (a *Authorization) Consume() error {
	if a.used {
		return ErrAuthorizationUsed
	}
	a.used = true
	return nil
}

// Controller holds the supply cap and per-phase limits of one engine.
type Controller struct {
	maxSupply uint64
	limits    map[access.Phase]Limits
}

// New validates the limits and returns a controller.
func New(maxSupply uint64, limits map[access.Phase]Limits) (*Controller, error) {
	if maxSupply == 0 {
		return nil, fmt.Errorf("%w: max supply must be positive", ErrInvalidLimits)
	}
	copied := make(map[access.Phase]Limits, len(limits))
	for phase, l := range limits {
		if !phase.Valid() {
			return nil, fmt.Errorf("%w: %w: %d", ErrInvalidLimits, access.ErrUnknownPhase, uint8(phase))
		}
		if l.UnitPrice == nil || l.UnitPrice.Sign() <= 0 {
			return nil, fmt.Errorf("%w: %s unit price must be positive", ErrInvalidLimits, phase)
		}
		if l.MaxPerCall == 0 || l.MaxPerWallet == 0 {
			return nil, fmt.Errorf("%w: %s caps must be positive", ErrInvalidLimits, phase)
		}
		l.UnitPrice = new(big.Int).Set(l.UnitPrice)
		copied[phase] = l
	}
	return &Controller{maxSupply: maxSupply, limits: copied}, nil
}

// MaxSupply returns the global supply cap.
func (c *Controller) MaxSupply() uint64 { return c.maxSupply }

// Limits returns the limits of phase.
func (c *Controller) Limits(phase access.Phase) (Limits, bool) {
	l, ok := c.limits[phase]
	if ok {
		l.UnitPrice = new(big.Int).Set(l.UnitPrice)
	}
	return l, ok
}

// Price returns quantity × unit price for phase.
func (c *Controller) Price(phase access.Phase, quantity uint64) (*big.Int, error) {
	l, ok := c.limits[phase]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPhaseNotConfigured, phase)
	}
	return new(big.Int).Mul(l.UnitPrice, new(big.Int).SetUint64(quantity)), nil
}

// CheckMint validates a paid mint against the policy and the ledger.
func (c *Controller) CheckMint(p PolicyView, l LedgerView, req Request) (*Authorization, error) {
	lim, ok := c.limits[req.Phase]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPhaseNotConfigured, req.Phase)
	}

	// Phase gate.
	if lim.RequireWhitelist {
		if !p.IsOpen(req.Phase) {
			return nil, fmt.Errorf("%w: %s phase closed", ErrNotWhitelisted, req.Phase)
		}
		if !p.IsWhitelisted(req.Caller) {
			return nil, ErrNotWhitelisted
		}
	} else if !p.IsOpen(req.Phase) {
		return nil, fmt.Errorf("%w: %s", ErrSaleNotActive, req.Phase)
	}

	// Quantity.
	if req.Quantity == 0 {
		return nil, fmt.Errorf("%w: zero", ErrInvalidQuantity)
	}
	if req.Quantity > lim.MaxPerCall {
		return nil, fmt.Errorf("%w: %d exceeds per-call max %d", ErrInvalidQuantity, req.Quantity, lim.MaxPerCall)
	}
	minted := l.Minted(req.Caller, req.Phase)
	if minted > lim.MaxPerWallet || req.Quantity > lim.MaxPerWallet-minted {
		return nil, fmt.Errorf("%w: %d + %d exceeds per-wallet max %d",
			ErrInvalidQuantity, minted, req.Quantity, lim.MaxPerWallet)
	}

	// Payment.
	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	required := new(big.Int).Mul(lim.UnitPrice, new(big.Int).SetUint64(req.Quantity))
	switch value.Cmp(required) {
	case -1:
		return nil, fmt.Errorf("%w: sent %s, need %s",
			ErrNotEnoughEth, payrail.FormatEther(value), payrail.FormatEther(required))
	case 1:
		return nil, fmt.Errorf("%w: %w: sent %s, need exactly %s",
			ErrNotEnoughEth, ErrOverpayment, payrail.FormatEther(value), payrail.FormatEther(required))
	}

	// Supply.
	if err := c.checkSupply(l, req.Quantity); err != nil {
		return nil, err
	}

	return &Authorization{
		Recipient: req.Caller,
		Phase:     req.Phase,
		Quantity:  req.Quantity,
		Value:     new(big.Int).Set(value),
	}, nil
}

// CheckAirDrop validates an administrator airdrop. Only supply is enforced
// beyond a positive quantity and a non-zero recipient.
func (c *Controller) CheckAirDrop(l LedgerView, to actor.Actor, quantity uint64) (*Authorization, error) {
	if to.IsZero() {
		return nil, ErrInvalidRecipient
	}
	if quantity == 0 {
		return nil, fmt.Errorf("%w: zero", ErrInvalidQuantity)
	}
	if err := c.checkSupply(l, quantity); err != nil {
		return nil, err
	}
	return &Authorization{
		Recipient: to,
		Quantity:  quantity,
		Value:     new(big.Int),
		AirDrop:   true,
	}, nil
}

func (c *Controller) checkSupply(l LedgerView, quantity uint64) error {
	total := l.TotalIssued()
	if total > c.maxSupply || quantity > c.maxSupply-total {
		return fmt.Errorf("%w: %d issued + %d > %d", ErrMaxSupplyExceeded, total, quantity, c.maxSupply)
	}
	return nil
}
