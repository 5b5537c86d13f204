package engine

import (
	"fmt"

	"github.com/bitfsorg/libmint-go/access"
	"github.com/bitfsorg/libmint-go/admission"
	"github.com/bitfsorg/libmint-go/payrail"
)

// Engine variants.
const (
	VariantSimple    = "simple"
	VariantWhitelist = "whitelist"
)

// Simple engine constants.
const (
	SimpleMaxSupply    = 5000
	SimpleMaxPerCall   = 2
	SimpleMaxPerWallet = 2
	SimpleUnitPrice    = "0.3" // ether
)

// Whitelist engine constants.
const (
	WhitelistMaxSupply = 3333

	WhitelistPhaseMaxPerCall   = 1
	WhitelistPhaseMaxPerWallet = 1
	WhitelistPhaseUnitPrice    = "0.05" // ether

	PublicPhaseMaxPerCall   = 3
	PublicPhaseMaxPerWallet = 3
	PublicPhaseUnitPrice    = "0.065" // ether
)

// Params are the supply cap and per-phase limits of an engine.
type Params struct {
	MaxSupply uint64
	Limits    map[access.Phase]admission.Limits
}

// DefaultSimpleParams returns the limits of the simple engine.
func DefaultSimpleParams() Params {
	return Params{
		MaxSupply: SimpleMaxSupply,
		Limits: map[access.Phase]admission.Limits{
			access.PhaseSale: {
				UnitPrice:    payrail.MustParseEther(SimpleUnitPrice),
				MaxPerCall:   SimpleMaxPerCall,
				MaxPerWallet: SimpleMaxPerWallet,
			},
		},
	}
}

// DefaultWhitelistParams returns the limits of the whitelist engine.
func DefaultWhitelistParams() Params {
	return Params{
		MaxSupply: WhitelistMaxSupply,
		Limits: map[access.Phase]admission.Limits{
			access.PhaseWhitelist: {
				UnitPrice:        payrail.MustParseEther(WhitelistPhaseUnitPrice),
				MaxPerCall:       WhitelistPhaseMaxPerCall,
				MaxPerWallet:     WhitelistPhaseMaxPerWallet,
				RequireWhitelist: true,
			},
			access.PhasePublic: {
				UnitPrice:    payrail.MustParseEther(PublicPhaseUnitPrice),
				MaxPerCall:   PublicPhaseMaxPerCall,
				MaxPerWallet: PublicPhaseMaxPerWallet,
			},
		},
	}
}

// defaultParams returns the default params of variant.
func defaultParams(variant string) Params {
	if variant == VariantWhitelist {
		return DefaultWhitelistParams()
	}
	return DefaultSimpleParams()
}

// requiredPhases lists the phases each variant mints through.
var requiredPhases = map[string][]access.Phase{
	VariantSimple:    {access.PhaseSale},
	VariantWhitelist: {access.PhaseWhitelist, access.PhasePublic},
}

func (p Params) controller(variant string) (*admission.Controller, error) {
	for _, phase := range requiredPhases[variant] {
		if _, ok := p.Limits[phase]; !ok {
			return nil, fmt.Errorf("%w: %s engine needs %s limits", ErrInvalidParams, variant, phase)
		}
	}
	ctrl, err := admission.New(p.MaxSupply, p.Limits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return ctrl, nil
}
