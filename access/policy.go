// Package access holds the whitelist set and the phase flags that gate minting.
//
// A Policy carries no authorization logic of its own: the owning engine checks
// the administrator before calling any mutator, and serializes access.
package access

import (
	"fmt"
	"sort"

	"github.com/bitfsorg/libmint-go/actor"
)

// Phase identifies a mint mode gated by its own flag.
type Phase uint8

const (
	// PhaseSale is the single phase of the simple engine.
	PhaseSale Phase = iota
	// PhaseWhitelist admits only whitelisted actors.
	PhaseWhitelist
	// PhasePublic admits any actor.
	PhasePublic

	numPhases
)

// Phases lists every phase in declaration order.
var Phases = []Phase{PhaseSale, PhaseWhitelist, PhasePublic}

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSale:
		return "sale"
	case PhaseWhitelist:
		return "whitelist"
	case PhasePublic:
		return "public"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool { return p < numPhases }

// ParsePhase maps a phase name back to its Phase.
func ParsePhase(s string) (Phase, error) {
	for _, p := range Phases {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPhase, s)
}

// State is the two-valued flag of a phase.
type State uint8

const (
	// Closed is the initial state of every phase.
	Closed State = iota
	// Open admits mints for the phase.
	Open
)

// String returns "closed" or "open".
func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Policy is the whitelist plus one independently toggled flag per phase.
// Any combination of open phases is allowed.
type Policy struct {
	whitelist map[actor.Actor]struct{}
	flags     [numPhases]State
}

// NewPolicy returns a policy with an empty whitelist and every phase Closed.
func NewPolicy() *Policy {
	return &Policy{whitelist: make(map[actor.Actor]struct{})}
}

// IsWhitelisted reports whether a is a whitelist member.
func (p *Policy) IsWhitelisted(a actor.Actor) bool {
	_, ok := p.whitelist[a]
	return ok
}

// ToggleWhitelist flips the membership of a and returns the new membership.
func (p *Policy) ToggleWhitelist(a actor.Actor) bool {
	if _, ok := p.whitelist[a]; ok {
		delete(p.whitelist, a)
		return false
	}
	p.whitelist[a] = struct{}{}
	return true
}

// Whitelist returns the members in byte order.
func (p *Policy) Whitelist() []actor.Actor {
	out := make([]actor.Actor, 0, len(p.whitelist))
	for a := range p.whitelist {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return string(out[i][:]) < string(out[j][:])
	})
	return out
}

// State returns the flag of phase. Unknown phases are always Closed.
func (p *Policy) State(phase Phase) State {
	if !phase.Valid() {
		return Closed
	}
	return p.flags[phase]
}

// IsOpen reports whether phase currently admits mints.
func (p *Policy) IsOpen(phase Phase) bool { return p.State(phase) == Open }

// Toggle flips the flag of phase and returns its new state.
func (p *Policy) Toggle(phase Phase) (State, error) {
	if !phase.Valid() {
		return Closed, fmt.Errorf("%w: %d", ErrUnknownPhase, uint8(phase))
	}
	if p.flags[phase] == Open {
		p.flags[phase] = Closed
	} else {
		p.flags[phase] = Open
	}
	return p.flags[phase], nil
}

// Set forces the flag of phase. Used when restoring persisted state.
func (p *Policy) Set(phase Phase, s State) error {
	if !phase.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownPhase, uint8(phase))
	}
	p.flags[phase] = s
	return nil
}

// Clone returns an independent copy.
func (p *Policy) Clone() *Policy {
	c := &Policy{
		whitelist: make(map[actor.Actor]struct{}, len(p.whitelist)),
		flags:     p.flags,
	}
	for a := range p.whitelist {
		c.whitelist[a] = struct{}{}
	}
	return c
}
