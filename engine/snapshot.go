package engine

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/bitfsorg/libmint-go/access"
	"github.com/bitfsorg/libmint-go/actor"
	"github.com/bitfsorg/libmint-go/registry"
	"github.com/bitfsorg/libmint-go/store"
)

// snapshot renders s as a store.Snapshot. Output is deterministic.
func (c *core) snapshot(s *state) *store.Snapshot {
	flags := make([]uint8, len(access.Phases))
	for _, phase := range access.Phases {
		flags[phase] = uint8(s.policy.State(phase))
	}

	batches := s.registry.Batches()
	records := make([]store.BatchRecord, len(batches))
	for i, b := range batches {
		records[i] = store.BatchRecord{Start: b.Start, Quantity: b.Quantity, Owner: b.Owner}
	}

	var minted []store.MintRecord
	for phase, counters := range s.registry.MintCounters() {
		for a, n := range counters {
			minted = append(minted, store.MintRecord{Phase: uint8(phase), Owner: a, Count: n})
		}
	}
	sort.Slice(minted, func(i, j int) bool {
		if minted[i].Phase != minted[j].Phase {
			return minted[i].Phase < minted[j].Phase
		}
		return string(minted[i].Owner[:]) < string(minted[j].Owner[:])
	})

	return &store.Snapshot{
		Name:          c.name,
		Variant:       c.variant,
		Version:       s.version,
		Administrator: c.admin,
		BaseURI:       c.baseURI,
		HiddenURI:     c.hiddenURI,
		Revealed:      s.revealed,
		Flags:         flags,
		Whitelist:     s.policy.Whitelist(),
		Batches:       records,
		Minted:        minted,
		RetainedWei:   s.retained.String(),
	}
}

// restoreState rebuilds engine state from a snapshot.
func restoreState(snap *store.Snapshot) (*state, error) {
	if snap.Administrator.IsZero() {
		return nil, fmt.Errorf("%w: no administrator", ErrCorruptState)
	}

	policy := access.NewPolicy()
	for i, f := range snap.Flags {
		if err := policy.Set(access.Phase(i), access.State(f)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptState, err)
		}
	}
	for _, a := range snap.Whitelist {
		if !policy.IsWhitelisted(a) {
			policy.ToggleWhitelist(a)
		}
	}

	batches := make([]registry.Batch, len(snap.Batches))
	for i, b := range snap.Batches {
		batches[i] = registry.Batch{Start: b.Start, Quantity: b.Quantity, Owner: b.Owner}
	}
	minted := make(map[access.Phase]map[actor.Actor]uint64)
	for _, m := range snap.Minted {
		phase := access.Phase(m.Phase)
		if !phase.Valid() {
			return nil, fmt.Errorf("%w: %w: %d", ErrCorruptState, access.ErrUnknownPhase, m.Phase)
		}
		if minted[phase] == nil {
			minted[phase] = make(map[actor.Actor]uint64)
		}
		minted[phase][m.Owner] = m.Count
	}
	reg, err := registry.Restore(batches, minted)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}

	retained, ok := new(big.Int).SetString(snap.RetainedWei, 10)
	if !ok || retained.Sign() < 0 {
		return nil, fmt.Errorf("%w: retained balance %q", ErrCorruptState, snap.RetainedWei)
	}

	return &state{
		policy:   policy,
		registry: reg,
		retained: retained,
		revealed: snap.Revealed,
		version:  snap.Version,
	}, nil
}
