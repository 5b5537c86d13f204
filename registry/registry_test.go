package registry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libmint-go/access"
	"github.com/bitfsorg/libmint-go/actor"
)

func makeActor(seed byte) actor.Actor {
	var a actor.Actor
	for i := range a {
		a[i] = seed
	}
	return a
}

func TestCredit(t *testing.T) {
	r := New()
	a, b := makeActor(0xAA), makeActor(0xBB)

	start, err := r.Credit(a, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), start)

	start, err = r.Credit(b, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), start)

	start, err = r.Credit(a, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), start)

	assert.Equal(t, uint64(3), r.BalanceOf(a))
	assert.Equal(t, uint64(3), r.BalanceOf(b))
	assert.Equal(t, uint64(0), r.BalanceOf(makeActor(0xCC)))
	assert.Equal(t, uint64(6), r.TotalIssued())
}

func TestCredit_Rejects(t *testing.T) {
	r := New()

	_, err := r.Credit(makeActor(0x01), 0)
	assert.ErrorIs(t, err, ErrZeroQuantity)

	_, err = r.Credit(actor.Zero, 1)
	assert.ErrorIs(t, err, ErrZeroActor)

	_, err = r.Credit(makeActor(0x01), math.MaxUint64)
	assert.ErrorIs(t, err, ErrOverflow)

	assert.Equal(t, uint64(0), r.TotalIssued())
	assert.Empty(t, r.Batches())
}

func TestHoldingsSumToTotal(t *testing.T) {
	r := New()
	for i := 1; i <= 20; i++ {
		_, err := r.Credit(makeActor(byte(i%4+1)), uint64(i))
		require.NoError(t, err)
	}

	var sum uint64
	for _, h := range r.Holders() {
		sum += h.Units
	}
	assert.Equal(t, r.TotalIssued(), sum)
}

func TestCreditPhase_SeparateCounters(t *testing.T) {
	r := New()
	a := makeActor(0x01)

	_, err := r.CreditPhase(a, 1, access.PhaseWhitelist)
	require.NoError(t, err)
	_, err = r.CreditPhase(a, 2, access.PhasePublic)
	require.NoError(t, err)
	_, err = r.Credit(a, 5)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), r.Minted(a, access.PhaseWhitelist))
	assert.Equal(t, uint64(2), r.Minted(a, access.PhasePublic))
	assert.Equal(t, uint64(0), r.Minted(a, access.PhaseSale))
	assert.Equal(t, uint64(8), r.BalanceOf(a))
}

func TestOwnerOf(t *testing.T) {
	r := New()
	a, b := makeActor(0xAA), makeActor(0xBB)
	_, _ = r.Credit(a, 2) // 1-2
	_, _ = r.Credit(b, 3) // 3-5
	_, _ = r.Credit(a, 1) // 6

	tests := []struct {
		id   uint64
		want actor.Actor
	}{
		{1, a}, {2, a}, {3, b}, {4, b}, {5, b}, {6, a},
	}
	for _, tt := range tests {
		got, err := r.OwnerOf(tt.id)
		require.NoError(t, err, "token %d", tt.id)
		assert.Equal(t, tt.want, got, "token %d", tt.id)
	}

	for _, id := range []uint64{0, 7, math.MaxUint64} {
		_, err := r.OwnerOf(id)
		assert.ErrorIs(t, err, ErrTokenNotFound, "token %d", id)
	}
}

func TestHolders_Order(t *testing.T) {
	r := New()
	_, _ = r.Credit(makeActor(0x02), 1)
	_, _ = r.Credit(makeActor(0x01), 1)
	_, _ = r.Credit(makeActor(0x03), 4)

	assert.Equal(t, []Holding{
		{Owner: makeActor(0x03), Units: 4},
		{Owner: makeActor(0x01), Units: 1},
		{Owner: makeActor(0x02), Units: 1},
	}, r.Holders())
}

func TestClone_Independent(t *testing.T) {
	r := New()
	a := makeActor(0x01)
	_, _ = r.CreditPhase(a, 1, access.PhasePublic)

	c := r.Clone()
	_, err := c.CreditPhase(a, 2, access.PhasePublic)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), r.BalanceOf(a))
	assert.Equal(t, uint64(1), r.Minted(a, access.PhasePublic))
	assert.Equal(t, uint64(1), r.TotalIssued())
	assert.Len(t, r.Batches(), 1)

	assert.Equal(t, uint64(3), c.BalanceOf(a))
	assert.Equal(t, uint64(3), c.Minted(a, access.PhasePublic))
}

func TestRestore(t *testing.T) {
	r := New()
	a, b := makeActor(0xAA), makeActor(0xBB)
	_, _ = r.CreditPhase(a, 1, access.PhaseWhitelist)
	_, _ = r.CreditPhase(b, 3, access.PhasePublic)
	_, _ = r.Credit(b, 2)

	restored, err := Restore(r.Batches(), r.MintCounters())
	require.NoError(t, err)

	assert.Equal(t, r.TotalIssued(), restored.TotalIssued())
	assert.Equal(t, r.Holders(), restored.Holders())
	assert.Equal(t, uint64(1), restored.Minted(a, access.PhaseWhitelist))
	assert.Equal(t, uint64(3), restored.Minted(b, access.PhasePublic))
	owner, err := restored.OwnerOf(6)
	require.NoError(t, err)
	assert.Equal(t, b, owner)
}

func TestRestore_Gap(t *testing.T) {
	_, err := Restore([]Batch{
		{Start: 1, Quantity: 2, Owner: makeActor(0x01)},
		{Start: 4, Quantity: 1, Owner: makeActor(0x02)},
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidBatches)

	_, err = Restore([]Batch{{Start: 1, Quantity: 1, Owner: actor.Zero}}, nil)
	assert.ErrorIs(t, err, ErrInvalidBatches)
	assert.ErrorIs(t, err, ErrZeroActor)
}
