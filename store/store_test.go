package store

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libmint-go/actor"
)

func makeActor(seed byte) actor.Actor {
	var a actor.Actor
	for i := range a {
		a[i] = seed
	}
	return a
}

func sampleSnapshot(name string) *Snapshot {
	return &Snapshot{
		Name:          name,
		Variant:       "whitelist",
		Version:       4,
		Administrator: makeActor(0xAD),
		BaseURI:       "http://assets.example.com/",
		HiddenURI:     "http://assets.example.com/hidden.json",
		Flags:         []uint8{0, 1, 1},
		Whitelist:     []actor.Actor{makeActor(0x01)},
		Batches: []BatchRecord{
			{Start: 1, Quantity: 1, Owner: makeActor(0x03)},
			{Start: 2, Quantity: 1, Owner: makeActor(0x01)},
		},
		Minted:      []MintRecord{{Phase: 1, Owner: makeActor(0x01), Count: 1}},
		RetainedWei: "50000000000000000",
	}
}

// stores runs fn against every Store implementation.
func stores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("mem", func(t *testing.T) { fn(t, NewMemStore()) })
	t.Run("bolt", func(t *testing.T) {
		bs, err := OpenBoltStore(filepath.Join(t.TempDir(), "db", "mint.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = bs.Close() })
		fn(t, bs)
	})
}

func TestStore_SaveLoad(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		want := sampleSnapshot("wl")
		require.NoError(t, s.Save(want))

		got, err := s.Load("wl")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestStore_SaveReplaces(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		first := sampleSnapshot("wl")
		require.NoError(t, s.Save(first))

		second := sampleSnapshot("wl")
		second.Version = 5
		second.RetainedWei = "0"
		require.NoError(t, s.Save(second))

		got, err := s.Load("wl")
		require.NoError(t, err)
		assert.Equal(t, uint64(5), got.Version)
		assert.Equal(t, "0", got.RetainedWei)
	})
}

func TestStore_LoadMissing(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		_, err := s.Load("nope")
		assert.ErrorIs(t, err, ErrSnapshotNotFound)
	})
}

func TestStore_SaveInvalid(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		assert.ErrorIs(t, s.Save(nil), ErrNilParam)
		assert.ErrorIs(t, s.Save(&Snapshot{}), ErrEmptyName)
	})
}

func TestMemStore_LoadIsCopy(t *testing.T) {
	s := NewMemStore()
	snap := sampleSnapshot("simple")
	require.NoError(t, s.Save(snap))
	snap.Batches[0].Quantity = 99

	got, err := s.Load("simple")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Batches[0].Quantity)
	assert.Equal(t, 1, s.Saves())
	assert.Equal(t, []string{"simple"}, s.Names())
}

func TestBoltStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mint.db")

	bs, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, bs.Save(sampleSnapshot("a")))
	require.NoError(t, bs.Save(sampleSnapshot("b")))
	require.NoError(t, bs.Ledger().Transfer(context.Background(), makeActor(0xAD), big.NewInt(42)))
	require.NoError(t, bs.Close())

	bs, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer bs.Close()

	names, err := bs.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	bal, err := bs.Ledger().Balance(makeActor(0xAD))
	require.NoError(t, err)
	assert.Equal(t, "42", bal.String())
}

func TestBoltLedger(t *testing.T) {
	bs, err := OpenBoltStore(filepath.Join(t.TempDir(), "mint.db"))
	require.NoError(t, err)
	defer bs.Close()

	l := bs.Ledger()
	a := makeActor(0x01)
	ctx := context.Background()

	bal, err := l.Balance(a)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal.Int64())

	require.NoError(t, l.Transfer(ctx, a, big.NewInt(10)))
	require.NoError(t, l.Transfer(ctx, a, big.NewInt(5)))
	bal, err = l.Balance(a)
	require.NoError(t, err)
	assert.Equal(t, int64(15), bal.Int64())

	assert.ErrorIs(t, l.Transfer(ctx, a, nil), ErrInvalidAmount)
	assert.ErrorIs(t, l.Transfer(ctx, a, big.NewInt(-1)), ErrInvalidAmount)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, l.Transfer(cctx, a, big.NewInt(1)), context.Canceled)
}
