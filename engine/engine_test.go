package engine

import (
	"errors"
	"math/big"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bitfsorg/libmint-go/access"
	"github.com/bitfsorg/libmint-go/actor"
	"github.com/bitfsorg/libmint-go/admission"
	"github.com/bitfsorg/libmint-go/payrail"
	"github.com/bitfsorg/libmint-go/store"
)

const (
	testBaseURI   = "http://assets.example.com/"
	testHiddenURI = "http://assets.example.com/hidden.json"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func makeActor(seed byte) actor.Actor {
	var a actor.Actor
	for i := range a {
		a[i] = seed
	}
	return a
}

var (
	admin = makeActor(0xAD)
	alice = makeActor(0x01)
	bob   = makeActor(0x02)
	carol = makeActor(0x03)
)

func eth(s string) *big.Int { return payrail.MustParseEther(s) }

// failingStore rejects every Save once fail is set.
type failingStore struct {
	store.Store
	mu   sync.Mutex
	fail bool
}

var errDiskFull = errors.New("disk full")

func (s *failingStore) setFail(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = v
}

func (s *failingStore) Save(snap *store.Snapshot) error {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return s.Store.Save(snap)
}

func TestNew_InvalidParams(t *testing.T) {
	_, err := NewSimple(actor.Zero, testBaseURI)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewSimple(admin, "")
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewWhitelist(admin, testBaseURI, "")
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewSimple(admin, testBaseURI, WithName(""))
	assert.ErrorIs(t, err, ErrInvalidParams)

	// A simple engine has no sale limits in whitelist params.
	_, err = NewSimple(admin, testBaseURI, WithParams(DefaultWhitelistParams()))
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewSimple(admin, testBaseURI, WithParams(Params{
		MaxSupply: 0,
		Limits:    DefaultSimpleParams().Limits,
	}))
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestNew_Defaults(t *testing.T) {
	s, err := NewSimple(admin, testBaseURI)
	require.NoError(t, err)
	assert.Equal(t, VariantSimple, s.Name())
	assert.Equal(t, VariantSimple, s.Variant())
	assert.Equal(t, uint64(SimpleMaxSupply), s.MaxSupply())
	assert.Equal(t, admin, s.Administrator())
	assert.Equal(t, testBaseURI, s.BaseURI())
	assert.Equal(t, uint64(0), s.TotalSupply())
	assert.Equal(t, "0", s.Retained().String())
	assert.False(t, s.SaleActive())

	w, err := NewWhitelist(admin, testBaseURI, testHiddenURI)
	require.NoError(t, err)
	assert.Equal(t, VariantWhitelist, w.Name())
	assert.Equal(t, uint64(WhitelistMaxSupply), w.MaxSupply())
	assert.Equal(t, testHiddenURI, w.HiddenURI())
	assert.False(t, w.WlMintActive())
	assert.False(t, w.PubMintActive())
	assert.False(t, w.Revealed())
}

func TestEngine_PersistAndReopen(t *testing.T) {
	bs, err := store.OpenBoltStore(filepath.Join(t.TempDir(), "mint.db"))
	require.NoError(t, err)
	defer func() { _ = bs.Close() }()

	backends := map[string]store.Store{
		"mem":  store.NewMemStore(),
		"bolt": bs,
	}
	for name, st := range backends {
		t.Run(name, func(t *testing.T) {
			w, err := NewWhitelist(admin, testBaseURI, testHiddenURI, WithStore(st), WithName("drop"))
			require.NoError(t, err)

			_, err = w.ToggleWhitelist(admin, alice)
			require.NoError(t, err)
			_, err = w.ToggleWlMintActive(admin)
			require.NoError(t, err)
			_, err = w.WhitelistMint(alice, 1, eth("0.05"))
			require.NoError(t, err)
			_, err = w.AirDropMint(admin, carol, 4)
			require.NoError(t, err)
			_, err = w.ToggleRevealed(admin)
			require.NoError(t, err)

			re, err := OpenWhitelist(st, "drop")
			require.NoError(t, err)
			assert.Equal(t, w.Version(), re.Version())
			assert.Equal(t, admin, re.Administrator())
			assert.Equal(t, testHiddenURI, re.HiddenURI())
			assert.True(t, re.IsWhitelisted(alice))
			assert.True(t, re.WlMintActive())
			assert.False(t, re.PubMintActive())
			assert.True(t, re.Revealed())
			assert.Equal(t, uint64(5), re.TotalSupply())
			assert.Equal(t, uint64(1), re.BalanceOf(alice))
			assert.Equal(t, uint64(4), re.BalanceOf(carol))
			assert.Equal(t, eth("0.05").String(), re.Retained().String())

			owner, err := re.OwnerOf(3)
			require.NoError(t, err)
			assert.Equal(t, carol, owner)

			// Per-wallet counters survive the reopen.
			_, err = re.WhitelistMint(alice, 1, eth("0.05"))
			assert.ErrorIs(t, err, ErrInvalidQuantity)
		})
	}
}

func TestEngine_DeployTwice(t *testing.T) {
	st := store.NewMemStore()
	_, err := NewSimple(admin, testBaseURI, WithStore(st))
	require.NoError(t, err)

	_, err = NewSimple(admin, testBaseURI, WithStore(st))
	assert.ErrorIs(t, err, ErrEngineExists)
}

func TestEngine_OpenErrors(t *testing.T) {
	st := store.NewMemStore()

	_, err := OpenSimple(st, "missing")
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)

	_, err = OpenSimple(nil, "x")
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewWhitelist(admin, testBaseURI, testHiddenURI, WithStore(st), WithName("wl"))
	require.NoError(t, err)
	_, err = OpenSimple(st, "wl")
	assert.ErrorIs(t, err, ErrVariantMismatch)
}

func TestEngine_OpenCorrupt(t *testing.T) {
	st := store.NewMemStore()
	_, err := NewSimple(admin, testBaseURI, WithStore(st))
	require.NoError(t, err)

	snap, err := st.Load(VariantSimple)
	require.NoError(t, err)
	snap.RetainedWei = "-1"
	require.NoError(t, st.Save(snap))

	_, err = OpenSimple(st, VariantSimple)
	assert.ErrorIs(t, err, ErrCorruptState)
}

func TestEngine_FailedPersistLeavesNoTrace(t *testing.T) {
	fs := &failingStore{Store: store.NewMemStore()}
	s, err := NewSimple(admin, testBaseURI, WithStore(fs))
	require.NoError(t, err)
	_, err = s.ToggleSaleState(admin)
	require.NoError(t, err)
	version := s.Version()

	fs.setFail(true)
	_, err = s.Mint(alice, 2, eth("0.6"))
	require.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, errDiskFull)

	assert.Equal(t, uint64(0), s.TotalSupply())
	assert.Equal(t, uint64(0), s.BalanceOf(alice))
	assert.Equal(t, "0", s.Retained().String())
	assert.Equal(t, version, s.Version())

	_, err = s.ToggleSaleState(admin)
	require.ErrorIs(t, err, ErrPersist)
	assert.True(t, s.SaleActive())

	// The rejected mint did not count toward the wallet cap.
	fs.setFail(false)
	_, err = s.Mint(alice, 2, eth("0.6"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.BalanceOf(alice))
}

func TestEngine_ConcurrentSupplyCap(t *testing.T) {
	params := DefaultSimpleParams()
	params.MaxSupply = 10
	s, err := NewSimple(admin, testBaseURI, WithParams(params))
	require.NoError(t, err)
	_, err = s.ToggleSaleState(admin)
	require.NoError(t, err)

	const buyers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		soldOut int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(seed byte) {
			defer wg.Done()
			_, err := s.Mint(makeActor(seed), 2, eth("0.6"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrMaxSupplyExceeded):
				soldOut++
			}
		}(byte(0x10 + i))
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, buyers-5, soldOut)
	assert.Equal(t, uint64(10), s.TotalSupply())
	assert.Equal(t, eth("3").String(), s.Retained().String())
}

func TestEngine_Logging(t *testing.T) {
	obs, logs := observer.New(zap.InfoLevel)
	s, err := NewSimple(admin, testBaseURI, WithLogger(zap.New(obs)), WithName("gen1"))
	require.NoError(t, err)
	_, err = s.ToggleSaleState(admin)
	require.NoError(t, err)
	_, err = s.Mint(alice, 1, eth("0.3"))
	require.NoError(t, err)

	// Rejections log at debug and are filtered out here.
	_, err = s.Mint(alice, 1, eth("0.1"))
	require.Error(t, err)

	assert.Equal(t, 1, logs.FilterMessage("engine deployed").Len())
	assert.Equal(t, 1, logs.FilterMessage("phase toggled").Len())
	assert.Equal(t, 0, logs.FilterMessage("mint rejected").Len())

	minted := logs.FilterMessage("minted").All()
	require.Len(t, minted, 1)
	fields := minted[0].ContextMap()
	assert.Equal(t, "gen1", fields["engine"])
	assert.Equal(t, "0.3", fields["paid_eth"])
	assert.Equal(t, uint64(1), fields["first_token_id"])
}

func TestEngine_Holders(t *testing.T) {
	s, err := NewSimple(admin, testBaseURI)
	require.NoError(t, err)
	_, err = s.AirDropMint(admin, alice, 1)
	require.NoError(t, err)
	_, err = s.AirDropMint(admin, bob, 3)
	require.NoError(t, err)

	holders := s.Holders()
	require.Len(t, holders, 2)
	assert.Equal(t, bob, holders[0].Owner)
	assert.Equal(t, uint64(3), holders[0].Units)
	assert.Equal(t, alice, holders[1].Owner)
}

func TestEngine_CustomParams(t *testing.T) {
	params := Params{
		MaxSupply: 3,
		Limits: map[access.Phase]admission.Limits{
			access.PhaseSale: {UnitPrice: big.NewInt(7), MaxPerCall: 3, MaxPerWallet: 3},
		},
	}
	s, err := NewSimple(admin, testBaseURI, WithParams(params))
	require.NoError(t, err)
	_, err = s.ToggleSaleState(admin)
	require.NoError(t, err)

	// A nil value counts as zero.
	_, err = s.Mint(alice, 1, nil)
	require.ErrorIs(t, err, ErrNotEnoughEth)

	rcpt, err := s.Mint(alice, 3, big.NewInt(21))
	require.NoError(t, err)
	assert.Equal(t, "21", rcpt.Paid.String())
	assert.Equal(t, uint64(3), s.TotalSupply())

	price, err := s.MintPrice(2)
	require.NoError(t, err)
	assert.Equal(t, "14", price.String())

	_, err = s.Price(access.PhasePublic, 1)
	assert.ErrorIs(t, err, admission.ErrPhaseNotConfigured)
}
