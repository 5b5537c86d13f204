package engine

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libmint-go/actor"
	"github.com/bitfsorg/libmint-go/payrail"
	"github.com/bitfsorg/libmint-go/store"
)

func TestWithdraw(t *testing.T) {
	ledger := payrail.NewLedger()
	s := newOpenSimple(t, WithRail(ledger))
	_, err := s.Mint(alice, 2, eth("0.6"))
	require.NoError(t, err)
	_, err = s.Mint(bob, 1, eth("0.3"))
	require.NoError(t, err)

	amount, err := s.Withdraw(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, eth("0.9").String(), amount.String())
	assert.Equal(t, eth("0.9").String(), ledger.Balance(admin).String())
	assert.Equal(t, "0", s.Retained().String())

	// Nothing left.
	amount, err = s.Withdraw(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, "0", amount.String())
	assert.Equal(t, eth("0.9").String(), ledger.Balance(admin).String())
}

func TestWithdraw_Unauthorized(t *testing.T) {
	ledger := payrail.NewLedger()
	s := newOpenSimple(t, WithRail(ledger))
	_, err := s.Mint(alice, 1, eth("0.3"))
	require.NoError(t, err)

	_, err = s.Withdraw(context.Background(), alice)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, eth("0.3").String(), s.Retained().String())
	assert.Equal(t, "0", ledger.Balance(alice).String())
}

func TestWithdraw_NoRail(t *testing.T) {
	s := newOpenSimple(t)
	_, err := s.Mint(alice, 1, eth("0.3"))
	require.NoError(t, err)

	_, err = s.Withdraw(context.Background(), admin)
	assert.ErrorIs(t, err, ErrNoRail)
	assert.Equal(t, eth("0.3").String(), s.Retained().String())
}

func TestWithdraw_Reentrant(t *testing.T) {
	ledger := payrail.NewLedger()
	w := newOpenWhitelist(t, WithRail(ledger))
	_, err := w.PublicMint(bob, 3, eth("0.195"))
	require.NoError(t, err)

	var (
		calls int
		inner *big.Int
	)
	ledger.BeforeTransfer = func(ctx context.Context, _ actor.Actor, _ *big.Int) error {
		calls++
		if calls > 1 {
			return nil
		}
		var err error
		inner, err = w.Withdraw(ctx, admin)
		return err
	}

	amount, err := w.Withdraw(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, eth("0.195").String(), amount.String())
	require.NotNil(t, inner)
	assert.Equal(t, "0", inner.String())
	assert.Equal(t, 1, calls)
	assert.Equal(t, eth("0.195").String(), ledger.Balance(admin).String())
	assert.Equal(t, "0", w.Retained().String())
}

func TestWithdraw_TransferFailsRefunds(t *testing.T) {
	ledger := payrail.NewLedger()
	st := store.NewMemStore()
	s := newOpenSimple(t, WithRail(ledger), WithStore(st))
	_, err := s.Mint(alice, 1, eth("0.3"))
	require.NoError(t, err)

	errRejected := errors.New("recipient rejected")
	ledger.BeforeTransfer = func(context.Context, actor.Actor, *big.Int) error {
		return errRejected
	}

	_, err = s.Withdraw(context.Background(), admin)
	require.ErrorIs(t, err, ErrWithdrawFailed)
	assert.ErrorIs(t, err, errRejected)
	assert.Equal(t, eth("0.3").String(), s.Retained().String())
	assert.Equal(t, "0", ledger.Balance(admin).String())

	snap, err := st.Load(VariantSimple)
	require.NoError(t, err)
	assert.Equal(t, eth("0.3").String(), snap.RetainedWei)

	ledger.BeforeTransfer = nil
	amount, err := s.Withdraw(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, eth("0.3").String(), amount.String())
}

func TestWithdraw_CanceledContext(t *testing.T) {
	ledger := payrail.NewLedger()
	s := newOpenSimple(t, WithRail(ledger))
	_, err := s.Mint(alice, 1, eth("0.3"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Withdraw(ctx, admin)
	require.ErrorIs(t, err, ErrWithdrawFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, eth("0.3").String(), s.Retained().String())
}

func TestWithdraw_BoltLedger(t *testing.T) {
	bs, err := store.OpenBoltStore(filepath.Join(t.TempDir(), "mint.db"))
	require.NoError(t, err)
	defer func() { _ = bs.Close() }()

	ledger := bs.Ledger()
	s := newOpenSimple(t, WithRail(ledger), WithStore(bs))
	_, err = s.Mint(alice, 2, eth("0.6"))
	require.NoError(t, err)

	_, err = s.Withdraw(context.Background(), admin)
	require.NoError(t, err)

	bal, err := ledger.Balance(admin)
	require.NoError(t, err)
	assert.Equal(t, eth("0.6").String(), bal.String())
}
