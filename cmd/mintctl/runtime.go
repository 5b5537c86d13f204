package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bitfsorg/libmint-go/actor"
	"github.com/bitfsorg/libmint-go/engine"
	"github.com/bitfsorg/libmint-go/store"
	"github.com/bitfsorg/libmint-go/wallet"
)

// dbFileName is the engine database inside the data directory.
const dbFileName = "mint.db"

var (
	errNoPassword   = errors.New("wallet password required (set MINT_PASSWORD or --password)")
	errWrongVariant = errors.New("command not supported by this engine variant")
)

func (a *app) openStore() (*store.BoltStore, error) {
	return store.OpenBoltStore(filepath.Join(a.dataDir, dbFileName))
}

func (a *app) openWallet() (*wallet.Wallet, error) {
	if a.password == "" {
		return nil, errNoPassword
	}
	seed, err := wallet.LoadSeed(wallet.WalletPath(a.dataDir), a.password)
	if err != nil {
		return nil, err
	}
	network, err := wallet.GetNetwork(a.cfg.Network)
	if err != nil {
		return nil, err
	}
	return wallet.NewWallet(seed, network)
}

// signer returns the actor of the --account index.
func (a *app) signer() (actor.Actor, error) {
	w, err := a.openWallet()
	if err != nil {
		return actor.Zero, err
	}
	return w.ActorOf(a.account)
}

func (a *app) engineOptions(st *store.BoltStore) []engine.Option {
	return []engine.Option{
		engine.WithRail(st.Ledger()),
		engine.WithLogger(a.logger),
	}
}

// openEngine restores the engine of the configured variant.
func (a *app) openEngine(st *store.BoltStore) (engine.Engine, error) {
	switch a.cfg.Variant {
	case engine.VariantSimple:
		return engine.OpenSimple(st, a.cfg.Variant, a.engineOptions(st)...)
	case engine.VariantWhitelist:
		return engine.OpenWhitelist(st, a.cfg.Variant, a.engineOptions(st)...)
	default:
		return nil, fmt.Errorf("unknown variant %q", a.cfg.Variant)
	}
}

// deployEngine creates the engine of the configured variant.
func (a *app) deployEngine(st *store.BoltStore, admin actor.Actor) (engine.Engine, error) {
	opts := append(a.engineOptions(st), engine.WithStore(st), engine.WithName(a.cfg.Variant))
	switch a.cfg.Variant {
	case engine.VariantSimple:
		return engine.NewSimple(admin, a.cfg.BaseURI, opts...)
	case engine.VariantWhitelist:
		return engine.NewWhitelist(admin, a.cfg.BaseURI, a.cfg.HiddenURI, opts...)
	default:
		return nil, fmt.Errorf("unknown variant %q", a.cfg.Variant)
	}
}

// withEngine opens the store and engine, runs fn, and closes the store.
func (a *app) withEngine(fn func(st *store.BoltStore, e engine.Engine) error) (err error) {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); err == nil {
			err = cerr
		}
	}()

	e, err := a.openEngine(st)
	if err != nil {
		return err
	}
	return fn(st, e)
}

func (a *app) address(x actor.Actor) string {
	network, err := wallet.GetNetwork(a.cfg.Network)
	if err != nil {
		return x.String()
	}
	addr, err := x.Address(network.IsMainnet())
	if err != nil {
		return x.String()
	}
	return addr
}
