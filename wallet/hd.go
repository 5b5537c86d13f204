package wallet

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"

	"github.com/bitfsorg/libmint-go/actor"
)

const (
	// BIP44 path constants.
	PurposeBIP44 = 44
	CoinType     = 236
	Account      = 0
	Chain        = 0 // external

	// AdminAccount is the account index that deploys and administers engines.
	AdminAccount = 0

	// MaxAccount is the BIP32 non-hardened maximum.
	MaxAccount = 1<<31 - 1

	// Hardened is the BIP32 hardened offset.
	Hardened = 0x80000000
)

// Wallet is an HD wallet whose accounts are engine callers.
type Wallet struct {
	chain   *bip32.ExtendedKey // m/44'/236'/0'/0
	network *NetworkConfig
}

// KeyPair holds a derived public/private key pair.
type KeyPair struct {
	PrivateKey *ec.PrivateKey
	PublicKey  *ec.PublicKey
	Path       string
}

// NewWallet creates a Wallet from a BIP39 seed. A nil network means mainnet.
func NewWallet(seed []byte, network *NetworkConfig) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	if network == nil {
		network = &MainNet
	}

	params := &chaincfg.TestNet
	if network.IsMainnet() {
		params = &chaincfg.MainNet
	}
	master, err := bip32.NewMaster(seed, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}

	key := master
	for _, step := range []struct {
		name  string
		index uint32
	}{
		{"purpose", PurposeBIP44 + Hardened},
		{"coin type", CoinType + Hardened},
		{"account", Account + Hardened},
		{"chain", Chain},
	} {
		key, err = key.Child(step.index)
		if err != nil {
			return nil, fmt.Errorf("%w: %s derivation: %w", ErrDerivationFailed, step.name, err)
		}
	}

	return &Wallet{chain: key, network: network}, nil
}

// Network returns the wallet's network configuration.
func (w *Wallet) Network() *NetworkConfig {
	return w.network
}

// DeriveAccount derives the key pair of account index.
//
//	Path: m/44'/236'/0'/0/index
func (w *Wallet) DeriveAccount(index uint32) (*KeyPair, error) {
	if index > MaxAccount {
		return nil, fmt.Errorf("%w: %d", ErrAccountOutOfRange, index)
	}
	child, err := w.chain.Child(index)
	if err != nil {
		return nil, fmt.Errorf("%w: index derivation: %w", ErrDerivationFailed, err)
	}
	priv, err := child.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: extract EC private key: %w", ErrDerivationFailed, err)
	}
	return &KeyPair{
		PrivateKey: priv,
		PublicKey:  priv.PubKey(),
		Path:       fmt.Sprintf("m/%d'/%d'/%d'/%d/%d", PurposeBIP44, CoinType, Account, Chain, index),
	}, nil
}

// Admin derives the administrator account.
func (w *Wallet) Admin() (*KeyPair, error) {
	return w.DeriveAccount(AdminAccount)
}

// ActorOf returns the engine identity of account index.
func (w *Wallet) ActorOf(index uint32) (actor.Actor, error) {
	kp, err := w.DeriveAccount(index)
	if err != nil {
		return actor.Zero, err
	}
	return kp.Actor()
}

// Actor returns the engine identity of the key pair.
func (kp *KeyPair) Actor() (actor.Actor, error) {
	return actor.FromPublicKey(kp.PublicKey)
}

// Address returns the P2PKH address of the key pair on network.
func (kp *KeyPair) Address(network *NetworkConfig) (string, error) {
	a, err := kp.Actor()
	if err != nil {
		return "", err
	}
	return a.Address(network.IsMainnet())
}
