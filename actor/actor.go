// Package actor defines the identity that calls into an issuance engine.
//
// An Actor is the 20-byte HASH160 of a compressed public key, the same value
// carried by a P2PKH address. It is comparable and usable as a map key.
package actor

import (
	"encoding/hex"
	"fmt"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	bsvhash "github.com/bsv-blockchain/go-sdk/primitives/hash"
	"github.com/bsv-blockchain/go-sdk/script"
)

// Size is the byte length of an Actor.
const Size = 20

// Actor is an opaque caller identity.
type Actor [Size]byte

// Zero is the unset identity. It is never a valid mint recipient.
var Zero Actor

// FromPubKeyHash builds an Actor from a 20-byte public key hash.
func FromPubKeyHash(pkh []byte) (Actor, error) {
	var a Actor
	if len(pkh) != Size {
		return a, fmt.Errorf("%w: got %d bytes", ErrInvalidHash, len(pkh))
	}
	copy(a[:], pkh)
	return a, nil
}

// FromPublicKey derives the Actor of a public key: HASH160(compressed pubkey).
func FromPublicKey(pub *ec.PublicKey) (Actor, error) {
	if pub == nil {
		return Zero, ErrNilPublicKey
	}
	return FromPubKeyHash(bsvhash.Hash160(pub.Compressed()))
}

// ParseAddress decodes a Base58Check P2PKH address (mainnet or testnet).
func ParseAddress(s string) (Actor, error) {
	addr, err := script.NewAddressFromString(strings.TrimSpace(s))
	if err != nil {
		return Zero, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return FromPubKeyHash([]byte(addr.PublicKeyHash))
}

// ParseHex decodes a 40-character hex public key hash.
func ParseHex(s string) (Actor, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return Zero, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return FromPubKeyHash(b)
}

// Parse accepts either a hex public key hash or a Base58Check address.
func Parse(s string) (Actor, error) {
	s = strings.TrimSpace(s)
	if len(s) == Size*2 {
		if a, err := ParseHex(s); err == nil {
			return a, nil
		}
	}
	return ParseAddress(s)
}

// Address encodes the Actor as a P2PKH address for the given network.
func (a Actor) Address(mainnet bool) (string, error) {
	addr, err := script.NewAddressFromPublicKeyHash(a[:], mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	return addr.AddressString, nil
}

// IsZero reports whether a is the unset identity.
func (a Actor) IsZero() bool { return a == Zero }

// String returns the hex encoding of the public key hash.
func (a Actor) String() string { return hex.EncodeToString(a[:]) }
