package actor

import "errors"

var (
	// ErrInvalidHash indicates a public key hash is not 20 bytes.
	ErrInvalidHash = errors.New("actor: public key hash must be 20 bytes")

	// ErrInvalidAddress indicates the address string cannot be decoded.
	ErrInvalidAddress = errors.New("actor: invalid address")

	// ErrNilPublicKey indicates a nil public key was supplied.
	ErrNilPublicKey = errors.New("actor: nil public key")
)
