package registry

import "errors"

var (
	// ErrZeroQuantity indicates a credit of zero units.
	ErrZeroQuantity = errors.New("registry: zero quantity")

	// ErrZeroActor indicates a credit to the unset identity.
	ErrZeroActor = errors.New("registry: zero actor")

	// ErrOverflow indicates a counter would wrap.
	ErrOverflow = errors.New("registry: counter overflow")

	// ErrTokenNotFound indicates the token ID has not been issued.
	ErrTokenNotFound = errors.New("registry: token not found")

	// ErrInvalidBatches indicates restored batches are not contiguous from token 1.
	ErrInvalidBatches = errors.New("registry: invalid batch sequence")
)
