package admission

import "errors"

var (
	// ErrSaleNotActive indicates the phase of the mint call is closed.
	ErrSaleNotActive = errors.New("admission: sale not active")

	// ErrNotWhitelisted indicates a whitelist mint by a non-member, or while the whitelist phase is closed.
	ErrNotWhitelisted = errors.New("admission: not whitelisted")

	// ErrInvalidQuantity indicates a zero quantity, one above the per-call cap,
	// or one that pushes the caller past the per-wallet cap.
	ErrInvalidQuantity = errors.New("admission: invalid mint quantity")

	// ErrNotEnoughEth indicates the attached value does not equal quantity × unit price.
	ErrNotEnoughEth = errors.New("admission: not enough eth")

	// ErrOverpayment indicates the attached value exceeds quantity × unit price.
	// It is always reported together with ErrNotEnoughEth.
	ErrOverpayment = errors.New("admission: overpayment")

	// ErrMaxSupplyExceeded indicates the mint would push total issued past max supply.
	ErrMaxSupplyExceeded = errors.New("admission: max supply exceeded")

	// ErrInvalidRecipient indicates an airdrop to the zero actor.
	ErrInvalidRecipient = errors.New("admission: invalid recipient")

	// ErrPhaseNotConfigured indicates a mint request for a phase without limits.
	ErrPhaseNotConfigured = errors.New("admission: phase not configured")

	// ErrInvalidLimits indicates a controller built with a zero cap or non-positive price.
	ErrInvalidLimits = errors.New("admission: invalid limits")

	// ErrAuthorizationUsed indicates an authorization was consumed twice.
	ErrAuthorizationUsed = errors.New("admission: authorization already used")
)
