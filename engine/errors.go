package engine

import (
	"errors"

	"github.com/bitfsorg/libmint-go/admission"
)

var (
	// ErrUnauthorized indicates a non-administrator called an administrator-only operation.
	ErrUnauthorized = errors.New("engine: unauthorized")

	// ErrInvalidParams indicates missing or inconsistent construction parameters.
	ErrInvalidParams = errors.New("engine: invalid parameters")

	// ErrPersist indicates the state snapshot could not be written; the call had no effect.
	ErrPersist = errors.New("engine: persist state")

	// ErrEngineExists indicates a snapshot already exists under the engine name.
	ErrEngineExists = errors.New("engine: engine already deployed")

	// ErrVariantMismatch indicates a snapshot of one variant opened as another.
	ErrVariantMismatch = errors.New("engine: variant mismatch")

	// ErrCorruptState indicates a snapshot that cannot be turned back into engine state.
	ErrCorruptState = errors.New("engine: corrupt state")

	// ErrNoRail indicates a withdrawal on an engine built without a payment rail.
	ErrNoRail = errors.New("engine: no payment rail configured")

	// ErrWithdrawFailed indicates the payment rail rejected the withdrawal transfer.
	// The retained balance is restored.
	ErrWithdrawFailed = errors.New("engine: withdraw failed")
)

// Admission errors, re-exported so callers can match every rejection
// against this package alone.
var (
	ErrSaleNotActive     = admission.ErrSaleNotActive
	ErrNotWhitelisted    = admission.ErrNotWhitelisted
	ErrInvalidQuantity   = admission.ErrInvalidQuantity
	ErrNotEnoughEth      = admission.ErrNotEnoughEth
	ErrOverpayment       = admission.ErrOverpayment
	ErrMaxSupplyExceeded = admission.ErrMaxSupplyExceeded
	ErrInvalidRecipient  = admission.ErrInvalidRecipient
)
