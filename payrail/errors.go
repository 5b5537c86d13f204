package payrail

import "errors"

var (
	// ErrInvalidAmount indicates a nil or negative amount.
	ErrInvalidAmount = errors.New("payrail: invalid amount")

	// ErrTransferFailed indicates the rail refused or aborted a transfer.
	ErrTransferFailed = errors.New("payrail: transfer failed")

	// ErrInvalidEther indicates an ether string that cannot be parsed.
	ErrInvalidEther = errors.New("payrail: invalid ether amount")
)
