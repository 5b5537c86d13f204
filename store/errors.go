package store

import "errors"

var (
	// ErrSnapshotNotFound indicates no snapshot is stored under the engine name.
	ErrSnapshotNotFound = errors.New("store: snapshot not found")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: required parameter is nil")

	// ErrEmptyName indicates a snapshot without an engine name.
	ErrEmptyName = errors.New("store: engine name must not be empty")

	// ErrInvalidAmount indicates a nil or negative transfer amount.
	ErrInvalidAmount = errors.New("store: invalid amount")

	// ErrCorruptBalance indicates a stored balance that is not a decimal integer.
	ErrCorruptBalance = errors.New("store: corrupt balance")
)
