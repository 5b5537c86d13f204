package access

import "errors"

// ErrUnknownPhase indicates a phase value or name outside the known set.
var ErrUnknownPhase = errors.New("access: unknown phase")
