package generator

import "errors"

// Sentinel errors for the generation flow. Handlers map these to HTTP
// statuses with errors.Is; everything wrapped around ErrUpstream or
// ErrBadChain stays server-side and is never echoed to callers.
var (
	ErrLengthOutOfBounds = errors.New("chain length out of bounds")
	ErrUpstream          = errors.New("chain generator call failed")
	ErrUnparsableChain   = errors.New("no word chain found in generator output")
	ErrBadChain          = errors.New("generator returned a malformed chain")
)
