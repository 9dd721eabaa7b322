package types

import "errors"

// Error kinds of the environment contract. All failures are surfaced
// synchronously to the caller; nothing in this module retries.
var (
	// ErrNotImplemented reports a base contract method invoked without being
	// overridden. Implementer bug.
	ErrNotImplemented = errors.New("not implemented")
	// ErrInvalidGroupSpec reports overlapping group membership. Raised at
	// wrap construction, never at step time.
	ErrInvalidGroupSpec = errors.New("invalid group spec")
	// ErrInvalidSpaceType reports an explicit composite space that is not
	// tuple shaped.
	ErrInvalidSpaceType = errors.New("invalid space type")
	// ErrKeyMismatch reports an action supplied for an agent not eligible to
	// act this round. No partial result is returned.
	ErrKeyMismatch = errors.New("agent key mismatch")
	// ErrMissingAggregateKey reports a step result whose done dict omits the
	// required DoneAll entry.
	ErrMissingAggregateKey = errors.New("missing aggregate termination key")
)
