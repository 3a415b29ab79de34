package dynamics

import "errors"

// Domain errors for entity sets and integration parameters.
var (
	// ErrInvalidParameters indicates integration parameters that cannot drive a step.
	ErrInvalidParameters = errors.New("dynamics: invalid integration parameters")

	// ErrInvalidBody indicates a joint referencing a body that does not resolve.
	ErrInvalidBody = errors.New("dynamics: body handle does not resolve")
)
