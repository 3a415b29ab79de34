package collision

import "errors"

var (
	// ErrInvalidParent is returned when a collider is attached to a missing body.
	ErrInvalidParent = errors.New("collision: parent body does not resolve")

	// ErrInvalidShape is returned for shapes with non-positive extents.
	ErrInvalidShape = errors.New("collision: invalid shape")
)
