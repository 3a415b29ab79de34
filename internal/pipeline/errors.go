package pipeline

import "errors"

// ErrPipelineLocked is returned when a step or removal is requested while
// another one is still running, typically from an event handler or observer.
var ErrPipelineLocked = errors.New("pipeline: step or removal already in progress")
