// Package handle provides generational indices for entity storage.
//
// A [Handle] names a slot in an [Arena] together with the generation the slot
// had when the handle was issued. Freeing a slot bumps its generation, so every
// outstanding copy of the old handle becomes stale and resolves to nothing
// instead of silently pointing at whatever is stored there next.
package handle

import (
	"fmt"
	"math"
)

// Handle encodes a 32-bit slot index and a 32-bit generation.
type Handle struct {
	Index      uint32
	Generation uint32
}

// Invalid never resolves in any arena.
var Invalid = Handle{Index: math.MaxUint32, Generation: math.MaxUint32}

func New(index, generation uint32) Handle {
	return Handle{Index: index, Generation: generation}
}

// FromRaw unpacks a key produced by Raw.
func FromRaw(raw uint64) Handle {
	return Handle{Index: uint32(raw), Generation: uint32(raw >> 32)}
}

// Raw packs the handle with the generation in the upper bits. Hosts that can
// only carry a number use this as the entity key.
func (h Handle) Raw() uint64 {
	return uint64(h.Generation)<<32 | uint64(h.Index)
}

func (h Handle) IsInvalid() bool { return h == Invalid }

// Less orders handles by index, then generation.
func (h Handle) Less(other Handle) bool {
	if h.Index != other.Index {
		return h.Index < other.Index
	}
	return h.Generation < other.Generation
}

func (h Handle) String() string {
	if h.IsInvalid() {
		return "handle(invalid)"
	}
	return fmt.Sprintf("handle(%d:%d)", h.Index, h.Generation)
}
