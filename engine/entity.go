package engine

import "fmt"

// Entity is a handle into a slot store: the slot index plus the generation the
// slot carried when the handle was issued. A slot's generation is bumped every
// time it is released, so handles to a reused slot stop matching.
type Entity struct {
	Index      uint32
	Generation uint32
}

// NewEntity creates an Entity from a slot index and generation.
func NewEntity(index uint32, generation uint32) Entity {
	return Entity{Index: index, Generation: generation}
}

// EntityFromPacked decodes an Entity produced by Packed.
func EntityFromPacked(v uint64) Entity {
	return Entity{Index: uint32(v), Generation: uint32(v >> 32)}
}

// Equals reports whether both the index and the generation match.
func (e Entity) Equals(other Entity) bool {
	return e.Index == other.Index && e.Generation == other.Generation
}

// Packed encodes the generation in the upper 32 bits and the index in the lower 32 bits.
func (e Entity) Packed() uint64 {
	return uint64(e.Generation)<<32 | uint64(e.Index)
}

// IsZero reports whether e is the zero handle. Arenas never issue it.
func (e Entity) IsZero() bool {
	return e.Generation == 0
}

func (e Entity) String() string {
	return fmt.Sprintf("%d:%d", e.Index, e.Generation)
}
