package engine

import "iter"

type arenaSlot[T any] struct {
	value      T
	generation uint32
	live       bool
}

// Arena is a slot store with generation counters and a free list.
// Released slots are reused; their generation is bumped on release so that
// handles issued before the release no longer resolve.
type Arena[T any] struct {
	slots []arenaSlot[T]
	free  []uint32
	live  int
}

// NewArena creates an arena with room for capacity slots before growing.
func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		slots: make([]arenaSlot[T], 0, capacity),
		free:  make([]uint32, 0, capacity/4),
	}
}

// Insert stores v in a free slot (or a new one) and returns its handle.
func (a *Arena[T]) Insert(v T) Entity {
	a.live++

	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]

		s := &a.slots[idx]
		s.value = v
		s.live = true
		return Entity{Index: idx, Generation: s.generation}
	}

	idx := uint32(len(a.slots))
	a.slots = append(a.slots, arenaSlot[T]{value: v, generation: 1, live: true})
	return Entity{Index: idx, Generation: 1}
}

// Get returns the value stored for e. The second result is false when the
// slot was released or reused since e was issued.
func (a *Arena[T]) Get(e Entity) (T, bool) {
	var zero T
	if int(e.Index) >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[e.Index]
	if !s.live || s.generation != e.Generation {
		return zero, false
	}
	return s.value, true
}

// Alive reports whether e still refers to a live slot.
func (a *Arena[T]) Alive(e Entity) bool {
	_, ok := a.Get(e)
	return ok
}

// Remove releases the slot referenced by e and returns the value it held.
// Stale handles are ignored.
func (a *Arena[T]) Remove(e Entity) (T, bool) {
	var zero T
	if !a.Alive(e) {
		return zero, false
	}

	s := &a.slots[e.Index]
	v := s.value
	s.value = zero
	s.live = false
	s.generation++
	if s.generation == 0 {
		// zero is reserved for the zero Entity
		s.generation = 1
	}

	a.free = append(a.free, e.Index)
	a.live--
	return v, true
}

// Generation returns the current generation of the slot at index.
func (a *Arena[T]) Generation(index uint32) (uint32, bool) {
	if int(index) >= len(a.slots) {
		return 0, false
	}
	return a.slots[index].generation, true
}

// Len returns the number of live slots.
func (a *Arena[T]) Len() int {
	return a.live
}

// All iterates live slots in index order.
func (a *Arena[T]) All() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		for i := range a.slots {
			s := &a.slots[i]
			if !s.live {
				continue
			}
			if !yield(Entity{Index: uint32(i), Generation: s.generation}, s.value) {
				return
			}
		}
	}
}
