package engine

import "github.com/kamstrup/intmap"

// indexSet is an unordered set of small integer indices. Iteration goes
// through a snapshot so hooks may mutate the set while it is being walked.
type indexSet[K intmap.IntKey] struct {
	m       *intmap.Map[K, struct{}]
	scratch []K
}

func newIndexSet[K intmap.IntKey](capacity int) indexSet[K] {
	return indexSet[K]{m: intmap.New[K, struct{}](capacity)}
}

func (s *indexSet[K]) add(k K) {
	s.m.Put(k, struct{}{})
}

func (s *indexSet[K]) remove(k K) {
	s.m.Del(k)
}

func (s *indexSet[K]) has(k K) bool {
	_, ok := s.m.Get(k)
	return ok
}

func (s *indexSet[K]) len() int {
	return s.m.Len()
}

func (s *indexSet[K]) clear() {
	s.m.Clear()
}

// snapshot copies the current members into a reused buffer.
func (s *indexSet[K]) snapshot() []K {
	s.scratch = s.scratch[:0]
	s.m.ForEach(func(k K, _ struct{}) bool {
		s.scratch = append(s.scratch, k)
		return true
	})
	return s.scratch
}
