package engine

import "sync"

// mailbox carries closures from other goroutines to the main goroutine.
// It is drained once per Step.
type mailbox struct {
	mu    sync.Mutex
	items []func(*Game)
	spare []func(*Game)
}

func (m *mailbox) post(fn func(*Game)) {
	m.mu.Lock()
	m.items = append(m.items, fn)
	m.mu.Unlock()
}

func (m *mailbox) take() []func(*Game) {
	m.mu.Lock()
	items := m.items
	m.items = m.spare[:0]
	m.mu.Unlock()
	m.spare = items
	return items
}

func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
