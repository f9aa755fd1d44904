// Package highlight tracks the objects currently shown with a path overlay.
package highlight

import (
	"sync"
)

// Set is an insertion-ordered, idempotent set of object ids.
type Set interface {
	// Add records id. It returns false if id was already present.
	Add(id string) bool

	// Remove drops id. It returns false if id was not present.
	Remove(id string) bool

	// Contains reports whether id is present.
	Contains(id string) bool

	// Clear empties the set and returns the removed ids in insertion order.
	Clear() []string

	// IDs returns the members in insertion order.
	IDs() []string

	Len() int
}

// node is one entry of the insertion-order list.
type node struct {
	id         string
	prev, next *node
}

// orderedSet keeps a map for lookups and a doubly linked list for order.
type orderedSet struct {
	mu         sync.RWMutex
	index      map[string]*node
	head, tail *node
	capacity   int
}

// New creates an empty Set.
func New(opts ...Option) Set {
	s := &orderedSet{}
	for _, opt := range opts {
		opt(s)
	}
	s.index = make(map[string]*node, s.capacity)
	return s
}

func (s *orderedSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok {
		return false
	}
	n := &node{id: id, prev: s.tail}
	if s.tail != nil {
		s.tail.next = n
	} else {
		s.head = n
	}
	s.tail = n
	s.index[id] = n
	return true
}

func (s *orderedSet) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.index[id]
	if !ok {
		return false
	}
	delete(s.index, id)
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	return true
}

func (s *orderedSet) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

func (s *orderedSet) Clear() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.idsLocked()
	s.index = make(map[string]*node, s.capacity)
	s.head, s.tail = nil, nil
	return ids
}

func (s *orderedSet) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idsLocked()
}

func (s *orderedSet) idsLocked() []string {
	ids := make([]string, 0, len(s.index))
	for n := s.head; n != nil; n = n.next {
		ids = append(ids, n.id)
	}
	return ids
}

func (s *orderedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}
