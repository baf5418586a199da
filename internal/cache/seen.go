// Package cache remembers recently processed keys so that redelivered
// messages can be recognised and skipped.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Seen is a bounded set of keys with per-key expiry. The least recently
// marked key is evicted once maxSize is exceeded.
type Seen[K comparable] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[K]*list.Element
	order   *list.List
	now     func() time.Time
}

type entry[K comparable] struct {
	key       K
	expiresAt time.Time
}

func NewSeen[K comparable](maxSize int, ttl time.Duration) *Seen[K] {
	return &Seen[K]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[K]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// Mark records key and reports whether it was new. A key whose entry has
// expired counts as new again.
func (s *Seen[K]) Mark(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if elem, ok := s.items[key]; ok {
		e := elem.Value.(*entry[K])
		if now.Before(e.expiresAt) {
			s.order.MoveToFront(elem)
			return false
		}
		e.expiresAt = now.Add(s.ttl)
		s.order.MoveToFront(elem)
		return true
	}

	s.items[key] = s.order.PushFront(&entry[K]{key: key, expiresAt: now.Add(s.ttl)})
	if s.order.Len() > s.maxSize {
		s.remove(s.order.Back())
	}
	return true
}

// Forget drops key so the next Mark treats it as new.
func (s *Seen[K]) Forget(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.items[key]; ok {
		s.remove(elem)
	}
}

func (s *Seen[K]) remove(elem *list.Element) {
	delete(s.items, elem.Value.(*entry[K]).key)
	s.order.Remove(elem)
}

// CleanExpired removes all expired entries and returns how many were removed.
func (s *Seen[K]) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var expired []*list.Element
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		if !now.Before(elem.Value.(*entry[K]).expiresAt) {
			expired = append(expired, elem)
		}
	}
	for _, elem := range expired {
		s.remove(elem)
	}
	return len(expired)
}

func (s *Seen[K]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
