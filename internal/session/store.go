// Package session keeps the transient per-user memory of the last search:
// the ordered result list a follow-up numeric command indexes into, and the
// keyword that produced it. Entries expire after a fixed idle TTL and the
// store is capacity-bounded with LRU eviction.
package session

import (
	"container/list"
	"sync"
	"time"

	"novelbible/pkg/models"
)

const (
	DefaultTTL      = 600 * time.Second
	DefaultCapacity = 1000
)

// State is one user's search session. Callers get a copy; the store owns
// the canonical value and Set overwrites it wholesale.
type State struct {
	Results []models.SearchHit
	Keyword string
}

type entry struct {
	userID    string
	state     State
	expiresAt time.Time
	elem      *list.Element
}

type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]*entry
	lru      *list.List // front = most recently written/read

	now func() time.Time // test hook
}

func NewStore(ttl time.Duration, capacity int) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]*entry),
		lru:      list.New(),
		now:      time.Now,
	}
}

// GetOrCreate returns the user's live session, or a fresh empty one if none
// exists or the previous one expired. The TTL clock is not reset by reads.
func (s *Store) GetOrCreate(userID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if ok && s.now().Before(e.expiresAt) {
		s.lru.MoveToFront(e.elem)
		return e.state
	}
	if ok {
		s.removeLocked(e)
	}

	e = &entry{
		userID:    userID,
		expiresAt: s.now().Add(s.ttl),
	}
	s.insertLocked(e)
	return e.state
}

// Set overwrites the user's session wholesale and resets its TTL clock.
func (s *Store) Set(userID string, results []models.SearchHit, keyword string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		Results: append([]models.SearchHit(nil), results...),
		Keyword: keyword,
	}

	if e, ok := s.entries[userID]; ok {
		e.state = state
		e.expiresAt = s.now().Add(s.ttl)
		s.lru.MoveToFront(e.elem)
		return
	}

	s.insertLocked(&entry{
		userID:    userID,
		state:     state,
		expiresAt: s.now().Add(s.ttl),
	})
}

// Len reports live (unexpired) sessions. Expired entries still waiting for
// lazy removal are not counted.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	now := s.now()
	for _, e := range s.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

// Sweep drops every expired entry. Optional; lookups already ignore expired
// state, this just frees memory on a timer.
func (s *Store) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, e := range s.entries {
		if !now.Before(e.expiresAt) {
			s.removeLocked(e)
		}
	}
}

func (s *Store) insertLocked(e *entry) {
	if s.lru.Len() >= s.capacity {
		s.evictLocked()
	}
	e.elem = s.lru.PushFront(e)
	s.entries[e.userID] = e
}

// evictLocked frees one slot: expired entries first, LRU order otherwise.
func (s *Store) evictLocked() {
	now := s.now()
	for el := s.lru.Back(); el != nil; el = el.Prev() {
		e := el.Value.(*entry)
		if !now.Before(e.expiresAt) {
			s.removeLocked(e)
			return
		}
	}
	if el := s.lru.Back(); el != nil {
		s.removeLocked(el.Value.(*entry))
	}
}

func (s *Store) removeLocked(e *entry) {
	s.lru.Remove(e.elem)
	delete(s.entries, e.userID)
}
