// pkg/memcache/session_locks.go
package mem

import (
	"sync"
	"time"
)

type SessionLockStore interface {
	// TryAcquire marks key busy. It returns false if another holder has it;
	// otherwise release must be called once the work is done.
	TryAcquire(key string) (release func(), ok bool)

	// Busy reports whether key is currently held.
	Busy(key string) bool
}

type entry struct {
	busy     bool
	lastUsed time.Time
}

// SessionLocks is an in-memory lock table. Idle entries older than ttl are
// swept on acquisition.
type SessionLocks struct {
	mu   sync.Mutex
	data map[string]*entry
	ttl  time.Duration
	now  func() time.Time
}

func NewSessionLocks(ttl time.Duration) *SessionLocks {
	return &SessionLocks{
		data: make(map[string]*entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (s *SessionLocks) TryAcquire(key string) (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	e, ok := s.data[key]
	if ok && e.busy {
		return nil, false
	}
	if !ok {
		e = &entry{}
		s.data[key] = e
	}
	e.busy = true
	e.lastUsed = now

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			e.busy = false
			e.lastUsed = s.now()
		})
	}, true
}

func (s *SessionLocks) Busy(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[key]
	return ok && e.busy
}

func (s *SessionLocks) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func (s *SessionLocks) sweep(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for key, e := range s.data {
		if !e.busy && now.Sub(e.lastUsed) > s.ttl {
			delete(s.data, key)
		}
	}
}
