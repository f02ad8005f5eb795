package cookies

import (
	"slices"
	"sync"
)

// MemoryStore keeps cookies for one client session in insertion order.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []string
	cookies map[string]Cookie
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(initial ...Cookie) *MemoryStore {
	s := &MemoryStore{cookies: make(map[string]Cookie)}
	for _, c := range initial {
		s.Set(c)
	}
	return s
}

func (s *MemoryStore) Get(name string) (Cookie, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cookies[name]
	return c, ok
}

// Set stores the cookie. A negative MaxAge is a deletion directive from the backend.
func (s *MemoryStore) Set(cookie Cookie) {
	if cookie.MaxAge < 0 {
		s.Delete(cookie.Name)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cookies[cookie.Name]; !exists {
		s.order = append(s.order, cookie.Name)
	}
	s.cookies[cookie.Name] = cookie
}

func (s *MemoryStore) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cookies[name]; !exists {
		return
	}
	delete(s.cookies, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
}

func (s *MemoryStore) All() []Cookie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]Cookie, 0, len(s.order))
	for _, name := range s.order {
		all = append(all, s.cookies[name])
	}
	return all
}
