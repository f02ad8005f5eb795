package cookies

import (
	"net/http"
	"sync"
)

// HTTPStore is a request scoped store. Reads see the incoming request's
// cookies overlaid with writes made while handling it; every write is
// mirrored to the response as a Set-Cookie header.
type HTTPStore struct {
	w       http.ResponseWriter
	r       *http.Request
	mu      sync.Mutex
	written map[string]Cookie
	deleted map[string]struct{}
}

var _ Store = (*HTTPStore)(nil)

func NewHTTPStore(w http.ResponseWriter, r *http.Request) *HTTPStore {
	return &HTTPStore{
		w:       w,
		r:       r,
		written: make(map[string]Cookie),
		deleted: make(map[string]struct{}),
	}
}

func (s *HTTPStore) Get(name string) (Cookie, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, gone := s.deleted[name]; gone {
		return Cookie{}, false
	}
	if c, ok := s.written[name]; ok {
		return c, true
	}
	c, err := s.r.Cookie(name)
	if err != nil {
		return Cookie{}, false
	}
	return FromHTTP(c), true
}

func (s *HTTPStore) Set(cookie Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	http.SetCookie(s.w, cookie.HTTP())
	if cookie.MaxAge < 0 {
		delete(s.written, cookie.Name)
		s.deleted[cookie.Name] = struct{}{}
		return
	}
	delete(s.deleted, cookie.Name)
	s.written[cookie.Name] = cookie
}

// Delete expires the cookie in the browser and hides it from later reads.
func (s *HTTPStore) Delete(name string) {
	s.Set(Cookie{Name: name, Path: "/", MaxAge: -1, HttpOnly: true})
}

func (s *HTTPStore) All() []Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]Cookie, 0)
	seen := make(map[string]struct{})
	for _, c := range s.r.Cookies() {
		if _, gone := s.deleted[c.Name]; gone {
			continue
		}
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		if w, ok := s.written[c.Name]; ok {
			all = append(all, w)
			continue
		}
		all = append(all, FromHTTP(c))
	}
	for name, c := range s.written {
		if _, ok := seen[name]; !ok {
			all = append(all, c)
		}
	}
	return all
}
