package cookies

import (
	"net/http"
	"strings"
	"time"
)

// Cookie names shared with the course backend. They must match exactly.
const (
	AccessTokenName  = "accessToken"
	RefreshTokenName = "refreshToken"
	// SessionIDName identifies one client session in the session cache
	SessionIDName = "sessionId"
)

// Cookie is the attribute set mirrored between the backend and the local store.
type Cookie struct {
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	HttpOnly bool          `json:"httpOnly,omitempty"`
	Secure   bool          `json:"secure,omitempty"`
	Path     string        `json:"path,omitempty"`
	MaxAge   int           `json:"maxAge,omitempty"`
	Expires  time.Time     `json:"expires,omitzero"`
	SameSite http.SameSite `json:"sameSite,omitempty"`
}

// Store is the narrow cookie store used by the session flow.
type Store interface {
	Get(name string) (Cookie, bool)
	Set(cookie Cookie)
	Delete(name string)
	All() []Cookie
}

func FromHTTP(c *http.Cookie) Cookie {
	return Cookie{
		Name:     c.Name,
		Value:    c.Value,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		Path:     c.Path,
		MaxAge:   c.MaxAge,
		Expires:  c.Expires,
		SameSite: c.SameSite,
	}
}

func (c Cookie) HTTP() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		Path:     c.Path,
		MaxAge:   c.MaxAge,
		Expires:  c.Expires,
		SameSite: c.SameSite,
	}
}

// ExpiredAt reports whether the cookie should no longer be sent at now.
func (c Cookie) ExpiredAt(now time.Time) bool {
	if c.MaxAge < 0 {
		return true
	}
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

// Value returns the value of the named cookie, or "" if absent.
func Value(store Store, name string) string {
	c, ok := store.Get(name)
	if !ok {
		return ""
	}
	return c.Value
}

// Header renders every cookie of the store as a Cookie request header value.
func Header(store Store) string {
	all := store.All()
	pairs := make([]string, 0, len(all))
	for _, c := range all {
		pairs = append(pairs, (&http.Cookie{Name: c.Name, Value: c.Value}).String())
	}
	return strings.Join(pairs, "; ")
}
