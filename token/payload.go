package token

import "time"

// Payload holds the session claims carried by an access token.
// A Payload is never mutated after decoding; a new token yields a new Payload.
type Payload struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Type      string `json:"type"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// ExpiresTime returns exp as a time.Time
func (p Payload) ExpiresTime() time.Time {
	return time.Unix(p.ExpiresAt, 0)
}

// ValidAt reports whether exp is strictly after now, compared in milliseconds.
// exp*1000 > now ms holds exactly when exp > floor(now ms / 1000), which is
// now.Unix(), so the comparison is made in seconds and cannot overflow.
func (p Payload) ValidAt(now time.Time) bool {
	return p.ExpiresAt > now.Unix()
}
