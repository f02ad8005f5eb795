package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jrsteele09/course-session-gateway/token"
)

// Session is the cached, non-authoritative view of one client session.
// The cookie store stays the source of truth; a Session is created on the
// first successful session check and removed on sign-out.
type Session struct {
	ID        string        // Client session identifier (sessionId cookie)
	Payload   token.Payload // Claims decoded from the current access token
	TokenHash string        // HashToken of the access token Payload was decoded from
	CreatedAt time.Time
}

// HashToken fingerprints an access token so a cached payload can be matched
// to the cookie it was decoded from without storing the token itself.
func HashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether the session was cached from rawToken
func (s Session) Matches(rawToken string) bool {
	return s.TokenHash != "" && s.TokenHash == HashToken(rawToken)
}

// Repo defines storage for cached session payloads.
type Repo interface {
	// Get returns the session, or ErrSessionNotFound when absent or expired
	Get(ctx context.Context, sessionID string) (Session, error)

	// Upsert creates or replaces the cached session
	Upsert(ctx context.Context, session Session) error

	// Delete removes a session; deleting a missing session is not an error
	Delete(ctx context.Context, sessionID string) error
}

type payloadKey struct{}

// WithPayload attaches the current session payload to ctx
func WithPayload(ctx context.Context, payload *token.Payload) context.Context {
	return context.WithValue(ctx, payloadKey{}, payload)
}

// PayloadFromContext returns the payload attached by WithPayload, or nil
func PayloadFromContext(ctx context.Context) *token.Payload {
	p, _ := ctx.Value(payloadKey{}).(*token.Payload)
	return p
}
