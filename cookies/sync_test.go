package cookies_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/course-session-gateway/cookies"
	"github.com/stretchr/testify/require"
)

// recordingStore records every write so tests can assert on them verbatim
type recordingStore struct {
	*cookies.MemoryStore
	writes []cookies.Cookie
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: cookies.NewMemoryStore()}
}

func (r *recordingStore) Set(c cookies.Cookie) {
	r.writes = append(r.writes, c)
	r.MemoryStore.Set(c)
}

func TestSync_NoSetCookieHeaders(t *testing.T) {
	store := newRecordingStore()

	token, ok := cookies.Sync(http.Header{}, store)
	require.False(t, ok)
	require.Empty(t, token)
	require.Empty(t, store.writes)
	require.Empty(t, store.All())
}

func TestSync_CapturesAccessTokenAndPreservesAttributes(t *testing.T) {
	header := http.Header{}
	header.Add("Set-Cookie", "accessToken=acc.jwt.value; Path=/; Max-Age=900; HttpOnly; Secure; SameSite=Lax")
	header.Add("Set-Cookie", "refreshToken=opaque-refresh; Path=/auth; Expires=Wed, 01 Apr 2026 12:00:00 GMT; HttpOnly; SameSite=Strict")
	header.Add("Set-Cookie", "theme=dark; Path=/")
	store := newRecordingStore()

	token, ok := cookies.Sync(header, store)
	require.True(t, ok)
	require.Equal(t, "acc.jwt.value", token)

	require.Equal(t, []cookies.Cookie{
		{
			Name:     "accessToken",
			Value:    "acc.jwt.value",
			HttpOnly: true,
			Secure:   true,
			Path:     "/",
			MaxAge:   900,
			SameSite: http.SameSiteLaxMode,
		},
		{
			Name:     "refreshToken",
			Value:    "opaque-refresh",
			HttpOnly: true,
			Path:     "/auth",
			Expires:  time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
			SameSite: http.SameSiteStrictMode,
		},
		{
			Name:  "theme",
			Value: "dark",
			Path:  "/",
		},
	}, store.writes)
}

func TestSync_WithoutAccessToken(t *testing.T) {
	header := http.Header{}
	header.Add("Set-Cookie", "refreshToken=rt; Path=/")
	store := newRecordingStore()

	token, ok := cookies.Sync(header, store)
	require.False(t, ok)
	require.Empty(t, token)
	require.Len(t, store.writes, 1)
	require.Equal(t, "rt", cookies.Value(store, cookies.RefreshTokenName))
}

func TestSync_SkipsMalformedLines(t *testing.T) {
	header := http.Header{}
	header.Add("Set-Cookie", "=novalue")
	header.Add("Set-Cookie", "accessToken=ok; Path=/")
	store := newRecordingStore()

	token, ok := cookies.Sync(header, store)
	require.True(t, ok)
	require.Equal(t, "ok", token)
	require.Len(t, store.writes, 1)
}
