// Package backendfake is an in-process stand-in for the course REST backend,
// used by tests across the gateway.
package backendfake

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/course-session-gateway/cookies"
)

const (
	Secret         = "backend-signing-secret"
	ValidPassword  = "password123"
	AccessTokenTTL = 15 * time.Minute
)

// User is a registered backend account
type User struct {
	ID       string
	Email    string
	Name     string
	Password string
	Role     string
}

// Category mirrors the backend course category resource
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Backend simulates the auth and course endpoints.
type Backend struct {
	Server *httptest.Server

	mu            sync.Mutex
	users         map[string]User // email -> user
	refreshTokens map[string]string
	hits          map[string]int
	cookieHeaders map[string][]string

	refreshStatus    int  // non-zero forces this status on /auth/refresh-access
	refreshNoCookies bool // refresh succeeds without Set-Cookie lines
	alwaysReject     bool // protected endpoints answer 401 even for valid tokens
	signOutStatus    int  // non-zero forces this status on /auth/sign-out

	Categories []Category
}

// New starts the fake backend; it is closed with the test.
func New(t interface{ Cleanup(func()) }) *Backend {
	b := &Backend{
		users:         make(map[string]User),
		refreshTokens: make(map[string]string),
		hits:          make(map[string]int),
		cookieHeaders: make(map[string][]string),
		Categories: []Category{
			{ID: "c1", Name: "Programming", Slug: "programming"},
			{ID: "c2", Name: "Design", Slug: "design", Description: "UI and UX"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/sign-in", b.track(b.signIn))
	mux.HandleFunc("POST /auth/sign-up", b.track(b.signUp))
	mux.HandleFunc("POST /auth/refresh-access", b.track(b.refresh))
	mux.HandleFunc("POST /auth/sign-out", b.track(b.signOut))
	mux.HandleFunc("GET /course-category", b.track(b.protected(b.categories)))
	mux.HandleFunc("GET /course", b.track(b.protected(b.courses)))
	mux.HandleFunc("GET /course/{id}", b.track(b.protected(b.course)))
	mux.HandleFunc("GET /text", b.track(b.protected(b.text)))
	mux.HandleFunc("DELETE /course/{id}", b.track(b.protected(b.noContent)))

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

// SetRefreshStatus forces status on every refresh call
func (b *Backend) SetRefreshStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshStatus = status
}

// SetRefreshWithoutCookies makes refresh succeed without issuing cookies
func (b *Backend) SetRefreshWithoutCookies(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshNoCookies = v
}

// SetAlwaysReject makes protected endpoints answer 401 regardless of the token
func (b *Backend) SetAlwaysReject(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alwaysReject = v
}

// SetSignOutStatus forces status on the sign-out endpoint
func (b *Backend) SetSignOutStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signOutStatus = status
}

// URL returns the backend base URL
func (b *Backend) URL() string {
	return b.Server.URL
}

// AddUser registers an account that can sign in with ValidPassword
func (b *Backend) AddUser(u User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u.Password == "" {
		u.Password = ValidPassword
	}
	if u.Role == "" {
		u.Role = "STUDENT"
	}
	b.users[u.Email] = u
}

// IssueRefreshToken registers a refresh token for userID and returns it
func (b *Backend) IssueRefreshToken(userID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	rt := "rt-" + uuid.NewString()
	b.refreshTokens[rt] = userID
	return rt
}

// Hits returns how many requests reached "METHOD /path"
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

// CookieHeaders returns the Cookie headers received on "METHOD /path"
func (b *Backend) CookieHeaders(route string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.cookieHeaders[route]...)
}

// MintAccessToken signs an access token the way the backend does
func MintAccessToken(userID, role string, expiresAt time.Time) string {
	claims := jwtlib.MapClaims{
		"id":   userID,
		"role": role,
		"type": "access",
		"iat":  time.Now().Unix(),
		"exp":  expiresAt.Unix(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(Secret))
	if err != nil {
		panic(fmt.Sprintf("mint access token: %v", err))
	}
	return signed
}

func (b *Backend) track(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.hits[route]++
		b.cookieHeaders[route] = append(b.cookieHeaders[route], r.Header.Get("Cookie"))
		b.mu.Unlock()
		next(w, r)
	}
}

func (b *Backend) issueTokens(w http.ResponseWriter, u User) {
	access := MintAccessToken(u.ID, u.Role, time.Now().Add(AccessTokenTTL))
	refresh := b.IssueRefreshToken(u.ID)

	http.SetCookie(w, &http.Cookie{
		Name: cookies.AccessTokenName, Value: access, Path: "/",
		HttpOnly: true, MaxAge: int(AccessTokenTTL.Seconds()), SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name: cookies.RefreshTokenName, Value: refresh, Path: "/",
		HttpOnly: true, MaxAge: 7 * 24 * 3600, SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message any) {
	writeJSON(w, status, map[string]any{"message": message, "statusCode": status})
}
