package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/course-session-gateway/cookies"
	"github.com/jrsteele09/course-session-gateway/internal/backendfake"
	"github.com/stretchr/testify/require"
)

type cliFixture struct {
	backend    *backendfake.Backend
	cookiePath string
}

func setupCLI(t *testing.T) *cliFixture {
	t.Helper()
	backend := backendfake.New(t)
	backend.AddUser(backendfake.User{ID: "user-1", Email: "jane@example.com", Name: "Jane"})
	return &cliFixture{
		backend:    backend,
		cookiePath: filepath.Join(t.TempDir(), "cookies.json"),
	}
}

func (f *cliFixture) execute(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--cookies", f.cookiePath, "--api-url", apiURL}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (f *cliFixture) signIn(t *testing.T) {
	t.Helper()
	out, err := f.execute(t, f.backend.URL(), "sign-in", "--email", "jane@example.com", "--password", backendfake.ValidPassword)
	require.NoError(t, err)
	require.Equal(t, "Signed in as user-1 (STUDENT)\n", out)
}

func (f *cliFixture) storedCookie(t *testing.T, name string) string {
	t.Helper()
	store, err := cookies.OpenFileStore(f.cookiePath, time.Now())
	require.NoError(t, err)
	return cookies.Value(store, name)
}

func TestSignInPersistsCookies(t *testing.T) {
	f := setupCLI(t)
	f.signIn(t)

	require.NotEmpty(t, f.storedCookie(t, cookies.AccessTokenName))
	require.NotEmpty(t, f.storedCookie(t, cookies.RefreshTokenName))

	info, err := os.Stat(f.cookiePath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSignInWrongPassword(t *testing.T) {
	f := setupCLI(t)

	_, err := f.execute(t, f.backend.URL(), "sign-in", "--email", "jane@example.com", "--password", "wrong-password")
	require.EqualError(t, err, "sign in: Invalid email or password")
	require.Empty(t, f.storedCookie(t, cookies.AccessTokenName))
}

func TestSignInPasswordFromEnv(t *testing.T) {
	f := setupCLI(t)
	t.Setenv(passwordEnvVar, backendfake.ValidPassword)

	out, err := f.execute(t, f.backend.URL(), "sign-in", "--email", "jane@example.com")
	require.NoError(t, err)
	require.Contains(t, out, "Signed in as user-1")
}

func TestSignUp(t *testing.T) {
	f := setupCLI(t)

	out, err := f.execute(t, f.backend.URL(), "sign-up", "--email", "new@example.com", "--name", "New", "--password", "password123")
	require.NoError(t, err)
	require.Equal(t, "Registered (201)\n", out)

	_, err = f.execute(t, f.backend.URL(), "sign-up", "--email", "new@example.com", "--name", "New", "--password", "short")
	require.ErrorContains(t, err, "password must be at least 8 characters")
}

func TestCatalogueCommands(t *testing.T) {
	f := setupCLI(t)
	f.signIn(t)

	out, err := f.execute(t, f.backend.URL(), "categories")
	require.NoError(t, err)
	require.Equal(t, "c1\tProgramming\nc2\tDesign\n", out)

	out, err = f.execute(t, f.backend.URL(), "courses", "--page", "2", "-q", "go")
	require.NoError(t, err)
	require.Equal(t, "course-1\tGo in Practice (go-in-practice): go\npage 2, 1 total\n", out)

	out, err = f.execute(t, f.backend.URL(), "courses", "course-1")
	require.NoError(t, err)
	require.Contains(t, out, `"title": "Go in Practice"`)

	_, err = f.execute(t, f.backend.URL(), "courses", "nope")
	require.EqualError(t, err, "[Catalog.Get] Course not found")
}

func TestSessionAndSignOut(t *testing.T) {
	f := setupCLI(t)
	f.signIn(t)

	out, err := f.execute(t, f.backend.URL(), "session")
	require.NoError(t, err)
	require.Contains(t, out, `"id": "user-1"`)

	out, err = f.execute(t, f.backend.URL(), "sign-out")
	require.NoError(t, err)
	require.Equal(t, "Signed out\n", out)
	require.Empty(t, f.storedCookie(t, cookies.AccessTokenName))
	require.Equal(t, 1, f.backend.Hits("POST /auth/sign-out"))

	_, err = f.execute(t, f.backend.URL(), "categories")
	require.ErrorContains(t, err, "run coursectl sign-in")
}

func TestCall_SendsBearerToken(t *testing.T) {
	f := setupCLI(t)
	f.signIn(t)
	access := f.storedCookie(t, cookies.AccessTokenName)

	var gotAuth, gotPath string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(api.Close)

	out, err := f.execute(t, api.URL, "call", "/users/me")
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, strings.TrimSpace(out))
	require.Equal(t, "Bearer "+access, gotAuth)
	require.Equal(t, "/users/me", gotPath)
}

func TestCall_WithoutSession(t *testing.T) {
	f := setupCLI(t)

	_, err := f.execute(t, f.backend.URL(), "call", "course-category")
	require.ErrorContains(t, err, "run coursectl sign-in")
	require.Zero(t, f.backend.Hits("GET /course-category"))
}
