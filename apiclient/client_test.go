package apiclient_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/course-session-gateway/apiclient"
	"github.com/jrsteele09/course-session-gateway/cookies"
	"github.com/jrsteele09/course-session-gateway/internal/backendfake"
	apperrors "github.com/jrsteele09/course-session-gateway/internal/errors"
	"github.com/stretchr/testify/require"
)

const signInRedirect = "/sign-in?reason=session_expired"

// fakeTerminator records sign-outs and clears the token cookies
type fakeTerminator struct {
	calls int
}

func (f *fakeTerminator) SignOut(_ context.Context, store cookies.Store) string {
	f.calls++
	store.Delete(cookies.AccessTokenName)
	store.Delete(cookies.RefreshTokenName)
	return signInRedirect
}

type fixture struct {
	backend    *backendfake.Backend
	terminator *fakeTerminator
	client     *apiclient.Client
	store      *cookies.MemoryStore
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	backend := backendfake.New(t)
	terminator := &fakeTerminator{}
	client, err := apiclient.New(backend.URL(), 5*time.Second, terminator)
	require.NoError(t, err)
	return &fixture{
		backend:    backend,
		terminator: terminator,
		client:     client,
		store:      cookies.NewMemoryStore(),
	}
}

func (f *fixture) signedIn(accessExpiry time.Time) {
	f.store.Set(cookies.Cookie{Name: cookies.AccessTokenName, Value: backendfake.MintAccessToken("user-1", "STUDENT", accessExpiry), Path: "/"})
	f.store.Set(cookies.Cookie{Name: cookies.RefreshTokenName, Value: f.backend.IssueRefreshToken("user-1"), Path: "/"})
}

func TestNew_Validation(t *testing.T) {
	_, err := apiclient.New("", time.Second, &fakeTerminator{})
	require.Error(t, err)

	_, err = apiclient.New("http://localhost", time.Second, nil)
	require.Error(t, err)
}

func TestFetch_ValidSessionNoRefresh(t *testing.T) {
	f := setupFixture(t)
	f.signedIn(time.Now().Add(time.Hour))

	categories, err := apiclient.Fetch[[]backendfake.Category](context.Background(), f.client, f.store, apiclient.Request{Endpoint: "course-category"})
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.Equal(t, 0, f.backend.Hits("POST /auth/refresh-access"))
	require.Equal(t, 0, f.terminator.calls)

	sent := f.backend.CookieHeaders("GET /course-category")
	require.Len(t, sent, 1)
	require.Contains(t, sent[0], "accessToken=")
	require.Contains(t, sent[0], "refreshToken=")
}

func TestFetch_ExpiredAccessRefreshesAndRetriesOnce(t *testing.T) {
	f := setupFixture(t)
	f.signedIn(time.Now().Add(-time.Minute))
	oldAccess := cookies.Value(f.store, cookies.AccessTokenName)

	categories, err := apiclient.Fetch[[]backendfake.Category](context.Background(), f.client, f.store, apiclient.Request{Endpoint: "/course-category"})
	require.NoError(t, err)
	require.Len(t, categories, 2)

	require.Equal(t, 1, f.backend.Hits("POST /auth/refresh-access"))
	require.Equal(t, 2, f.backend.Hits("GET /course-category"))
	require.Equal(t, 0, f.terminator.calls)
	require.NotEqual(t, oldAccess, cookies.Value(f.store, cookies.AccessTokenName))

	refreshCookies := f.backend.CookieHeaders("POST /auth/refresh-access")
	require.Len(t, refreshCookies, 1)
	require.NotContains(t, refreshCookies[0], "accessToken=")
	require.Contains(t, refreshCookies[0], "refreshToken=")
}

func TestDo_SecondUnauthorizedSignsOutWithoutSecondRefresh(t *testing.T) {
	f := setupFixture(t)
	f.signedIn(time.Now().Add(time.Hour))
	f.backend.SetAlwaysReject(true)

	resp, err := f.client.Do(context.Background(), f.store, apiclient.Request{Endpoint: "/course-category"})
	require.Nil(t, resp)
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)

	var ended *apiclient.SessionEndedError
	require.ErrorAs(t, err, &ended)
	require.Equal(t, signInRedirect, ended.RedirectURL)

	require.Equal(t, 1, f.backend.Hits("POST /auth/refresh-access"))
	require.Equal(t, 2, f.backend.Hits("GET /course-category"))
	require.Equal(t, 1, f.terminator.calls)
}

func TestDo_FailedRefreshSignsOut(t *testing.T) {
	f := setupFixture(t)
	f.signedIn(time.Now().Add(-time.Minute))
	f.backend.SetRefreshStatus(http.StatusInternalServerError)

	resp, err := f.client.Do(context.Background(), f.store, apiclient.Request{Endpoint: "/course-category"})
	require.Nil(t, resp)
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Equal(t, 1, f.backend.Hits("POST /auth/refresh-access"))
	require.Equal(t, 1, f.backend.Hits("GET /course-category"))
	require.Equal(t, 1, f.terminator.calls)
	_, ok := f.store.Get(cookies.AccessTokenName)
	require.False(t, ok)
}

func TestDo_RefreshWithoutCookiesSignsOut(t *testing.T) {
	f := setupFixture(t)
	f.signedIn(time.Now().Add(-time.Minute))
	f.backend.SetRefreshWithoutCookies(true)

	_, err := f.client.Do(context.Background(), f.store, apiclient.Request{Endpoint: "/course-category"})
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Equal(t, 1, f.backend.Hits("GET /course-category"))
	require.Equal(t, 1, f.terminator.calls)
}

func TestDo_SkipRefresh(t *testing.T) {
	f := setupFixture(t)
	f.signedIn(time.Now().Add(-time.Minute))

	_, err := f.client.Do(context.Background(), f.store, apiclient.Request{Endpoint: "/course-category", SkipRefresh: true})
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Equal(t, 0, f.backend.Hits("POST /auth/refresh-access"))
	require.Equal(t, 1, f.terminator.calls)
}

func TestDo_NoRefreshCookieSignsOutWithoutRefreshCall(t *testing.T) {
	f := setupFixture(t)

	_, err := f.client.Do(context.Background(), f.store, apiclient.Request{Endpoint: "/course-category"})
	require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	require.Equal(t, 0, f.backend.Hits("POST /auth/refresh-access"))
	require.Equal(t, 1, f.terminator.calls)
}

func TestDo_APIErrors(t *testing.T) {
	f := setupFixture(t)
	f.signedIn(time.Now().Add(time.Hour))

	t.Run("backend message", func(t *testing.T) {
		_, err := f.client.Do(context.Background(), f.store, apiclient.Request{Endpoint: "/course/missing"})
		var apiErr *apperrors.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		require.Equal(t, "Course not found", apiErr.Message)
	})

	t.Run("message list", func(t *testing.T) {
		_, err := f.client.Do(context.Background(), f.store, apiclient.Request{
			Method:   http.MethodPost,
			Endpoint: "/auth/sign-up",
			Body:     map[string]string{"email": "nope"},
		})
		var apiErr *apperrors.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		require.Equal(t, "email must be an email", apiErr.Message)
	})

	t.Run("generic fallback", func(t *testing.T) {
		_, err := f.client.Do(context.Background(), f.store, apiclient.Request{Endpoint: "/does-not-exist"})
		var apiErr *apperrors.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Empty(t, apiErr.Message)
		require.EqualError(t, err, "API Request Failed: 404")
	})

	require.Equal(t, 0, f.terminator.calls)
}

func TestFetch_ContentTypes(t *testing.T) {
	f := setupFixture(t)
	f.signedIn(time.Now().Add(time.Hour))
	ctx := context.Background()

	t.Run("no content", func(t *testing.T) {
		out, err := apiclient.Fetch[map[string]any](ctx, f.client, f.store, apiclient.Request{Method: http.MethodDelete, Endpoint: "/course/course-1"})
		require.NoError(t, err)
		require.Empty(t, out)
	})

	t.Run("text body", func(t *testing.T) {
		out, err := apiclient.Fetch[string](ctx, f.client, f.store, apiclient.Request{Endpoint: "/text"})
		require.NoError(t, err)
		require.Equal(t, "plain body", out)
	})

	t.Run("text into struct is rejected", func(t *testing.T) {
		_, err := apiclient.Fetch[backendfake.Category](ctx, f.client, f.store, apiclient.Request{Endpoint: "/text"})
		require.ErrorIs(t, err, apperrors.ErrUnexpectedBody)
	})
}

func TestSend_DoesNotAttachStoreOrRefresh(t *testing.T) {
	f := setupFixture(t)

	_, err := f.client.Send(context.Background(), apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/auth/sign-in",
		Body:     map[string]string{"email": "ghost@example.com", "password": "x"},
	})
	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Invalid email or password", apiErr.Message)
	require.Equal(t, 0, f.backend.Hits("POST /auth/refresh-access"))
	require.Equal(t, 0, f.terminator.calls)
	require.Equal(t, []string{""}, f.backend.CookieHeaders("POST /auth/sign-in"))
}

func TestRefresh(t *testing.T) {
	f := setupFixture(t)

	_, err := f.client.Refresh(context.Background(), f.store)
	require.ErrorIs(t, err, apperrors.ErrNoRefreshToken)

	f.signedIn(time.Now().Add(-time.Minute))
	access, err := f.client.Refresh(context.Background(), f.store)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.Equal(t, access, cookies.Value(f.store, cookies.AccessTokenName))

	f.backend.SetRefreshStatus(http.StatusUnauthorized)
	_, err = f.client.Refresh(context.Background(), f.store)
	require.ErrorIs(t, err, apperrors.ErrRefreshFailed)
}

func TestDo_ContextCancelled(t *testing.T) {
	f := setupFixture(t)
	f.signedIn(time.Now().Add(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.client.Do(ctx, f.store, apiclient.Request{Endpoint: "/course-category"})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, f.terminator.calls)
}
