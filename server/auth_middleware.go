package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/course-session-gateway/cookies"
	"github.com/jrsteele09/course-session-gateway/sessions"
)

type storeKey struct{}

// cookieStore returns the request's cookie store. Middleware that refreshes
// tokens stores its HTTPStore in the context so handlers see the new cookies.
func cookieStore(w http.ResponseWriter, r *http.Request) cookies.Store {
	if store, ok := r.Context().Value(storeKey{}).(cookies.Store); ok {
		return store
	}
	return cookies.NewHTTPStore(w, r)
}

// RequireSession resolves the current session before the handler runs. The
// payload is available through sessions.PayloadFromContext.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := cookieStore(w, r)

		payload, err := s.auth.CurrentSession(r.Context(), store)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), storeKey{}, store)
		ctx = sessions.WithPayload(ctx, payload)
		next(w, r.WithContext(ctx))
	}
}

// RouteGuard keeps anonymous visitors on the sign-in pages and signed-in
// visitors away from them. Only the presence of the access cookie is checked;
// the API routes validate the session itself.
func (s *Server) RouteGuard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isExemptFromGuard(r.URL.Path) {
			next(w, r)
			return
		}

		_, err := r.Cookie(cookies.AccessTokenName)
		hasToken := err == nil
		onAuthPage := isAuthPage(r.URL.Path)

		switch {
		case !hasToken && !onAuthPage:
			http.Redirect(w, r, RouteSignIn, http.StatusSeeOther)
		case hasToken && onAuthPage:
			http.Redirect(w, r, RouteHome, http.StatusSeeOther)
		default:
			next(w, r)
		}
	}
}

func isAuthPage(path string) bool {
	return strings.HasPrefix(path, RouteSignIn) || strings.HasPrefix(path, RouteSignUp)
}

// static assets are needed by the sign-in pages themselves
func isExemptFromGuard(path string) bool {
	return strings.HasPrefix(path, "/static/") || isImageAsset(path) || isOtherStaticAsset(path)
}
