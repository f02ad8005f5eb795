package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jrsteele09/course-session-gateway/auth"
	"github.com/jrsteele09/course-session-gateway/token"
	"github.com/rs/zerolog/log"
)

const maxFormBytes = 1 << 20

type sessionResponse struct {
	Payload *token.Payload `json:"payload"`
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// SignInHandler signs in with JSON credentials. The backend cookies are
// mirrored onto the response.
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params auth.SignInParams
		if !decodeJSONBody(w, r, &params) {
			return
		}

		payload, err := s.auth.SignIn(r.Context(), cookieStore(w, r), params)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Payload: payload})
	}
}

// SignUpHandler registers an account and relays the backend answer.
func (s *Server) SignUpHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params auth.SignUpParams
		if !decodeJSONBody(w, r, &params) {
			return
		}

		resp, err := s.auth.SignUp(r.Context(), cookieStore(w, r), params)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		if ct := resp.Header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := w.Write(resp.Body); err != nil {
			log.Ctx(r.Context()).Err(err).Msg("Failed to relay sign up response")
		}
	}
}

// SignOutHandler ends the session and sends the client to the sign-in page.
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirect := s.auth.SignOut(r.Context(), cookieStore(w, r))
		if isHTMXRequest(r) || wantsHTML(r) {
			redirectSuccess(w, r, redirect)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "signed out", Redirect: redirect})
	}
}

// SessionHandler reports the current session, refreshing it when needed.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := s.auth.CurrentSession(r.Context(), cookieStore(w, r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Payload: payload})
	}
}

// ProviderRedirectHandler sends the browser to the backend's provider sign-in.
func (s *Server) ProviderRedirectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := s.auth.ProviderRedirectURL(r.PathValue("provider"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
