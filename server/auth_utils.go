package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/course-session-gateway/apiclient"
	"github.com/jrsteele09/course-session-gateway/auth"
	apperrors "github.com/jrsteele09/course-session-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

type messageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeError maps service errors onto HTTP responses. An ended session is a
// redirect for pages and htmx, and a 401 carrying the redirect for API clients.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ended *apiclient.SessionEndedError
	if errors.As(err, &ended) {
		if isHTMXRequest(r) || wantsHTML(r) {
			redirectSuccess(w, r, ended.RedirectURL)
			return
		}
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: ended.Error(), Redirect: ended.RedirectURL})
		return
	}

	var apiErr *apperrors.APIError
	switch {
	case errors.As(err, &apiErr):
		writeMessage(w, apiErr.StatusCode, apiErr.Error())
	case errors.Is(err, auth.InvalidParamsErr), errors.Is(err, apperrors.ErrInvalidRequest):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrUnknownProvider):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Backend timed out")
		writeMessage(w, http.StatusGatewayTimeout, "backend timed out")
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Backend call failed")
		writeMessage(w, http.StatusBadGateway, "backend unavailable")
	}
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsHTML reports a browser navigation rather than a fetch call
func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
