package server

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
)

// UIHandler serves the built front end. Extensionless paths resolve to
// their .html page, so /sign-in serves sign-in.html.
func (s *Server) UIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := s.resolveUIFile(r.PathValue("file"))
		if !ok {
			logError(r.Method, r.URL.Path, "not found")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		http.ServeFileFS(w, r, s.uiFS, name)
	}
}

func (s *Server) resolveUIFile(requested string) (string, bool) {
	name := strings.Trim(path.Clean("/"+requested), "/")
	if name == "" {
		name = "index.html"
	}

	candidates := []string{name}
	if path.Ext(name) == "" {
		candidates = append(candidates, name+".html", path.Join(name, "index.html"))
	}

	for _, candidate := range candidates {
		info, err := fs.Stat(s.uiFS, candidate)
		if err == nil && !info.IsDir() {
			return candidate, true
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("file", candidate).Msg("UI file lookup failed")
		}
	}
	return "", false
}

func logError(method, path, message string) {
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Warn().Msgf("[%s %-7s%s] %s %s%s%s", color, method, ResetColor, path, Red, message, ResetColor)
}
