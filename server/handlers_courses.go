package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/course-session-gateway/courses"
	apperrors "github.com/jrsteele09/course-session-gateway/internal/errors"
	"github.com/jrsteele09/course-session-gateway/internal/utils"
)

func (s *Server) CategoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := s.catalog.Categories(r.Context(), cookieStore(w, r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	}
}

func (s *Server) CoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := listOptions(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		list, err := s.catalog.List(r.Context(), cookieStore(w, r), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) CourseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		course, err := s.catalog.Get(r.Context(), cookieStore(w, r), r.PathValue("id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, course)
	}
}

func listOptions(r *http.Request) (courses.ListOptions, error) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), "page")
	if err != nil {
		return courses.ListOptions{}, err
	}
	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		return courses.ListOptions{}, err
	}

	return courses.ListOptions{
		Page:     page,
		Limit:    limit,
		Category: q.Get("category"),
		Query:    q.Get("q"),
	}, nil
}

func intParam(raw, name string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "%s must be a number", name)
	}
	return utils.Ptr(n), nil
}
