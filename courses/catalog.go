// Package courses reads the course catalogue from the backend on behalf of a
// signed-in client session.
package courses

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/course-session-gateway/apiclient"
	"github.com/jrsteele09/course-session-gateway/cookies"
	apperrors "github.com/jrsteele09/course-session-gateway/internal/errors"
	"github.com/jrsteele09/course-session-gateway/internal/utils"
)

const (
	categoriesEndpoint = "/course-category"
	coursesEndpoint    = "/course"
)

type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
}

type Course struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	CategoryID  *string `json:"categoryId,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Summary is a one line description of the course
func (c Course) Summary() string {
	if d := utils.Value(c.Description); d != "" {
		return fmt.Sprintf("%s (%s): %s", c.Title, c.Slug, d)
	}
	return fmt.Sprintf("%s (%s)", c.Title, c.Slug)
}

// CourseList is one page of courses.
type CourseList struct {
	Items []Course `json:"items"`
	Total int      `json:"total"`
	Page  int      `json:"page"`
}

// ListOptions filters the course listing. Nil pages and limits use the backend defaults.
type ListOptions struct {
	Page     *int
	Limit    *int
	Category string
	Query    string
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Page != nil {
		q.Set("page", strconv.Itoa(*o.Page))
	}
	if o.Limit != nil {
		q.Set("limit", strconv.Itoa(*o.Limit))
	}
	if o.Category != "" {
		q.Set("category", o.Category)
	}
	if o.Query != "" {
		q.Set("q", o.Query)
	}
	return q
}

// Catalog reads categories and courses through the session client.
type Catalog struct {
	client *apiclient.Client
}

func NewCatalog(client *apiclient.Client) *Catalog {
	return &Catalog{client: client}
}

func (c *Catalog) Categories(ctx context.Context, store cookies.Store) ([]Category, error) {
	categories, err := apiclient.Fetch[[]Category](ctx, c.client, store, apiclient.Request{Endpoint: categoriesEndpoint})
	if err != nil {
		return nil, fmt.Errorf("[Catalog.Categories] %w", err)
	}
	if categories == nil {
		categories = []Category{}
	}
	return categories, nil
}

func (c *Catalog) List(ctx context.Context, store cookies.Store, opts ListOptions) (*CourseList, error) {
	if utils.Value(opts.Page) < 0 || utils.Value(opts.Limit) < 0 {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "page and limit must not be negative")
	}

	list, err := apiclient.Fetch[CourseList](ctx, c.client, store, apiclient.Request{
		Endpoint: coursesEndpoint,
		Query:    opts.values(),
	})
	if err != nil {
		return nil, fmt.Errorf("[Catalog.List] %w", err)
	}
	if list.Items == nil {
		list.Items = []Course{}
	}
	return &list, nil
}

func (c *Catalog) Get(ctx context.Context, store cookies.Store, id string) (*Course, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "course id is required")
	}

	course, err := apiclient.Fetch[Course](ctx, c.client, store, apiclient.Request{
		Endpoint: coursesEndpoint + "/" + url.PathEscape(id),
	})
	if err != nil {
		return nil, fmt.Errorf("[Catalog.Get] %w", err)
	}
	return &course, nil
}
