package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/course-session-gateway/cookies"
	apperrors "github.com/jrsteele09/course-session-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	// RefreshPath mints a new access token from the refresh cookie
	RefreshPath = "/auth/refresh-access"

	maxResponseBytes = 10 << 20
)

// Terminator ends a client session: local cookies removed, backend notified,
// and the sign-in location returned.
type Terminator interface {
	SignOut(ctx context.Context, store cookies.Store) string
}

// attemptState bounds the 401 handling of one call to a single refresh.
type attemptState int

const (
	attemptInitial attemptState = iota
	attemptRefreshed
)

// Client calls the course backend on behalf of a cookie store, refreshing the
// access token once when the backend answers 401.
type Client struct {
	baseURL    string
	httpClient *http.Client
	terminator Terminator
}

// ClientOption modifies a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client (its timeout included)
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for baseURL. timeout bounds every request; terminator
// runs when a session cannot be recovered.
func New(baseURL string, timeout time.Duration, terminator Terminator, options ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("[apiclient New] baseURL is required")
	}
	if terminator == nil {
		return nil, fmt.Errorf("[apiclient New] terminator is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		terminator: terminator,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req with every cookie of store attached.
//
// A 401 triggers one refresh followed by one retry. When refresh is skipped
// or fails, or the retry is rejected again, the session is signed out and a
// *SessionEndedError returned. Other non-2xx answers become *APIError.
func (c *Client) Do(ctx context.Context, store cookies.Store, req Request) (*Response, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	state := attemptInitial
	for {
		resp, err := c.exchange(ctx, req, body, cookies.Header(store))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusUnauthorized {
			return c.checkStatus(req, resp)
		}

		if req.SkipRefresh || state == attemptRefreshed {
			break
		}

		log.Warn().Str("endpoint", req.Endpoint).Msg("Access token rejected, attempting refresh")
		if _, err := c.Refresh(ctx, store); err != nil {
			log.Err(err).Str("endpoint", req.Endpoint).Msg("Token refresh failed")
			break
		}
		log.Debug().Str("endpoint", req.Endpoint).Msg("Token refreshed, retrying request")
		state = attemptRefreshed
	}

	return nil, &SessionEndedError{RedirectURL: c.terminator.SignOut(ctx, store)}
}

// Send performs a single exchange carrying only the given cookies: no refresh,
// no sign-out. Every non-2xx answer, 401 included, becomes *APIError.
func (c *Client) Send(ctx context.Context, req Request, attach ...cookies.Cookie) (*Response, error) {
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, err
	}

	resp, err := c.exchange(ctx, req, body, cookies.Header(cookies.NewMemoryStore(attach...)))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrorFromResponse(resp.StatusCode, resp.Body)
	}
	return resp, nil
}

// Refresh exchanges the refresh cookie for new tokens and synchronizes them
// into store. It returns the new access token, or "" when the backend set
// cookies without one. Refresh never goes through Do.
func (c *Client) Refresh(ctx context.Context, store cookies.Store) (string, error) {
	refreshCookie, ok := store.Get(cookies.RefreshTokenName)
	if !ok || refreshCookie.Value == "" {
		return "", apperrors.ErrNoRefreshToken
	}

	resp, err := c.Send(ctx, Request{Method: http.MethodPost, Endpoint: RefreshPath}, refreshCookie)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrRefreshFailed, err)
	}
	if len(resp.Header.Values("Set-Cookie")) == 0 {
		return "", apperrors.Wrapf(apperrors.ErrRefreshFailed, "refresh response carried no cookies")
	}

	accessToken, _ := cookies.Sync(resp.Header, store)
	return accessToken, nil
}

func (c *Client) url(req Request) string {
	endpoint := req.Endpoint
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	u := c.baseURL + endpoint
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

func (c *Client) exchange(ctx context.Context, req Request, body []byte, cookieHeader string) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.url(req), bodyReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Cache-Control", "no-store")
	if cookieHeader != "" {
		httpReq.Header.Set("Cookie", cookieHeader)
	}
	for k, values := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.Endpoint, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, req.Endpoint, err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

func (c *Client) checkStatus(req Request, resp *Response) (*Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	log.Error().Int("status", resp.StatusCode).Str("endpoint", req.Endpoint).Msg("API error")
	return nil, ErrorFromResponse(resp.StatusCode, resp.Body)
}

// Fetch runs Do and decodes the response into T. A 204 yields T's zero value.
func Fetch[T any](ctx context.Context, c *Client, store cookies.Store, req Request) (T, error) {
	var out T
	resp, err := c.Do(ctx, store, req)
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
