package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/jrsteele09/course-session-gateway/internal/errors"
)

// Request describes one backend call.
type Request struct {
	Method   string
	Endpoint string
	Query    url.Values
	// Body is sent as-is when it is a string or []byte, JSON encoded otherwise
	Body   any
	Header http.Header
	// SkipRefresh turns a 401 into an immediate sign-out
	SkipRefresh bool
}

// Response is a fully read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsJSON reports whether the response declared a JSON content type
func (r *Response) IsJSON() bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Decode stores the response into v: 204 or an empty body leaves v untouched,
// JSON bodies are unmarshalled, other bodies are only accepted into a *string
// or *[]byte.
func (r *Response) Decode(v any) error {
	if r.StatusCode == http.StatusNoContent || len(r.Body) == 0 {
		return nil
	}
	if r.IsJSON() {
		if err := json.Unmarshal(r.Body, v); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	switch out := v.(type) {
	case *string:
		*out = string(r.Body)
		return nil
	case *[]byte:
		*out = append((*out)[:0], r.Body...)
		return nil
	}
	return apperrors.Wrapf(apperrors.ErrUnexpectedBody, "content type %q", r.Header.Get("Content-Type"))
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(b), nil
	case []byte:
		return b, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return data, nil
}

func bodyReader(data []byte) io.Reader {
	if data == nil {
		return nil
	}
	return bytes.NewReader(data)
}
