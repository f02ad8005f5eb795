package apiclient

import (
	"encoding/json"
	"strings"

	apperrors "github.com/jrsteele09/course-session-gateway/internal/errors"
	"github.com/jrsteele09/course-session-gateway/internal/utils"
)

// SessionEndedError is returned once an authorization failure could not be
// recovered by a refresh. Sign-out has already run when it is returned;
// callers only need to send the user to RedirectURL.
type SessionEndedError struct {
	RedirectURL string
}

func (e *SessionEndedError) Error() string {
	return apperrors.ErrSessionExpired.Error()
}

func (e *SessionEndedError) Is(target error) bool {
	return target == apperrors.ErrSessionExpired
}

// errorBody is the backend error envelope. message is a string, or a list of
// strings for validation failures.
type errorBody struct {
	Message any `json:"message"`
}

// ErrorFromResponse converts a non-success response into an APIError.
func ErrorFromResponse(statusCode int, body []byte) *apperrors.APIError {
	return apperrors.NewAPIError(statusCode, backendMessage(body))
}

func backendMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	switch m := eb.Message.(type) {
	case string:
		return m
	case []any:
		return strings.Join(utils.ToStringSlice(m), ", ")
	}
	return ""
}
