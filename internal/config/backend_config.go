package config

import (
	"strings"
	"time"
)

const (
	apiURLEnvVar         = "API_URL"
	requestTimeoutEnvVar = "REQUEST_TIMEOUT"
	signOutTimeoutEnvVar = "SIGN_OUT_TIMEOUT"
)

type Backend struct{}

var _ BackendConfig = Backend{}

// GetAPIURL returns the course backend base URL without a trailing slash
func (Backend) GetAPIURL() string {
	return strings.TrimRight(GetEnv(apiURLEnvVar, "http://localhost:3009"), "/")
}

func (Backend) GetRequestTimeout() time.Duration {
	return GetEnvDuration(requestTimeoutEnvVar, 10*time.Second)
}

// GetSignOutTimeout bounds the best-effort sign-out notification sent to the backend
func (Backend) GetSignOutTimeout() time.Duration {
	return GetEnvDuration(signOutTimeoutEnvVar, 3*time.Second)
}
