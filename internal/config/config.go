package config

import "time"

type Config interface {
	EnvConfig
	BackendConfig
	CorsConfig
	SecurityConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetUIDir() string
}

// BackendConfig describes the course REST backend the gateway talks to.
type BackendConfig interface {
	GetAPIURL() string
	GetRequestTimeout() time.Duration
	GetSignOutTimeout() time.Duration
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

type mainConfig struct {
	EnvVars
	Backend
	Cors
	Security
	Store
}

func New() Config {
	return mainConfig{}
}
