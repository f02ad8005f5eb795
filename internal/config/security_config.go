package config

type SecurityConfig interface {
	GetSecureCookies() bool
	GetEnableRateLimiting() bool
	GetSignInRate() string
	GetTrustProxyHeaders() bool
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSecureCookies controls the Secure flag on cookies the gateway mints itself
func (Security) GetSecureCookies() bool {
	return GetEnvBool("SECURE_COOKIES", false)
}

func (Security) GetEnableRateLimiting() bool {
	return GetEnvBool("ENABLE_RATE_LIMITING", true)
}

// GetSignInRate is a ulule/limiter formatted rate, e.g. "10-M"
func (Security) GetSignInRate() string {
	return GetEnv("SIGN_IN_RATE", "10-M")
}

// GetTrustProxyHeaders keys rate limits on X-Forwarded-For / X-Real-IP. Only
// enable it behind a proxy that overwrites those headers.
func (Security) GetTrustProxyHeaders() bool {
	return GetEnvBool("TRUST_PROXY_HEADERS", false)
}
