package config

type StoreConfig interface {
	GetRedisURL() string
}

type Store struct{}

var _ StoreConfig = Store{}

// GetRedisURL returns the Redis URL for the shared session cache. Empty keeps sessions in memory.
func (Store) GetRedisURL() string {
	return GetEnv("REDIS_URL", "")
}
