package rediscache

import "time"

// Config describes the Redis connection used as a shared evaluation cache.
type Config struct {
	// ConnectionURL in the format "redis://:password@localhost:6379/0".
	// Empty disables the Redis store.
	ConnectionURL string `env:"FLAGLITE_REDIS_URL"`
	// KeyPrefix namespaces every cached evaluation.
	KeyPrefix string `env:"FLAGLITE_REDIS_PREFIX" envDefault:"flaglite:"`
	// RetryAttempts is the number of connection attempts.
	RetryAttempts int `env:"FLAGLITE_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	// RetryInterval is the delay between connection attempts.
	RetryInterval time.Duration `env:"FLAGLITE_REDIS_RETRY_INTERVAL" envDefault:"1s"`
	// ConnectTimeout bounds the whole connection procedure.
	ConnectTimeout time.Duration `env:"FLAGLITE_REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
	// ScanBatchSize is the COUNT hint used by Clear.
	ScanBatchSize int `env:"FLAGLITE_REDIS_SCAN_BATCH_SIZE" envDefault:"1000"`
}
