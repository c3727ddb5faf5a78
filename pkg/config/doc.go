// Package config loads configuration structs from environment variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`:
//
//   - Loads values from one or multiple `.env` files (the default `.env` in the
//     current working directory is read once, lazily, on first Load).
//   - Parses the environment into any Go struct using field tags.
//   - Exposes helpers that panic on failure (`MustLoadEnv`, `MustLoad`) for
//     command line entry points where configuration is critical.
//
// # Usage
//
//	type Config struct {
//	    APIKey   string        `env:"API_KEY,required"`
//	    CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"30s"`
//	}
//
//	var cfg Config
//	if err := config.LoadPrefixed("FLAGLITE_", &cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// # Error Handling
//
// The package defines sentinel errors that can be compared with `errors.Is`:
//
//   - `ErrParsingConfig`  – failed to parse env vars into struct.
//   - `ErrLoadingEnvFile` – a requested .env file could not be read.
//   - `ErrNilPointer`     – nil pointer passed to `Load`/`MustLoad`.
package config
