package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// Load parses environment variables into the provided configuration struct
// based on its `env` and `envDefault` field tags.
//
// The default .env file in the working directory is read once per process,
// before the first parse. Variables already present in the environment win
// over values from the file. Each call parses afresh, so changes to the
// environment are picked up by later calls.
//
// Example:
//
//	type ClientConfig struct {
//		APIKey  string        `env:"FLAGLITE_API_KEY,required"`
//		Timeout time.Duration `env:"FLAGLITE_TIMEOUT" envDefault:"5s"`
//	}
//
//	var cfg ClientConfig
//	if err := config.Load(&cfg); err != nil {
//		// Handle error
//	}
func Load[T any](v *T) error {
	return load(v, env.Options{})
}

// LoadPrefixed works like Load but prepends prefix to every variable name,
// so `env:"TIMEOUT"` with prefix "FLAGLITE_" reads FLAGLITE_TIMEOUT.
func LoadPrefixed[T any](prefix string, v *T) error {
	return load(v, env.Options{Prefix: prefix})
}

// MustLoad works like Load but panics if configuration loading fails.
// This is useful for configurations that are required for the application to start.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

// LoadEnv reads the given .env files into the process environment without
// overriding variables that are already set. With no arguments it reads .env
// from the working directory. Earlier files take precedence over later ones.
func LoadEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// MustLoadEnv works like LoadEnv but panics on failure.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(fmt.Sprintf("Failed to load env files: %v", err))
	}
}

func load[T any](v *T, opts env.Options) error {
	defaultEnvLoaded.Do(func() {
		// Ignore errors - the .env file might not exist and that's ok
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	if err := env.ParseWithOptions(v, opts); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}
