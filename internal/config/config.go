// Package config loads the catalog server configuration from defaults, an
// optional .env file, the process environment and explicit overrides.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile         = ".env"
	defaultAddr            = ":8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLogLevel        = "info"
	defaultMaxDepth        = 12
	defaultMaxParallelism  = 10
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Catalog CatalogConfig
	GraphQL GraphQLConfig
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string
}

// CatalogConfig selects the seed data. An empty SeedFile uses the bundled
// sample catalog.
type CatalogConfig struct {
	SeedFile string
}

// GraphQLConfig bounds query execution.
type GraphQLConfig struct {
	MaxDepth       int
	MaxParallelism int
}

// ValidationError is returned when configuration values are invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	return append([]string(nil), e.fields...)
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path. An empty path disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values that take precedence over the
// environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv stops Load from reading the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

type lookupFunc func(key string) (string, bool)

// Load assembles the configuration. Precedence, lowest first: defaults,
// .env file, process environment, WithEnvMap values.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if value, ok := options.envMap[key]; ok {
			return value, true
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		value, ok := dotEnv[key]
		return value, ok
	}

	var invalid []string
	durationField := func(key string, def time.Duration) time.Duration {
		d, err := durationWithDefault(lookup, key, def)
		if err != nil {
			invalid = append(invalid, key)
		}
		return d
	}
	intField := func(key string, def int) int {
		n, err := intWithDefault(lookup, key, def)
		if err != nil {
			invalid = append(invalid, key)
		}
		return n
	}

	cfg := Config{
		Server: ServerConfig{
			Addr:            stringWithDefault(lookup, "CATALOG_SERVER_ADDR", defaultAddr),
			ReadTimeout:     durationField("CATALOG_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    durationField("CATALOG_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     durationField("CATALOG_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: durationField("CATALOG_SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Log: LogConfig{
			Level: strings.ToLower(stringWithDefault(lookup, "CATALOG_LOG_LEVEL", defaultLogLevel)),
		},
		Catalog: CatalogConfig{
			SeedFile: stringWithDefault(lookup, "CATALOG_SEED_FILE", ""),
		},
		GraphQL: GraphQLConfig{
			MaxDepth:       intField("CATALOG_GRAPHQL_MAX_DEPTH", defaultMaxDepth),
			MaxParallelism: intField("CATALOG_GRAPHQL_MAX_PARALLELISM", defaultMaxParallelism),
		},
	}

	if cfg.GraphQL.MaxDepth < 0 {
		invalid = append(invalid, "CATALOG_GRAPHQL_MAX_DEPTH")
	}
	if cfg.GraphQL.MaxParallelism < 1 {
		invalid = append(invalid, "CATALOG_GRAPHQL_MAX_PARALLELISM")
	}
	if cfg.Server.Addr == "" {
		invalid = append(invalid, "CATALOG_SERVER_ADDR")
	}
	if len(invalid) > 0 {
		return Config{}, &ValidationError{fields: invalid}
	}
	return cfg, nil
}

func stringWithDefault(lookup lookupFunc, key, def string) string {
	if value, ok := lookup(key); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return def
}

func durationWithDefault(lookup lookupFunc, key string, def time.Duration) (time.Duration, error) {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d < 0 {
		return def, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	return d, nil
}

func intWithDefault(lookup lookupFunc, key string, def int) (int, error) {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}

// loadDotEnv reads KEY=VALUE lines. A missing file is not an error.
func loadDotEnv(path string) (map[string]string, error) {
	values := map[string]string{}
	if path == "" {
		return values, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("open env file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key != "" {
			values[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}
