package cornucopia

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds everything [Compile] needs to run the pipeline. Build one
// with [NewConfig] and [Option] functions, or load it from a YAML file
// with [LoadConfigFile].
type Config struct {
	// QueriesDir is the flat directory of *.sql query files.
	QueriesDir string `yaml:"queries_dir"`
	// DSN is the PostgreSQL connection string used for introspection.
	DSN string `yaml:"dsn"`
	// Schemas, if set, becomes the connection's search_path before each
	// query is prepared and each catalog type is fetched. Empty leaves
	// the connection's own search_path unchanged.
	Schemas []string `yaml:"schemas"`
	// MigrationsDir, if set, is run via the migrate package before
	// introspection, so newly-added columns are visible to the preparer.
	MigrationsDir string `yaml:"migrations_dir"`
}

// Option configures a Config. Mirrors the functional-options shape used
// throughout this codebase's ambient configuration layer.
type Option func(*Config) error

// NewConfig builds a Config from options, returning the first error
// encountered from any option.
func NewConfig(opts ...Option) (Config, error) {
	var cfg Config
	if err := cfg.Apply(opts...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Apply applies options in order, stopping at the first error.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// WithQueriesDir sets the directory [reader.ReadDir] walks.
func WithQueriesDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("QueriesDir", dir, "queries directory cannot be empty")
		}
		c.QueriesDir = dir
		return nil
	}
}

// WithDSN sets the PostgreSQL connection string used to prepare and
// introspect queries.
func WithDSN(dsn string) Option {
	return func(c *Config) error {
		if dsn == "" {
			return NewConfigError("DSN", dsn, "dsn cannot be empty")
		}
		c.DSN = dsn
		return nil
	}
}

// WithSchemas appends schemas to the search_path applied before each
// prepare and catalog lookup.
func WithSchemas(schemas ...string) Option {
	return func(c *Config) error {
		c.Schemas = append(c.Schemas, schemas...)
		return nil
	}
}

// WithMigrationsDir sets a migrations directory to apply before
// introspection.
func WithMigrationsDir(dir string) Option {
	return func(c *Config) error {
		c.MigrationsDir = dir
		return nil
	}
}

// ConfigError reports a bad option value. Grounded on the same
// constructor-per-error-kind convention as the rest of this package.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cornucopia: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
}

// NewConfigError constructs a ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// LoadConfigFile reads a YAML config file (the declarative counterpart
// to functional options, for checked-in project configuration).
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, NewIOError("read_file", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("cornucopia: parse config %q: %w", path, err)
	}
	return cfg, nil
}
