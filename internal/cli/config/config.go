package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conduit-lang/contractabi/internal/logging"
	"github.com/conduit-lang/contractabi/internal/store"
	"github.com/conduit-lang/contractabi/internal/web/auth"
	"github.com/conduit-lang/contractabi/pkg/abi"
)

// FileName is the optional project configuration file, without extension
const FileName = "contractabi"

// EnvPrefix prefixes every environment override, e.g. CONTRACTABI_SERVE_ADDR
const EnvPrefix = "CONTRACTABI"

// Config represents the contractabi configuration
type Config struct {
	Build     BuildConfig     `mapstructure:"build"`
	Selectors SelectorsConfig `mapstructure:"selectors"`
	Serve     ServeConfig     `mapstructure:"serve"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
}

// BuildConfig represents build configuration
type BuildConfig struct {
	// Output is the manifest path. Empty means next to the input file.
	Output   string `mapstructure:"output"`
	Compress bool   `mapstructure:"compress"`
	Expanded bool   `mapstructure:"expanded"`
}

// SelectorsConfig controls selector derivation for entries without one
type SelectorsConfig struct {
	Derive bool   `mapstructure:"derive"`
	Hash   string `mapstructure:"hash"`
}

// ServeConfig represents explorer server configuration
type ServeConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	// AuthSecret signs admin tokens. Empty disables the admin routes.
	AuthSecret string        `mapstructure:"auth_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// StoreConfig addresses the manifest store
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Prefix string `mapstructure:"prefix"`
}

// StoreOptions converts the section for store.Open
func (c *Config) StoreOptions() store.Config {
	return store.Config{Driver: c.Store.Driver, DSN: c.Store.DSN, Prefix: c.Store.Prefix}
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SelectorHash returns the validated hash scheme
func (c *Config) SelectorHash() abi.SelectorHash {
	h, err := abi.ParseSelectorHash(c.Selectors.Hash)
	if err != nil {
		return abi.HashBlake2b
	}
	return h
}

// Loader layers configuration sources. Precedence from low to high:
// defaults, contractabi.yml, .env, environment, bound flags.
type Loader struct {
	dir string
	v   *viper.Viper
}

// NewLoader reads configuration from dir
func NewLoader(dir string) *Loader {
	v := viper.New()

	v.SetDefault("build.output", "")
	v.SetDefault("build.compress", false)
	v.SetDefault("build.expanded", false)
	v.SetDefault("selectors.derive", false)
	v.SetDefault("selectors.hash", string(abi.HashBlake2b))
	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.cors_origins", []string{})
	v.SetDefault("serve.auth_secret", "")
	v.SetDefault("serve.token_ttl", time.Hour)
	v.SetDefault("store.driver", store.DriverSQLite)
	v.SetDefault("store.dsn", "contractabi.db")
	v.SetDefault("store.prefix", store.DefaultPrefix)
	v.SetDefault("log.level", "warn")

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{dir: dir, v: v}
}

// BindFlag makes flag override key when the flag is set on the command line
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for config key %s", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads every source and validates the result
func (l *Loader) Load() (*Config, error) {
	// .env never overrides variables already set in the environment
	if err := godotenv.Load(filepath.Join(l.dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	if config.Store.Driver == store.DriverSQLite && isRelativePath(config.Store.DSN) {
		config.Store.DSN = filepath.Join(l.dir, config.Store.DSN)
	}
	return &config, nil
}

// ConfigFile returns the config file in use, or "" when none was found
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Load loads the configuration of the current directory without flags
func Load() (*Config, error) {
	return NewLoader(".").Load()
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if _, err := abi.ParseSelectorHash(cfg.Selectors.Hash); err != nil {
		return fmt.Errorf("selectors.hash: %w", err)
	}
	if !strings.EqualFold(cfg.Log.Level, logging.Off) {
		if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	if strings.TrimSpace(cfg.Serve.Addr) == "" {
		return fmt.Errorf("serve.addr must not be empty")
	}
	if cfg.Serve.AuthSecret != "" && len(cfg.Serve.AuthSecret) < auth.MinSecretLength {
		return fmt.Errorf("serve.auth_secret must be at least %d bytes", auth.MinSecretLength)
	}
	if cfg.Serve.TokenTTL <= 0 {
		return fmt.Errorf("serve.token_ttl must be positive")
	}
	if !slices.Contains(store.Drivers, cfg.Store.Driver) {
		return fmt.Errorf("store.driver: unknown driver %q (expected one of %s)", cfg.Store.Driver, strings.Join(store.Drivers, ", "))
	}
	if strings.TrimSpace(cfg.Store.DSN) == "" {
		return fmt.Errorf("store.dsn must not be empty")
	}
	return nil
}

// isRelativePath reports whether a sqlite dsn is a plain relative file,
// not ":memory:" or a file: URI.
func isRelativePath(dsn string) bool {
	return dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") && !filepath.IsAbs(dsn)
}
