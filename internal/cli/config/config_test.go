package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/contractabi/internal/store"
	"github.com/conduit-lang/contractabi/pkg/abi"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Build.Output)
	assert.False(t, cfg.Build.Compress)
	assert.False(t, cfg.Selectors.Derive)
	assert.Equal(t, "blake2b", cfg.Selectors.Hash)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, abi.HashBlake2b, cfg.SelectorHash())
	assert.Equal(t, "", cfg.Serve.AuthSecret)
	assert.Equal(t, time.Hour, cfg.Serve.TokenTTL)
	assert.Equal(t, store.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, store.DefaultPrefix, cfg.Store.Prefix)
}

func TestLoad_StoreDSN(t *testing.T) {
	dir := t.TempDir()

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "contractabi.db"), cfg.Store.DSN, "relative sqlite paths resolve against the config dir")
	assert.Equal(t, store.Config{Driver: store.DriverSQLite, DSN: cfg.Store.DSN, Prefix: store.DefaultPrefix}, cfg.StoreOptions())

	for _, dsn := range []string{":memory:", "file:test.db?cache=shared", "/var/lib/abi.db"} {
		writeConfig(t, dir, "contractabi.yml", "store:\n  dsn: \""+dsn+"\"\n")
		cfg, err := NewLoader(dir).Load()
		require.NoError(t, err)
		assert.Equal(t, dsn, cfg.Store.DSN)
	}

	t.Setenv("CONTRACTABI_STORE_DRIVER", "pgx")
	t.Setenv("CONTRACTABI_STORE_DSN", "postgres://localhost/abi")
	t.Setenv("CONTRACTABI_SERVE_TOKEN_TTL", "15m")
	cfg, err = NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/abi", cfg.Store.DSN)
	assert.Equal(t, 15*time.Minute, cfg.Serve.TokenTTL)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "contractabi.yml", `
build:
  output: dist/manifest.json
  compress: true
selectors:
  derive: true
  hash: keccak
serve:
  addr: 127.0.0.1:9000
  cors_origins: ["https://explorer.dev"]
log:
  level: debug
`)

	loader := NewLoader(dir)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "dist/manifest.json", cfg.Build.Output)
	assert.True(t, cfg.Build.Compress)
	assert.True(t, cfg.Selectors.Derive)
	assert.Equal(t, abi.HashKeccak, cfg.SelectorHash())
	assert.Equal(t, "127.0.0.1:9000", cfg.Serve.Addr)
	assert.Equal(t, []string{"https://explorer.dev"}, cfg.Serve.CORSOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Contains(t, loader.ConfigFile(), "contractabi.yml")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "contractabi.yml", "serve:\n  addr: :7000\n")
	t.Setenv("CONTRACTABI_SERVE_ADDR", ":7100")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, ":7100", cfg.Serve.Addr)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".env", "CONTRACTABI_LOG_LEVEL=error\n")
	t.Cleanup(func() { os.Unsetenv("CONTRACTABI_LOG_LEVEL") })

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_FlagOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "contractabi.yml", "selectors:\n  hash: keccak\n")

	flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
	flags.String("selector-hash", "blake2b", "")
	require.NoError(t, flags.Parse([]string{"--selector-hash=blake2b"}))

	loader := NewLoader(dir)
	require.NoError(t, loader.BindFlag("selectors.hash", flags.Lookup("selector-hash")))
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "blake2b", cfg.Selectors.Hash)

	assert.Error(t, loader.BindFlag("build.output", flags.Lookup("missing")))
}

func TestLoad_UnsetFlagKeepsFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "contractabi.yml", "selectors:\n  hash: keccak\n")

	flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
	flags.String("selector-hash", "blake2b", "")
	require.NoError(t, flags.Parse(nil))

	loader := NewLoader(dir)
	require.NoError(t, loader.BindFlag("selectors.hash", flags.Lookup("selector-hash")))
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "keccak", cfg.Selectors.Hash)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad hash", "selectors:\n  hash: sha1\n", "selectors.hash"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"empty addr", "serve:\n  addr: \"\"\n", "serve.addr"},
		{"malformed", "build: [\n", "failed to read config file"},
		{"off is valid", "log:\n  level: off\n", ""},
		{"short secret", "serve:\n  auth_secret: abc\n", "serve.auth_secret"},
		{"zero ttl", "serve:\n  token_ttl: 0s\n", "serve.token_ttl"},
		{"bad driver", "store:\n  driver: mongodb\n", "store.driver"},
		{"empty dsn", "store:\n  dsn: \"\"\n", "store.dsn"},
		{"redis", "store:\n  driver: redis\n  dsn: redis://localhost:6379/0\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "contractabi.yml", tt.content)
			_, err := NewLoader(dir).Load()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
