package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8082", cfg.Addr)
	assert.Equal(t, 2<<20, cfg.RequestBufferSize)
	assert.Equal(t, 4<<20, cfg.ResponseBufferSize)
	assert.Equal(t, 0, cfg.MaxConns)
	assert.Equal(t, "regexp", cfg.Parser)
	assert.False(t, cfg.CaseInsensitive)
	assert.False(t, cfg.Contain)
	require.NoError(t, cfg.Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	testChdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)
	path := writeFile(t, dir, "staticd.toml", `
addr = "127.0.0.1:9000"
read_timeout = "5s"
max_conns = 64
parser = "tokenizer"
case_insensitive = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 64, cfg.MaxConns)
	assert.Equal(t, "tokenizer", cfg.Parser)
	assert.True(t, cfg.CaseInsensitive)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)
	path := writeFile(t, dir, "staticd.yaml", `
addr: ":8181"
write_timeout: 1m
contain: true
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8181", cfg.Addr)
	assert.Equal(t, time.Minute, cfg.WriteTimeout)
	assert.True(t, cfg.Contain)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)

	_, err := Load(writeFile(t, dir, "a.toml", "root = \"/srv\"\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(writeFile(t, dir, "a.yml", "root: /srv\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)

	_, err := Load(writeFile(t, dir, "a.json", "{}"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadMissingFile(t *testing.T) {
	testChdir(t, t.TempDir())

	_, err := Load("does-not-exist.toml")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)
	path := writeFile(t, dir, "staticd.toml", "addr = \":9000\"\nmax_conns = 8\n")

	t.Setenv("STATICD_ADDR", ":9100")
	t.Setenv("STATICD_READ_TIMEOUT", "250ms")
	t.Setenv("STATICD_CONTAIN", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.ReadTimeout)
	assert.Equal(t, 8, cfg.MaxConns)
	assert.True(t, cfg.Contain)
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)
	writeFile(t, dir, ".env", "STATICD_ADDR=:7000\nSTATICD_MAX_CONNS=3\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 3, cfg.MaxConns)

	// The process environment wins over .env
	t.Setenv("STATICD_ADDR", ":7001")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.Addr)
}

func TestBadEnvValues(t *testing.T) {
	testChdir(t, t.TempDir())

	for key, value := range map[string]string{
		"STATICD_READ_TIMEOUT": "soon",
		"STATICD_MAX_CONNS":    "many",
		"STATICD_CONTAIN":      "perhaps",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load("")
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty addr":       func(c *Config) { c.Addr = "" },
		"negative timeout": func(c *Config) { c.ReadTimeout = -time.Second },
		"negative conns":   func(c *Config) { c.MaxConns = -1 },
		"no request buf":   func(c *Config) { c.RequestBufferSize = 0 },
		"tiny response":    func(c *Config) { c.ResponseBufferSize = 16 },
		"unknown parser":   func(c *Config) { c.Parser = "peg" },
		"unknown level":    func(c *Config) { c.LogLevel = "chatty" },
	}

	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, name)
	}
}

// testChdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
