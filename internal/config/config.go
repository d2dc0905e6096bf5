// Package config holds the server settings. The zero-argument defaults
// reproduce the historical behaviour: port 8082 on every interface,
// serving the working directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Brownie44l1/staticd/internal/buffer"
)

const (
	DefaultPort = 8082

	envPrefix  = "STATICD_"
	dotEnvFile = ".env"

	// Smallest response buffer that still fits the fixed error responses
	minResponseBuffer = 128
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Addr         string        `toml:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout" yaml:"write_timeout"`
	MaxConns     int           `toml:"max_conns" yaml:"max_conns"`

	RequestBufferSize  int `toml:"request_buffer_size" yaml:"request_buffer_size"`
	ResponseBufferSize int `toml:"response_buffer_size" yaml:"response_buffer_size"`

	// Parser selects the request line parser: "regexp" or "tokenizer"
	Parser string `toml:"parser" yaml:"parser"`
	// CaseInsensitive retries a missing file with a case-folded name match
	CaseInsensitive bool `toml:"case_insensitive" yaml:"case_insensitive"`
	// Contain keeps request paths inside the working directory
	Contain bool `toml:"contain" yaml:"contain"`

	LogLevel string `toml:"log_level" yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Addr:               fmt.Sprintf(":%d", DefaultPort),
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		RequestBufferSize:  buffer.RequestSize,
		ResponseBufferSize: buffer.ResponseSize,
		Parser:             "regexp",
		LogLevel:           "info",
	}
}

// Load starts from Default, applies the config file at path (if any),
// then STATICD_* variables from the environment or a .env file in the
// working directory. The process environment wins over .env.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}

	dotenv, err := godotenv.Read(dotEnvFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", dotEnvFile, err)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), c)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("%w: %s: unknown keys %v", ErrInvalidConfig, path, undecoded)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	default:
		return fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, filepath.Ext(path))
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	str("ADDR", &c.Addr)
	str("PARSER", &c.Parser)
	str("LOG_LEVEL", &c.LogLevel)

	durations := map[string]*time.Duration{
		"READ_TIMEOUT":  &c.ReadTimeout,
		"WRITE_TIMEOUT": &c.WriteTimeout,
	}
	for name, dst := range durations {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, envPrefix, name, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"MAX_CONNS":            &c.MaxConns,
		"REQUEST_BUFFER_SIZE":  &c.RequestBufferSize,
		"RESPONSE_BUFFER_SIZE": &c.ResponseBufferSize,
	}
	for name, dst := range ints {
		if v, ok := lookup(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, envPrefix, name, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"CASE_INSENSITIVE": &c.CaseInsensitive,
		"CONTAIN":          &c.Contain,
	}
	for name, dst := range bools {
		if v, ok := lookup(envPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, envPrefix, name, err)
			}
			*dst = b
		}
	}
	return nil
}

func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr is empty", ErrInvalidConfig)
	case c.ReadTimeout < 0, c.WriteTimeout < 0:
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	case c.MaxConns < 0:
		return fmt.Errorf("%w: max_conns must be >= 0", ErrInvalidConfig)
	case c.RequestBufferSize <= 0:
		return fmt.Errorf("%w: request_buffer_size must be > 0", ErrInvalidConfig)
	case c.ResponseBufferSize < minResponseBuffer:
		return fmt.Errorf("%w: response_buffer_size must be >= %d", ErrInvalidConfig, minResponseBuffer)
	}

	switch c.Parser {
	case "regexp", "tokenizer":
	default:
		return fmt.Errorf("%w: unknown parser %q", ErrInvalidConfig, c.Parser)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
