package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up from the working directory upwards.
const FileName = "directify.yaml"

const (
	defaultPrefix       = "d:"
	defaultOutputSuffix = ".gen"
	defaultDebounceMs   = 200
	defaultListen       = "127.0.0.1:4327"
	defaultLogLevel     = "info"
)

var builtinDirectives = []string{"if", "elseif", "else", "switch", "case", "default", "for"}

type Config struct {
	// Prefix marks directive attributes, e.g. d:if.
	Prefix     string   `yaml:"prefix"`
	Extensions []string `yaml:"extensions"`

	Output struct {
		// Suffix is inserted before the extension: page.astro -> page.gen.astro.
		Suffix string `yaml:"suffix"`
		// Dir mirrors generated files under this directory instead of next to the source.
		Dir string `yaml:"dir"`
	} `yaml:"output"`

	Directives struct {
		// Disabled built-in directives are stripped without effect.
		Disabled []string `yaml:"disabled"`
	} `yaml:"directives"`

	Cache struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"cache"`

	Watch struct {
		DebounceMs int `yaml:"debounce_ms"`
	} `yaml:"watch"`

	Serve struct {
		Listen string `yaml:"listen"`
	} `yaml:"serve"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	Concurrency int `yaml:"concurrency"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg
}

func Load(path string) (*Config, error) {
	// #nosec G304 -- path is provided by trusted config/flag.
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// LoadIfExists loads path, or returns Default when it does not exist.
func LoadIfExists(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// DirectiveDisabled reports whether the built-in directive name is turned off.
func (c *Config) DirectiveDisabled(name string) bool {
	for _, d := range c.Directives.Disabled {
		if d == name {
			return true
		}
	}
	return false
}

func (c *Config) Quiet() bool { return c.Logging.Level == "quiet" }

func (c *Config) Debug() bool { return c.Logging.Level == "debug" }

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Prefix) == "" {
		cfg.Prefix = defaultPrefix
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".astro"}
	}
	for i, ext := range cfg.Extensions {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Extensions[i] = ext
	}
	if strings.TrimSpace(cfg.Output.Suffix) == "" {
		cfg.Output.Suffix = defaultOutputSuffix
	}
	if cfg.Watch.DebounceMs <= 0 {
		cfg.Watch.DebounceMs = defaultDebounceMs
	}
	if strings.TrimSpace(cfg.Serve.Listen) == "" {
		cfg.Serve.Listen = defaultListen
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("DIRECTIFY_PREFIX")); v != "" {
		cfg.Prefix = v
	}
	if v := strings.TrimSpace(os.Getenv("DIRECTIFY_OUTPUT_DIR")); v != "" {
		cfg.Output.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("DIRECTIFY_LISTEN")); v != "" {
		cfg.Serve.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("DIRECTIFY_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("DIRECTIFY_CACHE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Cache.Enabled = &b
		}
	}
}

func validate(cfg *Config) error {
	if strings.ContainsAny(cfg.Prefix, " \t\r\n=<>\"'{}") {
		return fmt.Errorf("invalid prefix %q", cfg.Prefix)
	}
	for _, ext := range cfg.Extensions {
		if ext == "" || ext == "." {
			return errors.New("extensions must not be empty")
		}
	}
	if strings.ContainsAny(cfg.Output.Suffix, `/\`) {
		return fmt.Errorf("invalid output.suffix %q", cfg.Output.Suffix)
	}
	switch cfg.Logging.Level {
	case "quiet", "info", "debug":
	default:
		return fmt.Errorf("invalid logging.level %q (supported: quiet, info, debug)", cfg.Logging.Level)
	}
	for _, name := range cfg.Directives.Disabled {
		if !isBuiltin(name) {
			return fmt.Errorf("directives.disabled: unknown directive %q", name)
		}
	}
	return nil
}

func isBuiltin(name string) bool {
	for _, b := range builtinDirectives {
		if b == name {
			return true
		}
	}
	return false
}
