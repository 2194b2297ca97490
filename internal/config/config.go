// Package config loads the session configuration spec.md §3/§6 describes,
// layering defaults, an optional YAML file, BROWSERLOOP_-prefixed
// environment variables, and CLI flags via github.com/spf13/viper. A
// Config is immutable once Load or New returns.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kamilturan/browserloop/internal/browser"
)

// Config is the session's immutable configuration, covering spec.md §3's
// seven documented fields plus the ambient fields needed to run the loops
// in process.
type Config struct {
	Environment        browser.Environment
	ConnectURL         string
	Headless           bool
	Verbosity          int
	DebugDOM           bool
	DOMSettleTimeout   time.Duration
	EnableCaching      bool
	ModelName          string
	OpenAIAPIKey       string
	LogLevel           string
	LogFile            string
	MetricsAddr        string
}

// Option mutates a Config under construction; used by New for in-process
// callers that don't want to go through viper/flags.
type Option func(*Config)

func defaults() Config {
	return Config{
		Environment:      browser.Local,
		Headless:         true,
		Verbosity:        0,
		DOMSettleTimeout: browser.DefaultSettleTimeout,
		EnableCaching:    true,
		ModelName:        "gpt-4o-mini",
		LogLevel:         "info",
		MetricsAddr:      ":9090",
	}
}

// New builds a Config from defaults plus functional options, skipping the
// file/env/flag layering entirely. Intended for library callers embedding
// a Session directly.
func New(opts ...Option) Config {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func WithEnvironment(env browser.Environment) Option { return func(c *Config) { c.Environment = env } }
func WithConnectURL(url string) Option               { return func(c *Config) { c.ConnectURL = url } }
func WithHeadless(headless bool) Option              { return func(c *Config) { c.Headless = headless } }
func WithVerbosity(v int) Option                     { return func(c *Config) { c.Verbosity = v } }
func WithModelName(model string) Option              { return func(c *Config) { c.ModelName = model } }
func WithOpenAIAPIKey(key string) Option             { return func(c *Config) { c.OpenAIAPIKey = key } }

// Load builds a Config from, in increasing precedence: built-in defaults,
// an optional YAML file at configFile (skipped silently if empty or
// missing), environment variables prefixed BROWSERLOOP_, and flags, the
// way the teacher's sibling CLI repo layers viper.
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	def := defaults()
	v.SetDefault("environment", string(def.Environment))
	v.SetDefault("headless", def.Headless)
	v.SetDefault("verbosity", def.Verbosity)
	v.SetDefault("domSettleTimeoutMs", def.DOMSettleTimeout.Milliseconds())
	v.SetDefault("enableCaching", def.EnableCaching)
	v.SetDefault("modelName", def.ModelName)
	v.SetDefault("logLevel", def.LogLevel)
	v.SetDefault("metricsAddr", def.MetricsAddr)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("BROWSERLOOP")
	v.AutomaticEnv()

	if flags != nil {
		bindings := map[string]string{
			"env":         "environment",
			"verbose":     "verbosity",
			"model":       "modelName",
			"headless":    "headless",
			"connect-url": "connectUrl",
		}
		for flagName, key := range bindings {
			if flag := flags.Lookup(flagName); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return Config{}, fmt.Errorf("bind flag %q: %w", flagName, err)
				}
			}
		}
	}

	cfg := Config{
		Environment:      browser.Environment(v.GetString("environment")),
		ConnectURL:       v.GetString("connectUrl"),
		Headless:         v.GetBool("headless"),
		Verbosity:        v.GetInt("verbosity"),
		DebugDOM:         v.GetBool("debugDom"),
		DOMSettleTimeout: time.Duration(v.GetInt64("domSettleTimeoutMs")) * time.Millisecond,
		EnableCaching:    v.GetBool("enableCaching"),
		ModelName:        v.GetString("modelName"),
		OpenAIAPIKey:     v.GetString("openaiApiKey"),
		LogLevel:         v.GetString("logLevel"),
		LogFile:          v.GetString("logFile"),
		MetricsAddr:      v.GetString("metricsAddr"),
	}

	if cfg.Environment == browser.Remote && cfg.ConnectURL == "" {
		return Config{}, fmt.Errorf("config: environment is REMOTE but connectUrl is not set")
	}

	return cfg, nil
}
