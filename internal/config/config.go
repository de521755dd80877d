// Package config provides configuration management for plxdemo.
//
// This package handles loading configuration from multiple sources:
// - Configuration files (YAML, JSON, TOML)
// - Environment variables
// - Command line flags
// - Default values
//
// Configuration is loaded in order of precedence (highest to lowest):
// 1. Command line flags
// 2. Environment variables
// 3. Configuration file
// 4. Default values
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete plxdemo configuration
type Config struct {
	Loop        LoopConfig        `mapstructure:"loop" yaml:"loop"`
	Parser      ParserConfig      `mapstructure:"parser" yaml:"parser"`
	Days        DaysConfig        `mapstructure:"days" yaml:"days"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Development DevelopmentConfig `mapstructure:"development" yaml:"development"`
}

// LoopConfig contains run loop configuration
type LoopConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval" yaml:"tick_interval"`
	Message      string        `mapstructure:"message" yaml:"message"`
	// Signals maps a signal kind (interrupt, terminate, hangup) to the
	// action taken when it is delivered (ignore, stop).
	Signals map[string]string `mapstructure:"signals" yaml:"signals"`
}

// ParserConfig contains exercise parser configuration
type ParserConfig struct {
	Kind         string `mapstructure:"kind" yaml:"kind"`
	Fallback     bool   `mapstructure:"fallback" yaml:"fallback"`
	StubTitle    string `mapstructure:"stub_title" yaml:"stub_title"`
	StubSolution string `mapstructure:"stub_solution" yaml:"stub_solution"`
}

// DaysConfig contains day lookup configuration
type DaysConfig struct {
	Language string `mapstructure:"language" yaml:"language"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	OutputFile string `mapstructure:"output_file" yaml:"output_file"`
	Verbose    bool   `mapstructure:"verbose" yaml:"verbose"`
}

// DevelopmentConfig contains development and debugging options
type DevelopmentConfig struct {
	UnsafeDemos bool `mapstructure:"unsafe_demos" yaml:"unsafe_demos"`
	DebugMode   bool `mapstructure:"debug_mode" yaml:"debug_mode"`
}

// Accepted values, shared with validation and the CLI help text.
var (
	SignalKinds   = []string{"interrupt", "terminate", "hangup"}
	SignalActions = []string{"ignore", "stop"}
	ParserKinds   = []string{"toml", "yaml", "stub"}
	Languages     = []string{"fr", "en"}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Loop: LoopConfig{
			TickInterval: 1 * time.Second,
			Message:      "Hello",
			Signals: map[string]string{
				"interrupt": "ignore",
				"terminate": "ignore",
			},
		},
		Parser: ParserConfig{
			Kind:         "toml",
			Fallback:     true,
			StubTitle:    "Hello world",
			StubSolution: `printf("Hello world\n");`,
		},
		Days: DaysConfig{
			Language: "fr",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			OutputFile: "",
			Verbose:    false,
		},
		Development: DevelopmentConfig{
			UnsafeDemos: false,
			DebugMode:   false,
		},
	}
}

// LoadConfig loads configuration from various sources
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// The prefix must be set before setDefaults binds env names.
	v.SetEnvPrefix("PLXDEMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// No SetConfigType: the extension of whichever file is found picks
		// the decoder, so every name in GetConfigPaths is read correctly.
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.plxdemo")
		v.AddConfigPath("/etc/plxdemo")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Search-path misses fall back to defaults; an explicit path must exist.
			if configFile != "" {
				return nil, fmt.Errorf("config file not found: %s", configFile)
			}
		} else if configFile != "" && os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configFile)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("loop.tick_interval", defaults.Loop.TickInterval)
	v.SetDefault("loop.message", defaults.Loop.Message)
	// One default per kind. A map default would be replaced wholesale by a
	// file's loop.signals section and would hide the leaf keys from
	// AutomaticEnv.
	for _, kind := range sortedKeys(defaults.Loop.Signals) {
		v.SetDefault("loop.signals."+kind, defaults.Loop.Signals[kind])
	}
	for _, kind := range SignalKinds {
		if _, ok := defaults.Loop.Signals[kind]; !ok {
			_ = v.BindEnv("loop.signals." + kind)
		}
	}

	v.SetDefault("parser.kind", defaults.Parser.Kind)
	v.SetDefault("parser.fallback", defaults.Parser.Fallback)
	v.SetDefault("parser.stub_title", defaults.Parser.StubTitle)
	v.SetDefault("parser.stub_solution", defaults.Parser.StubSolution)

	v.SetDefault("days.language", defaults.Days.Language)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.output_file", defaults.Logging.OutputFile)
	v.SetDefault("logging.verbose", defaults.Logging.Verbose)

	v.SetDefault("development.unsafe_demos", defaults.Development.UnsafeDemos)
	v.SetDefault("development.debug_mode", defaults.Development.DebugMode)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Loop.TickInterval <= 0 {
		return fmt.Errorf("loop.tick_interval must be positive, got %v", config.Loop.TickInterval)
	}

	if len(config.Loop.Signals) == 0 {
		return fmt.Errorf("loop.signals must list at least one signal kind")
	}

	for _, kind := range sortedKeys(config.Loop.Signals) {
		if !contains(SignalKinds, kind) {
			return fmt.Errorf("loop.signals: unknown signal kind %q (want one of: %s)", kind, strings.Join(SignalKinds, ", "))
		}
		action := config.Loop.Signals[kind]
		if !contains(SignalActions, action) {
			return fmt.Errorf("loop.signals.%s (%s): unknown action %q (want one of: %s)",
				kind, GetEnvVarName("loop.signals."+kind), action, strings.Join(SignalActions, ", "))
		}
	}

	if !contains(ParserKinds, config.Parser.Kind) {
		return fmt.Errorf("parser.kind (%s) must be one of: %s, got %s",
			GetEnvVarName("parser.kind"), strings.Join(ParserKinds, ", "), config.Parser.Kind)
	}

	if strings.TrimSpace(config.Parser.StubTitle) == "" || strings.TrimSpace(config.Parser.StubSolution) == "" {
		return fmt.Errorf("parser.stub_title and parser.stub_solution cannot be empty")
	}

	if !contains(Languages, config.Days.Language) {
		return fmt.Errorf("days.language (%s) must be one of: %s, got %s",
			GetEnvVarName("days.language"), strings.Join(Languages, ", "), config.Days.Language)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[config.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %s", config.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[config.Logging.Format] {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %s", config.Logging.Format)
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetConfigPaths returns the paths where config files are searched
func GetConfigPaths() []string {
	paths := []string{
		"./config.yaml",
		"./config.yml",
		"./config.json",
		"./config.toml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".plxdemo", "config.yaml"),
			filepath.Join(home, ".plxdemo", "config.yml"),
			filepath.Join(home, ".plxdemo", "config.json"),
			filepath.Join(home, ".plxdemo", "config.toml"),
		)
	}

	paths = append(paths,
		"/etc/plxdemo/config.yaml",
		"/etc/plxdemo/config.yml",
		"/etc/plxdemo/config.json",
		"/etc/plxdemo/config.toml",
	)

	return paths
}

// GetEnvVarName returns the environment variable name for a config key
func GetEnvVarName(key string) string {
	return "PLXDEMO_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
