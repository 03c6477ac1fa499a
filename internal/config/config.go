package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/eurostat-enrollment/internal/source"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	dirName   = ".eurostat-enrollment"
	envPrefix = "ENROLLMENT"
)

// Global configuration structure.
type Global struct {
	SourceURL     string `mapstructure:"source_url" yaml:"source_url"`
	OutputDir     string `mapstructure:"output_dir" yaml:"output_dir"`
	OutputCSV     string `mapstructure:"output_csv" yaml:"output_csv"`
	OutputTMCF    string `mapstructure:"output_tmcf" yaml:"output_tmcf"`
	WriteManifest bool   `mapstructure:"write_manifest" yaml:"write_manifest"`
	LogLevel      string `mapstructure:"log_level" yaml:"log_level"`

	// HTTP/Retry configuration. retry_max_attempts of 1 means a single try.
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`
}

// Default values, shared with the CLI help text.
const (
	DefaultSourceURL  = source.DefaultURL
	DefaultOutputCSV  = "Eurostats_NUTS2_Enrollment.csv"
	DefaultOutputTMCF = "Eurostats_NUTS2_Enrollment.tmcf"
)

// CSVPath returns the observation CSV path under OutputDir.
func (c *Global) CSVPath() string { return filepath.Join(c.OutputDir, c.OutputCSV) }

// TMCFPath returns the template MCF path under OutputDir.
func (c *Global) TMCFPath() string { return filepath.Join(c.OutputDir, c.OutputTMCF) }

// defaultPath returns ~/.eurostat-enrollment/config.yaml.
func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.eurostat-enrollment/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. CLI flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("source_url", DefaultSourceURL)
	v.SetDefault("output_dir", ".")
	v.SetDefault("output_csv", DefaultOutputCSV)
	v.SetDefault("output_tmcf", DefaultOutputTMCF)
	v.SetDefault("write_manifest", false)
	v.SetDefault("log_level", "info")
	// HTTP/retry defaults: no timeout and no retries unless configured
	v.SetDefault("http_timeout_sec", 0)
	v.SetDefault("retry_max_attempts", 1)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set validates and assigns a single key by its config name.
func (c *Global) Set(key, val string) error {
	switch key {
	case "source_url":
		if val == "" {
			return fmt.Errorf("source_url cannot be empty")
		}
		c.SourceURL = val
	case "output_dir":
		c.OutputDir = val
	case "output_csv":
		c.OutputCSV = val
	case "output_tmcf":
		c.OutputTMCF = val
	case "write_manifest":
		b, err := parseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for write_manifest: %w", err)
		}
		c.WriteManifest = b
	case "log_level":
		switch val {
		case "debug", "info", "warn", "error":
			c.LogLevel = val
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
		}
	case "http_timeout_sec":
		return setNonNegative(&c.HTTPTimeoutSec, key, val)
	case "retry_max_attempts":
		if err := setNonNegative(&c.RetryMaxAttempts, key, val); err != nil {
			return err
		}
		if c.RetryMaxAttempts == 0 {
			c.RetryMaxAttempts = 1
		}
	case "retry_base_delay_ms":
		return setNonNegative(&c.RetryBaseDelayMs, key, val)
	case "retry_max_delay_ms":
		return setNonNegative(&c.RetryMaxDelayMs, key, val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
