// Package config provides configuration management for the semigroup
// enumeration engines' ambient stack: dispatcher selection thresholds,
// worker/thread counts, and reporting-sink selection.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for the semigroups CLI and library
// defaults.
type Config struct {
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	FroidurePin FroidurePinConfig `mapstructure:"froidure_pin"`
	Reporting  ReportingConfig  `mapstructure:"reporting"`
	Log        LogConfig        `mapstructure:"log"`
}

// DispatcherConfig holds congruence-dispatcher selection-policy
// configuration. SmallSemigroupThreshold, PackThreshold and
// PackGrowthFactor are loaded and validated here, but the dispatcher and
// the Todd-Coxeter engine do not read them: they use their own package
// constants (1024, 2000 and 1.10).
type DispatcherConfig struct {
	// SmallSemigroupThreshold is the element count below which the
	// dispatcher runs a single prefilled Todd-Coxeter instead of racing
	//.
	SmallSemigroupThreshold int `mapstructure:"small_semigroup_threshold"`
	// Threads bounds how many strategies may run concurrently; 1 forces
	// single-threaded selection regardless of semigroup size.
	Threads int `mapstructure:"threads"`
	// IncludeKnuthBendixStub adds the documented, always-unavailable
	// Knuth-Bendix-then-* race participant (see internal/congruence).
	IncludeKnuthBendixStub bool `mapstructure:"include_knuth_bendix_stub"`
	// PackThreshold is the initial active-coset count above which
	// Todd-Coxeter enters a lookahead/packing phase.
	PackThreshold int `mapstructure:"pack_threshold"`
	// PackGrowthFactor is the multiplier applied to PackThreshold after
	// each lookahead.
	PackGrowthFactor float64 `mapstructure:"pack_growth_factor"`
}

// FroidurePinConfig holds Froidure-Pin enumeration engine configuration.
type FroidurePinConfig struct {
	// BatchSize bounds how many elements Position/At enumerate per
	// resumption round.
	BatchSize int `mapstructure:"batch_size"`
	// IdempotentThreads bounds parallelism for NrIdempotents.
	IdempotentThreads int `mapstructure:"idempotent_threads"`
}

// ReportingConfig selects and configures the progress-reporting sink
//.
type ReportingConfig struct {
	// Sink selects the reporting backend: "none", "log", or "otel".
	Sink string `mapstructure:"sink"`
	// OtelEndpoint is the OTLP collector endpoint, used when Sink=="otel".
	OtelEndpoint string `mapstructure:"otel_endpoint"`
	// OtelProtocol is "grpc" or "http/protobuf".
	OtelProtocol string `mapstructure:"otel_protocol"`
	// OtelInsecure disables TLS for the OTLP exporter.
	OtelInsecure bool `mapstructure:"otel_insecure"`
	// ServiceName tags emitted spans/metrics.
	ServiceName string `mapstructure:"service_name"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/semigroups")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults")
		} else if os.IsNotExist(err) {
			fmt.Printf("Config file %s not found, using defaults\n", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("SEMIGROUPS")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from an in-memory buffer (useful for
// testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values, carrying the original
// algorithm's tunables  over verbatim.
func setDefaults(v *viper.Viper) {
	v.SetDefault("dispatcher.small_semigroup_threshold", 1024)
	v.SetDefault("dispatcher.threads", 0)
	v.SetDefault("dispatcher.include_knuth_bendix_stub", false)
	v.SetDefault("dispatcher.pack_threshold", 2000)
	v.SetDefault("dispatcher.pack_growth_factor", 1.10)

	v.SetDefault("froidure_pin.batch_size", 8192)
	v.SetDefault("froidure_pin.idempotent_threads", 1)

	v.SetDefault("reporting.sink", "none")
	v.SetDefault("reporting.otel_protocol", "grpc")
	v.SetDefault("reporting.service_name", "semigroups")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Dispatcher.SmallSemigroupThreshold < 0 {
		return fmt.Errorf("dispatcher small_semigroup_threshold must be non-negative")
	}
	if c.Dispatcher.PackGrowthFactor <= 1.0 {
		return fmt.Errorf("dispatcher pack_growth_factor must be greater than 1.0")
	}
	if c.FroidurePin.BatchSize < 1 {
		return fmt.Errorf("froidure_pin batch_size must be at least 1")
	}
	switch c.Reporting.Sink {
	case "none", "log", "otel":
	default:
		return fmt.Errorf("unsupported reporting sink: %s", c.Reporting.Sink)
	}
	return nil
}
