package config

import (
	"fmt"
	"time"

	"github.com/kbukum/pointflow/logger"
	"github.com/kbukum/pointflow/observability"
)

// Config is the process configuration of the pointflow CLI.
type Config struct {
	Name      string          `yaml:"name" mapstructure:"name"`
	Logging   logger.Config   `yaml:"logging" mapstructure:"logging"`
	Engine    EngineConfig    `yaml:"engine" mapstructure:"engine"`
	Plugins   PluginsConfig   `yaml:"plugins" mapstructure:"plugins"`
	Pipelines PipelinesConfig `yaml:"pipelines" mapstructure:"pipelines"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// EngineConfig bounds execution concurrency.
type EngineConfig struct {
	// MaxParallel caps the stages of one level run at once. 0 is unlimited.
	MaxParallel int `yaml:"max_parallel" mapstructure:"max_parallel"`
	// ViewParallel is the number of input views of one stage processed
	// concurrently. 1 or less is sequential.
	ViewParallel int `yaml:"view_parallel" mapstructure:"view_parallel"`
}

// PluginsConfig lists driver plugins loaded at startup.
type PluginsConfig struct {
	Paths []string `yaml:"paths" mapstructure:"paths"`
}

// PipelinesConfig lists the directories searched for pipelines given by name.
type PipelinesConfig struct {
	SearchDirs []string `yaml:"search_dirs" mapstructure:"search_dirs"`
}

// TelemetryConfig configures OTLP export of traces and metrics.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
	// Environment is reported as a resource attribute.
	Environment string `yaml:"environment" mapstructure:"environment"`
	// SampleRate is the trace sampling ratio (0.0 to 1.0).
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "pointflow"
	}
	if c.Engine.ViewParallel == 0 {
		c.Engine.ViewParallel = 1
	}
	if len(c.Pipelines.SearchDirs) == 0 {
		c.Pipelines.SearchDirs = []string{".", "pipelines"}
	}
	c.Logging.ApplyDefaults()
	c.Telemetry.ApplyDefaults(c.Name)
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if c.Engine.MaxParallel < 0 {
		return fmt.Errorf("config.engine.max_parallel must be at least 0 (got: %d)", c.Engine.MaxParallel)
	}
	if c.Engine.ViewParallel < 0 {
		return fmt.Errorf("config.engine.view_parallel must be at least 0 (got: %d)", c.Engine.ViewParallel)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	return nil
}

// ApplyDefaults fills unset telemetry fields from the collector defaults.
func (t *TelemetryConfig) ApplyDefaults(serviceName string) {
	def := observability.DefaultTracerConfig(serviceName)
	if t.Endpoint == "" {
		t.Endpoint = def.Endpoint
		t.Insecure = def.Insecure
	}
	if t.Environment == "" {
		t.Environment = def.Environment
	}
	if t.SampleRate == 0 {
		t.SampleRate = def.SampleRate
	}
	if t.MetricInterval == 0 {
		t.MetricInterval = observability.DefaultMeterConfig(serviceName).Interval
	}
}

// Validate checks the telemetry settings.
func (t *TelemetryConfig) Validate() error {
	if t.SampleRate < 0 || t.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be between 0 and 1 (got: %g)", t.SampleRate)
	}
	if t.Enabled && t.Endpoint == "" {
		return fmt.Errorf("endpoint is required when telemetry is enabled")
	}
	return nil
}

// TracerConfig returns the tracer settings for serviceName at version.
func (t TelemetryConfig) TracerConfig(serviceName, version string) observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    t.Environment,
		Endpoint:       t.Endpoint,
		Insecure:       t.Insecure,
		SampleRate:     t.SampleRate,
	}
}

// MeterConfig returns the meter settings for serviceName at version.
func (t TelemetryConfig) MeterConfig(serviceName, version string) observability.MeterConfig {
	return observability.MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    t.Environment,
		Endpoint:       t.Endpoint,
		Insecure:       t.Insecure,
		Interval:       t.MetricInterval,
	}
}
