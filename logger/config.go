package logger

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// Config contains logging configuration.
type Config struct {
	Level string `yaml:"level" mapstructure:"level"`
	// Verbosity, when positive, replaces Level using the -v scale of
	// LevelForVerbosity.
	Verbosity int    `yaml:"verbosity" mapstructure:"verbosity"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"` // stdout, stderr, devnull or a file path
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

var (
	validLevels  = []string{"trace", "debug", "info", "warn", "error", "fatal"}
	validFormats = []string{FormatJSON, FormatConsole, FormatPretty}
)

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
	c.Timestamp = true
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	if !slices.Contains(validLevels, c.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", validLevels, c.Level)
	}
	if !slices.Contains(validFormats, c.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", validFormats, c.Format)
	}
	if c.Verbosity < 0 {
		return fmt.Errorf("logging.verbosity must be at least 0 (got: %d)", c.Verbosity)
	}
	return nil
}

// EffectiveLevel returns the minimum level the configuration selects.
// Unknown level names fall back to info.
func (c *Config) EffectiveLevel() zerolog.Level {
	if c.Verbosity > 0 {
		return LevelForVerbosity(c.Verbosity)
	}
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		return zerolog.InfoLevel
	}
	return level
}
