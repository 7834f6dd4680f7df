package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iksnae/chat2md/internal"
	"github.com/spf13/viper"
)

// Config holds user defaults for conversion
type Config struct {
	Format             string `toml:"format" mapstructure:"format"`
	IncludeFrontmatter bool   `toml:"include_frontmatter" mapstructure:"include_frontmatter"`
	SeparateFiles      bool   `toml:"separate_files" mapstructure:"separate_files"`
	AddTimestamps      bool   `toml:"add_timestamps" mapstructure:"add_timestamps"`
	TimeZone           string `toml:"timezone" mapstructure:"timezone"` // IANA name, "Local" or "UTC"
	OutputDir          string `toml:"output_dir" mapstructure:"output_dir"`
	CacheDir           string `toml:"cache_dir" mapstructure:"cache_dir"`
	Workers            int    `toml:"workers" mapstructure:"workers"` // 0 = GOMAXPROCS
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig(cacheDir string) *Config {
	defaults := internal.DefaultConversionOptions()
	return &Config{
		Format:             string(defaults.Format),
		IncludeFrontmatter: defaults.IncludeFrontmatter,
		SeparateFiles:      defaults.SeparateFiles,
		AddTimestamps:      defaults.AddTimestamps,
		TimeZone:           "UTC",
		OutputDir:          "./exports",
		CacheDir:           cacheDir,
		Workers:            0,
	}
}

// SetDefaults registers cfg as viper defaults
func SetDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("format", cfg.Format)
	v.SetDefault("include_frontmatter", cfg.IncludeFrontmatter)
	v.SetDefault("separate_files", cfg.SeparateFiles)
	v.SetDefault("add_timestamps", cfg.AddTimestamps)
	v.SetDefault("timezone", cfg.TimeZone)
	v.SetDefault("output_dir", cfg.OutputDir)
	v.SetDefault("cache_dir", cfg.CacheDir)
	v.SetDefault("workers", cfg.Workers)
}

// LoadConfig loads configuration from viper
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.CacheDir != "" {
		dir, err := ResolvePath(cfg.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving cache directory '%s': %w", cfg.CacheDir, err)
		}
		cfg.CacheDir = dir
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if _, err := internal.ParseFormat(cfg.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves TimeZone
func (c *Config) Location() (*time.Location, error) {
	switch c.TimeZone {
	case "", "UTC":
		return time.UTC, nil
	case "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// ConversionOptions builds the options value handed to the converter
func (c *Config) ConversionOptions() (internal.ConversionOptions, error) {
	format, err := internal.ParseFormat(c.Format)
	if err != nil {
		return internal.ConversionOptions{}, err
	}
	loc, err := c.Location()
	if err != nil {
		return internal.ConversionOptions{}, err
	}
	return internal.ConversionOptions{
		Format:             format,
		IncludeFrontmatter: c.IncludeFrontmatter,
		SeparateFiles:      c.SeparateFiles,
		AddTimestamps:      c.AddTimestamps,
		Location:           loc,
	}, nil
}

// ResolvePath expands a leading ~ and makes the path absolute
func ResolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
