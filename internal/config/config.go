// Package config loads tool configuration from the user's config directory.
// Core packages never read configuration files themselves; the CLI loads a
// Config here and passes typed options down.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"ebconv/internal/encoding"
	"ebconv/internal/security"
)

// Config is the root of the configuration file.
type Config struct {
	Security SecurityConfig `mapstructure:"security"`
	Encoding EncodingConfig `mapstructure:"encoding"`
	Library  LibraryConfig  `mapstructure:"library"`
}

// SecurityConfig mirrors the security limits in file-friendly units.
type SecurityConfig struct {
	MaxCompressionRatio uint64 `mapstructure:"max_compression_ratio"`
	MaxFileCount        uint64 `mapstructure:"max_file_count"`
	MaxResourceSizeMB   uint64 `mapstructure:"max_resource_size_mb"`
	MaxTotalSizeMB      uint64 `mapstructure:"max_total_size_mb"`
	MaxNestingDepth     int    `mapstructure:"max_nesting_depth"`
	MaxParseSeconds     uint64 `mapstructure:"max_parse_seconds"`
}

// EncodingConfig selects text normalizations applied during conversion.
type EncodingConfig struct {
	Normalize          bool `mapstructure:"normalize"`
	CollapseWhitespace bool `mapstructure:"collapse_whitespace"`
	StraightenQuotes   bool `mapstructure:"straighten_quotes"`
}

// LibraryConfig holds library-management defaults.
type LibraryConfig struct {
	RenameTemplate string `mapstructure:"rename_template"`
	DefaultFormat  string `mapstructure:"default_format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	limits := security.DefaultLimits()
	return &Config{
		Security: SecurityConfig{
			MaxCompressionRatio: limits.MaxCompressionRatio,
			MaxFileCount:        limits.MaxFileCount,
			MaxResourceSizeMB:   limits.MaxResourceSizeBytes / (1024 * 1024),
			MaxTotalSizeMB:      limits.MaxTotalSizeBytes / (1024 * 1024),
			MaxNestingDepth:     limits.MaxNestingDepth,
			MaxParseSeconds:     limits.MaxParseSeconds,
		},
		Encoding: EncodingConfig{
			Normalize:          true,
			CollapseWhitespace: true,
		},
		Library: LibraryConfig{
			RenameTemplate: "{title|kebab}.{ext}",
			DefaultFormat:  "epub",
		},
	}
}

// Load reads configuration from the given file, or from
// ~/.config/ebconv/config.{yaml,toml} when path is empty. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), nil
		}
		v.AddConfigPath(filepath.Join(home, ".config", "ebconv"))
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return Default(), nil
		}
		if path == "" && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrap(err, "reading config")
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("security.max_compression_ratio", d.Security.MaxCompressionRatio)
	v.SetDefault("security.max_file_count", d.Security.MaxFileCount)
	v.SetDefault("security.max_resource_size_mb", d.Security.MaxResourceSizeMB)
	v.SetDefault("security.max_total_size_mb", d.Security.MaxTotalSizeMB)
	v.SetDefault("security.max_nesting_depth", d.Security.MaxNestingDepth)
	v.SetDefault("security.max_parse_seconds", d.Security.MaxParseSeconds)
	v.SetDefault("encoding.normalize", d.Encoding.Normalize)
	v.SetDefault("encoding.collapse_whitespace", d.Encoding.CollapseWhitespace)
	v.SetDefault("encoding.straighten_quotes", d.Encoding.StraightenQuotes)
	v.SetDefault("library.rename_template", d.Library.RenameTemplate)
	v.SetDefault("library.default_format", d.Library.DefaultFormat)
}

// Limits converts the security section to reader limits.
func (c *Config) Limits() security.Limits {
	return security.Limits{
		MaxCompressionRatio:  c.Security.MaxCompressionRatio,
		MaxFileCount:         c.Security.MaxFileCount,
		MaxResourceSizeBytes: c.Security.MaxResourceSizeMB * 1024 * 1024,
		MaxTotalSizeBytes:    c.Security.MaxTotalSizeMB * 1024 * 1024,
		MaxNestingDepth:      c.Security.MaxNestingDepth,
		MaxParseSeconds:      c.Security.MaxParseSeconds,
	}
}

// EncodingOptions converts the encoding section to normalizer options.
func (c *Config) EncodingOptions() encoding.Options {
	return encoding.Options{
		NFC:                c.Encoding.Normalize,
		CollapseWhitespace: c.Encoding.CollapseWhitespace,
		StraightenQuotes:   c.Encoding.StraightenQuotes,
	}
}
