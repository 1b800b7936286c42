package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "security:\n")
		fmt.Fprintf(out, "  max_compression_ratio: %d\n", cfg.Security.MaxCompressionRatio)
		fmt.Fprintf(out, "  max_file_count: %d\n", cfg.Security.MaxFileCount)
		fmt.Fprintf(out, "  max_resource_size_mb: %d\n", cfg.Security.MaxResourceSizeMB)
		fmt.Fprintf(out, "  max_total_size_mb: %d\n", cfg.Security.MaxTotalSizeMB)
		fmt.Fprintf(out, "  max_nesting_depth: %d\n", cfg.Security.MaxNestingDepth)
		fmt.Fprintf(out, "  max_parse_seconds: %d\n", cfg.Security.MaxParseSeconds)
		fmt.Fprintf(out, "encoding:\n")
		fmt.Fprintf(out, "  normalize: %t\n", cfg.Encoding.Normalize)
		fmt.Fprintf(out, "  collapse_whitespace: %t\n", cfg.Encoding.CollapseWhitespace)
		fmt.Fprintf(out, "  straighten_quotes: %t\n", cfg.Encoding.StraightenQuotes)
		fmt.Fprintf(out, "library:\n")
		fmt.Fprintf(out, "  rename_template: %q\n", cfg.Library.RenameTemplate)
		fmt.Fprintf(out, "  default_format: %s\n", cfg.Library.DefaultFormat)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir := filepath.Join(home, ".config", "ebconv")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "creating config directory")
		}
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}

		content := `security:
  max_compression_ratio: 100
  max_file_count: 10000
  max_resource_size_mb: 200
  max_total_size_mb: 1024
  max_nesting_depth: 200
  max_parse_seconds: 300
encoding:
  normalize: true
  collapse_whitespace: true
  straighten_quotes: false
library:
  rename_template: "{title|kebab}.{ext}"
  default_format: epub
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return errors.Wrap(err, "writing config file")
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
