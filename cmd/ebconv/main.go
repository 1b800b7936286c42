// Command ebconv converts, inspects, validates, and repairs ebook files.
package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ebconv/internal/config"
	"ebconv/internal/log"
)

var (
	cfg *config.Config

	flagConfig  string
	flagVerbose bool
	flagLogFile string
)

var rootCmd = &cobra.Command{
	Use:   "ebconv",
	Short: "Convert, inspect, validate, and repair ebook files",
	Long: `ebconv is a command-line toolkit for ebooks. It converts between
EPUB and plain text, inspects and validates files, repairs common
structural problems, and manages a library through rename, merge,
split, dedup, and metadata commands.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Setup(flagLogFile, flagVerbose)
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return errors.Wrap(err, "loading configuration")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ~/.config/ebconv/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Also log to a rotating file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
