package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ebconv/internal/converter"
	"ebconv/internal/detect"
	"ebconv/internal/document"
	"ebconv/internal/encoding"
	"ebconv/internal/log"
	"ebconv/internal/progress"
	"ebconv/internal/rename"
)

var (
	convertOutput      string
	convertFormat      string
	convertEpubVersion string
	convertRename      bool
	convertRaw         bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert an ebook to another format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		outFormat := detect.FormatUnknown
		if convertFormat != "" {
			f, ok := detect.ParseFormat(convertFormat)
			if !ok {
				return fmt.Errorf("unknown format %q", convertFormat)
			}
			outFormat = f
		}

		output := convertOutput
		if output == "" {
			ext := "." + outFormatExtension(outFormat)
			output = strings.TrimSuffix(input, filepath.Ext(input)) + ext
		}

		wOpts := converter.WriteOptions{}
		switch convertEpubVersion {
		case "", "3":
			wOpts.EpubVersion = document.EpubVersion3
		case "2":
			wOpts.EpubVersion = document.EpubVersion2
		default:
			return fmt.Errorf("unknown EPUB version %q (expected 2 or 3)", convertEpubVersion)
		}
		if !convertRaw {
			wOpts.Transforms = []converter.Transform{
				encoding.NewNormalizer(cfg.EncodingOptions()),
			}
		}

		rOpts := converter.ReadOptions{Security: cfg.Limits(), ParseTOC: true}

		log.Info("converting", zap.String("input", input), zap.String("output", output))
		err := converter.ConvertPath(input, output, outFormat, rOpts, wOpts, consoleProgress())
		if err != nil {
			return errors.Wrap(err, "conversion failed")
		}

		if convertRename {
			renamed, err := renameOutput(output)
			if err != nil {
				return errors.Wrap(err, "renaming output")
			}
			output = renamed
		}

		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file path")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Output format (epub, txt); default from output extension")
	convertCmd.Flags().StringVar(&convertEpubVersion, "epub-version", "", "EPUB revision to write: 2 or 3 (default 3)")
	convertCmd.Flags().BoolVar(&convertRename, "rename", false, "Rename output using the configured template")
	convertCmd.Flags().BoolVar(&convertRaw, "raw", false, "Skip text normalization")
	rootCmd.AddCommand(convertCmd)
}

func outFormatExtension(f detect.Format) string {
	if f == detect.FormatUnknown {
		return defaultFormatExtension()
	}
	return f.Extension()
}

func defaultFormatExtension() string {
	if f, ok := detect.ParseFormat(cfg.Library.DefaultFormat); ok {
		return f.Extension()
	}
	return "epub"
}

// renameOutput re-reads the finished file's metadata and moves it to the
// templated name in the same directory.
func renameOutput(path string) (string, error) {
	result, err := detect.DetectFile(path)
	if err != nil {
		return "", err
	}
	doc, err := converter.ReadDocument(path, result.Format,
		converter.ReadOptions{Security: cfg.Limits()}, nil)
	if err != nil {
		return "", err
	}

	name, err := rename.Render(cfg.Library.RenameTemplate, rename.VarsFromDocument(doc, path))
	if err != nil {
		return "", err
	}
	target := filepath.Join(filepath.Dir(path), name)
	if target == path {
		return path, nil
	}
	return target, moveFile(path, target)
}

// consoleProgress prints stage messages when verbose logging is on.
func consoleProgress() progress.Handler {
	if !flagVerbose {
		return nil
	}
	return progress.HandlerFunc(func(e progress.Event) {
		log.Debug("progress",
			zap.String("operation", e.Operation),
			zap.Int("current", e.Current),
			zap.Int("total", e.Total),
			zap.String("message", e.Message))
	})
}
