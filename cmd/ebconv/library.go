package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ebconv/internal/dedup"
	"ebconv/internal/detect"
	"ebconv/internal/document"
	"ebconv/internal/merge"
	"ebconv/internal/rename"
	"ebconv/internal/split"
)

var (
	renameTemplate string
	renameDryRun   bool
)

var renameCmd = &cobra.Command{
	Use:   "rename <file>...",
	Short: "Rename ebook files from their metadata",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		template := renameTemplate
		if template == "" {
			template = cfg.Library.RenameTemplate
		}
		out := cmd.OutOrStdout()

		for _, path := range args {
			doc, _, err := loadDocument(path)
			if err != nil {
				return errors.Wrapf(err, "reading %s", path)
			}
			name, err := rename.Render(template, rename.VarsFromDocument(doc, path))
			if err != nil {
				return err
			}
			target := filepath.Join(filepath.Dir(path), name)
			if target == path {
				continue
			}
			fmt.Fprintf(out, "%s -> %s\n", path, target)
			if renameDryRun {
				continue
			}
			if err := moveFile(path, target); err != nil {
				return errors.Wrapf(err, "renaming %s", path)
			}
		}
		return nil
	},
}

var mergeOutput string

var mergeCmd = &cobra.Command{
	Use:   "merge <file>...",
	Short: "Merge multiple ebooks into one",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if mergeOutput == "" {
			return fmt.Errorf("--output is required")
		}

		docs := make([]*document.Document, 0, len(args))
		for _, path := range args {
			doc, _, err := loadDocument(path)
			if err != nil {
				return errors.Wrapf(err, "reading %s", path)
			}
			docs = append(docs, doc)
		}

		merged, err := merge.Merge(docs)
		if err != nil {
			return err
		}
		format, err := formatForOutput(mergeOutput)
		if err != nil {
			return err
		}
		if err := saveDocument(merged, mergeOutput, format); err != nil {
			return errors.Wrap(err, "writing merged file")
		}
		fmt.Fprintln(cmd.OutOrStdout(), mergeOutput)
		return nil
	},
}

var (
	splitBy     string
	splitLevel  int
	splitOutDir string
)

var splitCmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Split an ebook into multiple files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		doc, format, err := loadDocument(path)
		if err != nil {
			return err
		}

		var pieces []*document.Document
		switch splitBy {
		case "chapter":
			pieces = split.ByChapter(doc)
		case "heading":
			pieces, err = split.ByHeading(doc, splitLevel)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown split mode %q (expected chapter or heading)", splitBy)
		}

		dir := splitOutDir
		if dir == "" {
			dir = filepath.Dir(path)
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		out := cmd.OutOrStdout()
		for i, piece := range pieces {
			target := filepath.Join(dir, fmt.Sprintf("%s-%03d.%s", stem, i+1, format.Extension()))
			if err := saveDocument(piece, target, format); err != nil {
				return errors.Wrapf(err, "writing %s", target)
			}
			fmt.Fprintln(out, target)
		}
		return nil
	},
}

var (
	dedupStrategy  string
	dedupThreshold float64
)

var dedupCmd = &cobra.Command{
	Use:   "dedup <file>...",
	Short: "Find duplicate ebooks",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := dedup.ParseStrategy(dedupStrategy)
		if err != nil {
			return err
		}

		entries := make([]dedup.Entry, 0, len(args))
		for _, path := range args {
			entry := dedup.Entry{Path: path}
			if strategy == dedup.StrategyHash {
				h, err := dedup.HashFile(path)
				if err != nil {
					return errors.Wrapf(err, "hashing %s", path)
				}
				entry.Hash = h
			} else {
				doc, _, err := loadDocument(path)
				if err != nil {
					return errors.Wrapf(err, "reading %s", path)
				}
				entry.Title = doc.Metadata.Title
				entry.Authors = doc.Metadata.Authors
				entry.ISBN = doc.Metadata.ISBN13
				if entry.ISBN == "" {
					entry.ISBN = doc.Metadata.ISBN10
				}
			}
			entries = append(entries, entry)
		}

		groups := dedup.Find(entries, strategy, dedupThreshold)
		out := cmd.OutOrStdout()
		if len(groups) == 0 {
			fmt.Fprintln(out, "no duplicates found")
			return nil
		}
		for _, g := range groups {
			fmt.Fprintf(out, "%s:\n", g.Key)
			for _, e := range g.Entries {
				fmt.Fprintf(out, "  %s\n", e.Path)
			}
		}
		return nil
	},
}

// formatForOutput maps an output path extension to a writable format.
func formatForOutput(path string) (detect.Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if f, ok := detect.ParseFormat(ext); ok {
		return f, nil
	}
	return detect.FormatUnknown, fmt.Errorf("cannot infer output format from %q", path)
}

func init() {
	renameCmd.Flags().StringVar(&renameTemplate, "template", "", "Filename template (default from config)")
	renameCmd.Flags().BoolVar(&renameDryRun, "dry-run", false, "Print renames without performing them")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Output file path (required)")
	splitCmd.Flags().StringVar(&splitBy, "by", "chapter", "Split mode: chapter or heading")
	splitCmd.Flags().IntVar(&splitLevel, "level", 1, "Heading level for --by heading")
	splitCmd.Flags().StringVarP(&splitOutDir, "out-dir", "d", "", "Output directory (default: alongside input)")
	dedupCmd.Flags().StringVar(&dedupStrategy, "strategy", "hash", "Duplicate detection strategy: hash, isbn, fuzzy")
	dedupCmd.Flags().Float64Var(&dedupThreshold, "threshold", 0.8, "Similarity threshold for fuzzy matching")
	rootCmd.AddCommand(renameCmd, mergeCmd, splitCmd, dedupCmd)
}
