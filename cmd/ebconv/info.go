package main

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"ebconv/internal/detect"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show format, metadata, and content statistics for an ebook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		out := cmd.OutOrStdout()

		result, err := detect.DetectFile(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Format:      %s (confidence %.2f)\n", result.Format, result.Confidence)
		fmt.Fprintf(out, "MIME type:   %s\n", result.MimeType)
		if mt, err := mimetype.DetectFile(path); err == nil {
			fmt.Fprintf(out, "Sniffed:     %s\n", mt.String())
		}

		doc, _, err := loadDocument(path)
		if err != nil {
			return err
		}

		md := doc.Metadata
		fmt.Fprintf(out, "Title:       %s\n", md.Title)
		if len(md.Authors) > 0 {
			fmt.Fprintf(out, "Authors:     %s\n", strings.Join(md.Authors, "; "))
		}
		if md.Language != "" {
			fmt.Fprintf(out, "Language:    %s\n", md.Language)
		}
		if md.Publisher != "" {
			fmt.Fprintf(out, "Publisher:   %s\n", md.Publisher)
		}
		if md.PublishDate != "" {
			fmt.Fprintf(out, "Published:   %s\n", md.PublishDate)
		}
		if md.ISBN13 != "" {
			fmt.Fprintf(out, "ISBN-13:     %s\n", md.ISBN13)
		}
		if md.ISBN10 != "" {
			fmt.Fprintf(out, "ISBN-10:     %s\n", md.ISBN10)
		}
		if md.Series != nil {
			fmt.Fprintf(out, "Series:      %s #%v\n", md.Series.Name, md.Series.Position)
		}
		if v := doc.EpubVersion.String(); v != "" {
			fmt.Fprintf(out, "EPUB:        %s\n", v)
		}

		stats := doc.Stats()
		fmt.Fprintf(out, "Chapters:    %d\n", stats.ChapterCount)
		fmt.Fprintf(out, "Words:       %d\n", stats.WordCount)
		fmt.Fprintf(out, "Images:      %d\n", stats.ImageCount)
		fmt.Fprintf(out, "Resources:   %d (%d bytes)\n", len(doc.Resources), stats.ResourceSizeBytes)
		fmt.Fprintf(out, "Est. read:   %.0f min\n", stats.ReadingTimeMinutes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
