package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ebconv/internal/cover"
)

var (
	coverOutput    string
	coverThumbnail bool
	coverMaxWidth  int
	coverMaxHeight int
)

var coverCmd = &cobra.Command{
	Use:   "cover <file>",
	Short: "Extract the cover image from an ebook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := loadDocument(args[0])
		if err != nil {
			return err
		}

		res, err := cover.Extract(doc)
		if err != nil {
			return err
		}

		data := res.Data
		if coverThumbnail {
			data, err = cover.Thumbnail(res, coverMaxWidth, coverMaxHeight)
			if err != nil {
				return errors.Wrap(err, "creating thumbnail")
			}
		}

		output := coverOutput
		if output == "" {
			output = "cover.jpg"
			if !coverThumbnail && res.Filename != "" {
				output = res.Filename
			}
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return errors.Wrap(err, "writing cover")
		}
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	coverCmd.Flags().StringVarP(&coverOutput, "output", "o", "", "Output image path")
	coverCmd.Flags().BoolVar(&coverThumbnail, "thumbnail", false, "Write a JPEG thumbnail instead of the original")
	coverCmd.Flags().IntVar(&coverMaxWidth, "max-width", 300, "Thumbnail width bound")
	coverCmd.Flags().IntVar(&coverMaxHeight, "max-height", 400, "Thumbnail height bound")
	rootCmd.AddCommand(coverCmd)
}
