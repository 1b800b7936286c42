package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ebconv/internal/lookup"
	"ebconv/internal/meta"
)

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Read, write, or strip ebook metadata",
}

var metaGetCmd = &cobra.Command{
	Use:   "get <file> [field]",
	Short: "Print one metadata field, or all fields",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := loadDocument(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 2 {
			value, err := meta.Get(doc, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
			return nil
		}
		for _, field := range meta.Fields {
			value, err := meta.Get(doc, field)
			if err != nil {
				return err
			}
			if value != "" {
				fmt.Fprintf(out, "%s: %s\n", field, value)
			}
		}
		return nil
	},
}

var metaSetCmd = &cobra.Command{
	Use:   "set <file> <field> <value>",
	Short: "Set one metadata field and rewrite the file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		doc, format, err := loadDocument(path)
		if err != nil {
			return err
		}
		if err := meta.Set(doc, args[1], args[2]); err != nil {
			return err
		}
		if err := saveDocument(doc, path, format); err != nil {
			return errors.Wrap(err, "writing file")
		}
		return nil
	},
}

var metaStripCmd = &cobra.Command{
	Use:   "strip <file> [field]...",
	Short: "Clear metadata fields (all when none are named)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		doc, format, err := loadDocument(path)
		if err != nil {
			return err
		}
		if err := meta.Strip(doc, args[1:]...); err != nil {
			return err
		}
		if err := saveDocument(doc, path, format); err != nil {
			return errors.Wrap(err, "writing file")
		}
		return nil
	},
}

var (
	lookupProvider string
	lookupTitle    string
	lookupAuthor   string
	lookupISBN     string
	lookupApply    bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [file]",
	Short: "Look up metadata from an online provider",
	Long: `Look up bibliographic metadata. With a file argument the query is
built from the file's metadata; otherwise --title/--author/--isbn
must be given. With --apply (file argument required) the best match
is written back into the file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := providerByName(lookupProvider)
		if err != nil {
			return err
		}

		query := lookup.Query{
			Title:  lookupTitle,
			Author: lookupAuthor,
			ISBN:   lookupISBN,
		}
		if len(args) == 1 && query == (lookup.Query{}) {
			doc, _, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			query.Title = doc.Metadata.Title
			if len(doc.Metadata.Authors) > 0 {
				query.Author = doc.Metadata.Authors[0]
			}
			query.ISBN = doc.Metadata.ISBN13
		}

		results, err := provider.Lookup(cmd.Context(), query)
		if err != nil {
			return errors.Wrapf(err, "querying %s", provider.Name())
		}

		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, "no results")
			return nil
		}
		for i, r := range results {
			fmt.Fprintf(out, "%d. %s by %s", i+1, r.Title, strings.Join(r.Authors, ", "))
			if r.ISBN13 != "" {
				fmt.Fprintf(out, " (ISBN %s)", r.ISBN13)
			}
			fmt.Fprintln(out)
		}

		if lookupApply {
			if len(args) != 1 {
				return fmt.Errorf("--apply requires a file argument")
			}
			path := args[0]
			doc, format, err := loadDocument(path)
			if err != nil {
				return err
			}
			lookup.ApplyResult(doc, results[0])
			if err := saveDocument(doc, path, format); err != nil {
				return errors.Wrap(err, "writing file")
			}
			fmt.Fprintf(out, "applied result 1 to %s\n", path)
		}
		return nil
	},
}

func providerByName(name string) (lookup.Provider, error) {
	switch name {
	case "", "openlibrary":
		return &lookup.OpenLibrary{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (known: openlibrary)", name)
	}
}

func init() {
	metaCmd.AddCommand(metaGetCmd, metaSetCmd, metaStripCmd)
	lookupCmd.Flags().StringVar(&lookupProvider, "provider", "openlibrary", "Metadata provider")
	lookupCmd.Flags().StringVar(&lookupTitle, "title", "", "Title to search for")
	lookupCmd.Flags().StringVar(&lookupAuthor, "author", "", "Author to search for")
	lookupCmd.Flags().StringVar(&lookupISBN, "isbn", "", "ISBN to search for")
	lookupCmd.Flags().BoolVar(&lookupApply, "apply", false, "Write the first result into the file")
	rootCmd.AddCommand(metaCmd, lookupCmd)
}
