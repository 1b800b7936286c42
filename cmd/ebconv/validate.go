package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ebconv/internal/optimize"
	"ebconv/internal/repair"
	"ebconv/internal/validate"
)

var validateStrict bool

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check an ebook for structural problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, _, err := loadDocument(args[0])
		if err != nil {
			return err
		}

		issues := validate.Check(doc)
		out := cmd.OutOrStdout()
		for _, issue := range issues {
			fixable := ""
			if issue.AutoFixable {
				fixable = " [auto-fixable]"
			}
			fmt.Fprintf(out, "%s: %s: %s%s\n", issue.Severity, issue.Code, issue.Message, fixable)
		}
		if len(issues) == 0 {
			fmt.Fprintln(out, "no issues found")
			return nil
		}
		if validate.HasErrors(issues) || validateStrict {
			return fmt.Errorf("%d issue(s) found", len(issues))
		}
		return nil
	},
}

var repairOutput string

var repairCmd = &cobra.Command{
	Use:   "repair <file>",
	Short: "Fix auto-fixable structural problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		doc, format, err := loadDocument(path)
		if err != nil {
			return err
		}

		report := repair.Repair(doc)
		out := cmd.OutOrStdout()
		for _, fix := range report.Applied {
			fmt.Fprintf(out, "fixed: %s\n", fix)
		}
		for _, issue := range report.Remaining {
			fmt.Fprintf(out, "remaining: %s: %s\n", issue.Severity, issue.Message)
		}
		if len(report.Applied) == 0 {
			fmt.Fprintln(out, "nothing to fix")
			return nil
		}

		target := repairOutput
		if target == "" {
			target = path
		}
		if err := saveDocument(doc, target, format); err != nil {
			return errors.Wrap(err, "writing repaired file")
		}
		fmt.Fprintln(out, target)
		return nil
	},
}

var optimizeOutput string

var optimizeCmd = &cobra.Command{
	Use:   "optimize <file>",
	Short: "Drop unreferenced and duplicate resources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		doc, format, err := loadDocument(path)
		if err != nil {
			return err
		}

		report := optimize.Optimize(doc)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "removed %d unreferenced, collapsed %d duplicate resource(s), saved %d bytes\n",
			report.RemovedUnreferenced, report.CollapsedDuplicates, report.BytesSaved)
		if report.RemovedUnreferenced == 0 && report.CollapsedDuplicates == 0 {
			return nil
		}

		target := optimizeOutput
		if target == "" {
			target = path
		}
		if err := saveDocument(doc, target, format); err != nil {
			return errors.Wrap(err, "writing optimized file")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Fail on warnings, not only errors")
	repairCmd.Flags().StringVarP(&repairOutput, "output", "o", "", "Write the repaired file here instead of in place")
	optimizeCmd.Flags().StringVarP(&optimizeOutput, "output", "o", "", "Write the optimized file here instead of in place")
	rootCmd.AddCommand(validateCmd, repairCmd, optimizeCmd)
}
