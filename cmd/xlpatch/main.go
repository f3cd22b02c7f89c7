// Package main provides the xlpatch command-line interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/javajack/xlpatch"
)

var (
	changesPath string
	filterExpr  string
	pretty      bool
	dryRun      bool
	verify      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xlpatch <workbook.xlsx>",
		Short: "Overwrite xlsx cell text while preserving styles",
		Long: `xlpatch overwrites the text of specific worksheet cells in an .xlsx
workbook. Only the targeted worksheet XML entries are rewritten; every other
archive member, including styles and workbook metadata, is copied through
byte-identical. Each change carries the value the caller expects the cell to
hold, and a cell whose content has drifted is reported instead of patched.

The result document {"appliedCount": N, "issues": [...]} is printed to
standard output. A non-empty issues list alongside a non-zero appliedCount is
an expected partial-success outcome, not an error.`,
		Args:          cobra.ExactArgs(1),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVarP(&changesPath, "changes", "c", "", "JSON payload path with the changes array (required)")
	rootCmd.Flags().StringVar(&filterExpr, "filter", "", "Expression selecting which changes to process, e.g. 'sheetName == \"Sheet1\"'")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print the JSON result")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute and report the result without rewriting the workbook")
	rootCmd.Flags().BoolVar(&verify, "verify", false, "Re-open the patched workbook and fail if it does not parse")
	_ = rootCmd.MarkFlagRequired("changes")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	workbookPath, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(workbookPath), ".xlsx") {
		return fmt.Errorf("only .xlsx is supported by style-preserving overwrite: %s", workbookPath)
	}

	payload, err := os.Open(changesPath)
	if err != nil {
		return fmt.Errorf("open payload %q: %w", changesPath, err)
	}
	changes, err := xlpatch.DecodeChanges(payload)
	payload.Close()
	if err != nil {
		return err
	}

	opts := []xlpatch.Option{
		xlpatch.WithDryRun(dryRun),
	}
	if filterExpr != "" {
		opts = append(opts, xlpatch.WithFilter(filterExpr))
	}

	result, err := xlpatch.Patch(workbookPath, changes, opts...)
	if err != nil {
		return err
	}

	if verify && !dryRun {
		f, err := excelize.OpenFile(workbookPath)
		if err != nil {
			return fmt.Errorf("verify patched workbook %q: %w", workbookPath, err)
		}
		f.Close()
	}

	indent := ""
	if pretty {
		indent = "  "
	}
	return result.WriteJSON(os.Stdout, indent)
}
