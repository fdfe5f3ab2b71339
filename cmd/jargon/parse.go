package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jargon/internal/diagfmt"
	"jargon/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.slang",
	Short: "Parse a Slang source file and print its AST",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	result, err := driver.Parse(args[0], maxDiagnostics)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if result.Bag.Len() > 0 {
		diagfmt.Pretty(os.Stderr, result.Bag, result.FileSet, diagfmt.PrettyOpts{
			Color:   wantColor(cmd, os.Stderr),
			Context: 2,
		})
	}
	if result.Bag.HasErrors() {
		return fmt.Errorf("parse: %d error(s)", result.Bag.Len())
	}

	diagfmt.FormatAST(os.Stdout, result.Expr)
	return nil
}
