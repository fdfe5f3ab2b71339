package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jargon/internal/bytecode"
	"jargon/internal/diagfmt"
	"jargon/internal/driver"
	"jargon/internal/trace"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] file.slang",
	Short: "Compile a Slang source file to Jargon bytecode",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().String("out", "", "write the resolved listing to this .jgb file (default: <input>.jgb)")
	buildCmd.Flags().Bool("disasm", false, "print the disassembled listing instead of writing a file")
	buildCmd.Flags().Bool("no-cache", false, "skip the on-disk bytecode cache")
}

func runBuild(cmd *cobra.Command, args []string) error {
	path := args[0]
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	disasm, _ := cmd.Flags().GetBool("disasm")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	out, _ := cmd.Flags().GetString("out")

	res, cached, err := buildWithCache(path, maxDiagnostics, noCache)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	if res.Bag.Len() > 0 {
		diagfmt.Pretty(os.Stderr, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:   wantColor(cmd, os.Stderr),
			Context: 2,
		})
	}
	if res.Bag.HasErrors() {
		return fmt.Errorf("build: %d error(s)", res.Bag.Len())
	}
	if res.CompErr != nil {
		return fmt.Errorf("build: %w", res.CompErr)
	}

	prog, err := driver.LoadProgram(res.Code)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	if disasm {
		trace.Listing(os.Stdout, prog.Code, wantColor(cmd, os.Stdout))
		return nil
	}

	if out == "" {
		out = strings.TrimSuffix(path, ".slang") + ".jgb"
	}
	if err := bytecode.Save(out, prog.Code); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if !cached {
		fmt.Fprintf(os.Stdout, "wrote %s\n", out)
	} else {
		fmt.Fprintf(os.Stdout, "wrote %s (from cache)\n", out)
	}
	return nil
}

// buildWithCache wraps driver.Build/driver.BuildCached behind the
// --no-cache flag; a cache that fails to open falls back to an uncached
// build rather than failing outright.
func buildWithCache(path string, maxDiagnostics int, noCache bool) (*driver.BuildResult, bool, error) {
	if noCache {
		res, err := driver.Build(path, maxDiagnostics)
		return res, false, err
	}
	cache, err := bytecode.OpenCache()
	if err != nil {
		res, err := driver.Build(path, maxDiagnostics)
		return res, false, err
	}
	return driver.BuildCached(cache, path, maxDiagnostics)
}
