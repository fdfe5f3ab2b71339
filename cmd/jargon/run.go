package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"jargon/internal/bytecode"
	"jargon/internal/config"
	"jargon/internal/diagfmt"
	"jargon/internal/driver"
	"jargon/internal/loader"
	"jargon/internal/trace"
	"jargon/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] file.slang|file.jgb",
	Short: "Run a Slang source file or a compiled .jgb listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().Bool("trace", false, "print each executed instruction and heap allocation")
	runCmd.Flags().Bool("no-cache", false, "skip the on-disk bytecode cache")
}

func runRun(cmd *cobra.Command, args []string) error {
	path := args[0]
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	wantTrace, _ := cmd.Flags().GetBool("trace")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	prog, err := loadProgram(path, maxDiagnostics, noCache, cmd)
	if err != nil {
		return err
	}

	cfg, _, err := config.Load(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	var opts []vm.Option
	if wantTrace {
		opts = append(opts, vm.WithTracer(trace.New(os.Stderr, wantColor(cmd, os.Stderr))))
	}

	result, err := driver.Run(prog, cfg, opts...)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if result.Fault != nil {
		return fmt.Errorf("run: %w", result.Fault)
	}
	if result.Status != vm.Halted {
		fmt.Fprintf(os.Stderr, "run: %s\n", result.Status)
		os.Exit(result.Status.ExitCode())
	}
	if result.Value != nil {
		fmt.Fprintln(os.Stdout, result.Value)
	}
	return nil
}

// loadProgram compiles path (caching by content hash) if it's Slang source,
// or loads it directly as a resolved .jgb listing.
func loadProgram(path string, maxDiagnostics int, noCache bool, cmd *cobra.Command) (*loader.Program, error) {
	if strings.HasSuffix(path, ".jgb") {
		code, err := bytecode.Load(path)
		if err != nil {
			return nil, fmt.Errorf("run: %w", err)
		}
		return loader.Load(code)
	}

	res, _, err := buildWithCache(path, maxDiagnostics, noCache)
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	if res.Bag.Len() > 0 {
		diagfmt.Pretty(os.Stderr, res.Bag, res.FileSet, diagfmt.PrettyOpts{
			Color:   wantColor(cmd, os.Stderr),
			Context: 2,
		})
	}
	if res.Bag.HasErrors() {
		return nil, fmt.Errorf("run: %d error(s)", res.Bag.Len())
	}
	if res.CompErr != nil {
		return nil, fmt.Errorf("run: %w", res.CompErr)
	}
	return driver.LoadProgram(res.Code)
}
