// Command jargon is the Jargon VM toolchain: it lexes, parses, and
// compiles Slang source into Jargon bytecode, and runs or inspects the
// result. Grounded on cmd/surge/main.go's cobra wiring.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"jargon/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "jargon",
	Short: "Jargon VM toolchain",
	Long:  `jargon compiles Slang source to Jargon bytecode and runs it on the stack machine.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "accepted but ignored: no command reads this flag")
	rootCmd.PersistentFlags().Bool("timings", false, "accepted but ignored: no command reads this flag")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func wantColor(cmd *cobra.Command, f *os.File) bool {
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(f))
}
