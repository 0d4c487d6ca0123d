package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/rsscn/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "rsscn",
	Short: "Control flow and exit point analysis for Rust",
	Long: `rsscn builds expression-level control flow graphs for Rust functions
and closures and reports what they reveal.

Features:
  • CFG construction with Graphviz and trace output
  • Exit point analysis (return, ?, diverging calls, tail expressions)
  • Dead code detection after returns, diverging calls and infinite loops
  • A CI gate combining both analyses`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewCFGCmd())
	rootCmd.AddCommand(NewExitsCmd())
	rootCmd.AddCommand(NewDeadCodeCmd())
	rootCmd.AddCommand(NewCheckCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
}

// exitCode maps a command error to the process exit status:
// 1 when check found issues, 2 for any other failure
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var issues *issuesFoundError
	if errors.As(err, &issues) {
		return 1
	}
	return 2
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		var issues *issuesFoundError
		if !errors.As(err, &issues) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	os.Exit(exitCode(err))
}
