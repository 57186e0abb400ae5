package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ExitError carries a specific process exit code through cobra's error
// return path: 1 for missing or rejected credentials, 2 for an upstream
// error that aborted the only cycle of a one-shot run.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "oddsarb",
	Short: "Sportsbook arbitrage and value-bet detector",
	Long: `oddsarb polls a consolidated odds data source, compares complementary
outcomes across bookmakers, computes edge and optimal stakes under hard
risk caps, and surfaces novel arbitrage and value-bet opportunities to
an operator, deduplicated across poll cycles. An optional cross-platform
mode compares sportsbook consensus against binary event-contract prices.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command and maps a returned *ExitError to the
// process exit code; any other error exits 1.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, err.Error())

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	os.Exit(1)
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}
