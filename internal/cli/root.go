package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const asciiLogo = `              __      _       _
 _ __   __ _ / _| ___| |_ ___| |__
| '_ \ / _` + "`" + ` | |_ / _ \ __/ __| '_ \
| |_) | (_| |  _|  __/ || (__| | | |
| .__/ \__, |_|  \___|\__\___|_| |_|
|_|    |___/`

var rootCmd = &cobra.Command{
	Use:   "pgfetch",
	Short: "Retrying batch query runner for PostgreSQL",
	Long: asciiLogo + `

pgfetch runs a directory of named .sql queries against PostgreSQL,
materializes each result, snapshots accumulated results to disk after
every round, and retries the failed subset with exponential backoff
until everything succeeds or the attempt budget runs out.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or parameters
  11 - Database connection failed
  12 - One or more queries still failed after all attempts
  13 - Result snapshot could not be written`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for pgfetch")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
