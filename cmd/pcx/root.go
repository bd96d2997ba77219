package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pcx/internal/logging"
	"pcx/internal/version"
)

var (
	// rootFlag is the CLI --root flag value, the project root to operate on
	rootFlag string
	// verboseFlag enables debug-level logging
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "pcx",
	Short: "pcx - fast structured code comprehension",
	Long: `pcx scans a source tree into a persisted directory of declarations,
then answers structural and textual questions about it: what is defined
where, which lines match a pattern, and which declarations best match a
free-text concept. Rescans are incremental via content hashing.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("pcx version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Project root to operate on")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false,
		"Enable debug logging")
}

// resolveRoot turns the --root flag into an absolute path
func resolveRoot() string {
	abs, err := filepath.Abs(rootFlag)
	if err != nil {
		fatal("cannot resolve root %q: %v", rootFlag, err)
	}
	return abs
}

// newLogger builds the command logger; logs go to stderr so stdout stays
// machine-parseable regardless of --format
func newLogger() *logging.Logger {
	level := logging.InfoLevel
	if verboseFlag {
		level = logging.DebugLevel
	}
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  level,
		Output: os.Stderr,
	})
}
