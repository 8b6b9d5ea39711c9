package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"car-mzansi-connect/internal/common/logger"

	"github.com/spf13/cobra"
)

// Version set via ldflags during build
var version = "dev"

var rootFlags struct {
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:     "mzansi",
	Short:   "Car Mzansi Connect: vehicle finance applications and marketplace tools",
	Version: version,
	Long: `mzansi drives the vehicle finance application wizard from the command line,
prices finance quotes, searches the dealership feed and serves the HTTP API.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(listingsCmd)
	rootCmd.AddCommand(serveCmd)
}

// cliLogger writes console-formatted logs to stderr so command output stays clean.
func cliLogger() logger.Logger {
	return logger.NewStructured(rootFlags.logLevel, "console", "stderr")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
