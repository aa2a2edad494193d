// Nightstand-ctl is a command line client for a running Nightstand
// controller.
//
// It can discover controllers over mDNS, set the strip to a solid color,
// turn it off, and stream colors interactively over WebSocket.
//
// Usage:
//
//	nightstand-ctl [command] [flags]
//
// See 'nightstand-ctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TuteMthCD/nightstand/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nightstand-ctl",
	Short: "Nightstand control client",
	Long: `A command line client for a running Nightstand controller.

Controllers are found automatically over mDNS, or addressed directly with
the --device flag.`,
	Version: version.Version,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nightstand-ctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
