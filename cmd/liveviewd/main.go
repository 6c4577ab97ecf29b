package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "liveviewd",
		Short: "Session transport server for server-driven live views",
		Long: `liveviewd bridges WebSocket clients to the pub/sub topics of a
server-driven UI system. Each connection gets one session loop that
translates client events into topic broadcasts and pushes render
deltas back to the client.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("liveviewd %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
