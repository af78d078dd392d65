// Command statusboard runs the team status board.
//
// Usage:
//
//	statusboard serve            # start the web server
//	statusboard serve --migrate  # apply the schema first
//	statusboard migrate          # apply the schema and exit
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "statusboard",
	Short: "A live team status board",
	Long: `statusboard lets each signed-in user publish one of four statuses
(available, busy, away, offline) with a short message, and shows everyone's
status live as it changes.

Configuration comes from .env, an optional YAML file named by
STATUSBOARD_CONFIG, and environment variables.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
