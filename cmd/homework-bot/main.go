// Package main is the entry point for the homework-bot CLI.
//
// Usage:
//
//	homework-bot run                    # poll using environment variables
//	homework-bot run -c bot.yaml        # poll using a config file
//	homework-bot validate -c bot.yaml   # check the configuration
//	homework-bot version                # show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "homework-bot",
	Short: "Telegram notifications for homework review status",
	Long: `homework-bot polls the homework review API and sends a Telegram
message whenever the review status of your latest homework changes.

Quick start:
  export API_TOKEN=<review API OAuth token>
  export BOT_TOKEN=<Telegram bot token>
  export CHAT_ID=<your Telegram chat id>
  homework-bot run`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this homework-bot binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "homework-bot %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
