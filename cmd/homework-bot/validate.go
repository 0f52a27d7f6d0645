package main

import (
	"fmt"

	"github.com/jpalmerr/homeworkbot/config"
	"github.com/spf13/cobra"
)

// validateCmd validates the configuration without starting the bot.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Validate the homework-bot configuration without polling.

This command reads the optional YAML file, expands environment variables,
applies environment overrides and validates all fields. Tokens are masked
in the output.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  homework-bot validate
  homework-bot validate -c bot.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to an optional YAML config file")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	masked := cfg.Masked()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Endpoint:        %s\n", masked.Endpoint)
	fmt.Fprintf(out, "  API token:       %s\n", masked.APIToken)
	fmt.Fprintf(out, "  Bot token:       %s\n", masked.BotToken)
	fmt.Fprintf(out, "  Chat ID:         %s\n", masked.ChatID)
	fmt.Fprintf(out, "  Retry period:    %s\n", masked.RetryPeriod.Duration())
	fmt.Fprintf(out, "  Request timeout: %s\n", masked.RequestTimeout.Duration())
	if masked.StartFrom != nil {
		fmt.Fprintf(out, "  Start from:      %d\n", *masked.StartFrom)
	}

	return nil
}
