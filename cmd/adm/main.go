// Package main provides the survey admin CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"surveyforge/cmd/adm/commands"
	"surveyforge/internal/config"
	"surveyforge/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.IsDevelopment())
	defer log.Sync()

	env := commands.NewEnv(cfg, log)
	defer env.Close(context.Background())

	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Survey administration tool",
		Long: `Survey administration tool

Seeds surveys, imports questions, exports results and prepares
admin credentials without going through the HTTP API.`,
		SilenceUsage: true,

		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.SurveyCommands(env))
	rootCmd.AddCommand(commands.AuthCommands())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
