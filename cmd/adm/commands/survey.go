package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// SurveyCommands returns the survey management commands
func SurveyCommands(env *Env) *cobra.Command {
	surveysCmd := &cobra.Command{
		Use:   "surveys",
		Short: "Survey management commands",
		Long: `Survey management commands.

Available commands:
  seed      - Create surveys from a YAML file (or the built-in samples)
  import    - Append questions from bulk text to a survey
  export    - Write a survey's results as CSV`,
	}

	surveysCmd.AddCommand(seedCmd(env))
	surveysCmd.AddCommand(importCmd(env))
	surveysCmd.AddCommand(exportCmd(env))

	return surveysCmd
}

func seedCmd(env *Env) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create surveys from a YAML file",
		Long: `Create surveys from a YAML file.

Without --file the built-in sample surveys are created.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := sampleSurveys
			if file != "" {
				var err error
				if data, err = os.ReadFile(file); err != nil {
					return fmt.Errorf("failed to read seed file: %w", err)
				}
			}
			surveys, err := ParseSeed(data)
			if err != nil {
				return err
			}

			ctx := context.Background()
			svc, err := env.Services(ctx)
			if err != nil {
				return err
			}
			for _, survey := range surveys {
				id, err := svc.Surveys.Create(ctx, survey)
				if err != nil {
					return fmt.Errorf("failed to create %q: %w", survey.Title, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, survey.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML seed file")
	return cmd
}

func importCmd(env *Env) *cobra.Command {
	var (
		file    string
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "import <survey-id>",
		Short: "Append questions from bulk text",
		Long: `Append questions from bulk text, one per line:

  title | type | option 1, option 2

Reads standard input when --file is not given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if file != "" {
				data, err = os.ReadFile(file)
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read questions: %w", err)
			}

			ctx := context.Background()
			svc, err := env.Services(ctx)
			if err != nil {
				return err
			}
			survey, err := svc.Surveys.ImportQuestions(ctx, args[0], string(data), replace)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d questions\n", survey.Title, len(survey.Questions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "text file with one question per line")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the existing questions instead of appending")
	return cmd
}

func exportCmd(env *Env) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <survey-id>",
		Short: "Write a survey's results as CSV",
		Long: `Write a survey's results as CSV.

With --out pointing at a directory the file is named after the survey.
Without --out the CSV goes to standard output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, err := env.Services(ctx)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			filename, err := svc.Results.ExportCSV(ctx, args[0], &buf)
			if err != nil {
				return err
			}

			if out == "" {
				_, err := buf.WriteTo(cmd.OutOrStdout())
				return err
			}
			if info, err := os.Stat(out); err == nil && info.IsDir() {
				out = filepath.Join(out, filename)
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory")
	return cmd
}
