package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	cornucopia "github.com/cornucopia-rs/cornucopia-go"
)

var colorRed = color.New(color.FgHiRed).SprintFunc()

var (
	flagQueriesDir string
	flagDSN        string
	flagSchemas    []string
	flagOut        string
	flagJSON       bool
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a directory of SQL query files into an intermediate representation.",
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVar(&flagQueriesDir, "queries", "queries", "directory of *.sql query files")
	compileCmd.Flags().StringVar(&flagDSN, "dsn", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	compileCmd.Flags().StringSliceVar(&flagSchemas, "schemas", nil, "catalog schemas to search (default: search_path)")
	compileCmd.Flags().StringVar(&flagOut, "out", "", "write the Preparation as JSON to this path (default: stdout)")
	compileCmd.Flags().BoolVar(&flagJSON, "json", false, "emit logs as JSON instead of text")
}

func runCompile(cmd *cobra.Command, _ []string) error {
	runID := uuid.New().String()
	log := newLogger(flagJSON).With("run_id", runID)
	ctx := cmd.Context()

	cfg, err := cornucopia.NewConfig(
		cornucopia.WithQueriesDir(flagQueriesDir),
		cornucopia.WithDSN(flagDSN),
		cornucopia.WithSchemas(flagSchemas...),
	)
	if err != nil {
		return err
	}

	log.Info("compiling queries", "dir", flagQueriesDir)
	prep, err := cornucopia.Compile(ctx, cfg)

	var report *cornucopia.Report
	if errors.As(err, &report) {
		printReport(cmd, report)
	} else if err != nil {
		return err
	}

	data, merr := json.MarshalIndent(prep, "", "  ")
	if merr != nil {
		return fmt.Errorf("cornucopia: marshal preparation: %w", merr)
	}

	if flagOut == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else if werr := os.WriteFile(flagOut, data, 0o644); werr != nil {
		return fmt.Errorf("cornucopia: write %q: %w", flagOut, werr)
	}

	if err != nil {
		return errors.New("compile finished with errors")
	}
	log.Info("compiled successfully", "modules", len(prep.Modules))
	return nil
}

func printReport(cmd *cobra.Command, report *cornucopia.Report) {
	for _, e := range report.Structural {
		fmt.Fprintln(cmd.ErrOrStderr(), colorRed(e.Error()))
	}
	for _, d := range report.Diagnostics {
		fmt.Fprintln(cmd.ErrOrStderr(), colorRed(d.String()))
	}
}
