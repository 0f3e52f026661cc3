package main

import (
	"github.com/spf13/cobra"

	"github.com/cornucopia-rs/cornucopia-go/migrate"
)

var (
	flagMigrationsDir string
	flagMigrateDSN    string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply a directory of ordered *.sql migration files.",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&flagMigrationsDir, "dir", "migrations", "directory of *.sql migration files")
	migrateCmd.Flags().StringVar(&flagMigrateDSN, "dsn", "", "PostgreSQL connection string")
	migrateCmd.MarkFlagRequired("dsn")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	log := newLogger(flagJSON)

	db, err := migrate.Open(flagMigrateDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := migrate.Run(cmd.Context(), db, flagMigrationsDir)
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		log.Info("nothing to apply")
		return nil
	}
	for _, a := range applied {
		log.Info("applied migration", "file", a.ID)
	}
	return nil
}
