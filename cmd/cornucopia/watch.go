package main

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	cornucopia "github.com/cornucopia-rs/cornucopia-go"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recompile the queries directory whenever a *.sql file changes.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagQueriesDir, "queries", "queries", "directory of *.sql query files")
	watchCmd.Flags().StringVar(&flagDSN, "dsn", "", "PostgreSQL connection string")
	watchCmd.Flags().StringSliceVar(&flagSchemas, "schemas", nil, "catalog schemas to search (default: search_path)")
	watchCmd.Flags().BoolVar(&flagJSON, "json", false, "emit logs as JSON instead of text")
	watchCmd.MarkFlagRequired("dsn")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	log := newLogger(flagJSON)
	ctx := cmd.Context()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(flagQueriesDir); err != nil {
		return err
	}

	recompile := func() {
		cfg, err := cornucopia.NewConfig(
			cornucopia.WithQueriesDir(flagQueriesDir),
			cornucopia.WithDSN(flagDSN),
			cornucopia.WithSchemas(flagSchemas...),
		)
		if err != nil {
			log.Error("bad configuration", "err", err)
			return
		}
		prep, err := cornucopia.Compile(ctx, cfg)
		if err != nil {
			log.Warn("compile finished with errors", "err", err)
			return
		}
		log.Info("recompiled", "modules", len(prep.Modules))
	}

	log.Info("watching for changes", "dir", flagQueriesDir)
	recompile()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				recompile()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", "err", err)
		}
	}
}
