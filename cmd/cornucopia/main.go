// Command cornucopia is the CLI entry point: it wires the compile,
// migrate, and watch subcommands onto a cobra root command, mirroring
// atlas's cmd/atlas command-tree shape.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var root = &cobra.Command{
	Use:          "cornucopia",
	Short:        "Compile hand-written SQL queries into a typed intermediate representation.",
	SilenceUsage: true,
}

func init() {
	root.AddCommand(compileCmd)
	root.AddCommand(migrateCmd)
	root.AddCommand(watchCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
