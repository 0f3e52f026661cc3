package cornucopia

import (
	"context"
	"fmt"
	"strings"

	"github.com/cornucopia-rs/cornucopia-go/dialect/pg"
	"github.com/cornucopia-rs/cornucopia-go/ir"
	"github.com/cornucopia-rs/cornucopia-go/migrate"
	"github.com/cornucopia-rs/cornucopia-go/parser"
	"github.com/cornucopia-rs/cornucopia-go/pgtype"
	"github.com/cornucopia-rs/cornucopia-go/prepare"
	"github.com/cornucopia-rs/cornucopia-go/reader"
	"github.com/cornucopia-rs/cornucopia-go/validate"
)

// Report is what Compile returns alongside a Preparation when one or
// more query files failed somewhere in the pipeline. Parse and
// validation failures print via their own Error() (the spec's "variant's
// own Display" contract); prepare-stage failures print as Diagnostics.
type Report struct {
	Structural  []error
	Diagnostics Diagnostics
}

func (r *Report) Error() string {
	var b strings.Builder
	for _, e := range r.Structural {
		b.WriteString(e.Error())
		b.WriteByte('\n')
	}
	b.WriteString(r.Diagnostics.Error())
	return b.String()
}

func (r *Report) HasErrors() bool { return len(r.Structural) > 0 || r.Diagnostics.HasErrors() }

// Compile runs the full pipeline: read the queries directory, parse and
// validate each module, drive introspection through a live connection,
// and assemble the result into a Preparation. A query file that fails
// parsing or validation is skipped for the remaining stages, but every
// other file still runs through the pipeline — only a directory-read
// failure, a migration failure (when cfg.MigrationsDir is set), or a
// connection failure aborts the whole run.
func Compile(ctx context.Context, cfg Config) (prep ir.Preparation, err error) {
	modules, err := reader.ReadDir(cfg.QueriesDir)
	if err != nil {
		return ir.Preparation{}, NewIOError("read_dir", cfg.QueriesDir, err)
	}

	if cfg.MigrationsDir != "" {
		if err := runMigrations(ctx, cfg); err != nil {
			return ir.Preparation{}, err
		}
	}

	conn, err := pg.Connect(ctx, cfg.DSN)
	if err != nil {
		return ir.Preparation{}, fmt.Errorf("cornucopia: connect: %w", err)
	}
	defer func() {
		if cerr := conn.Close(ctx); cerr != nil && err == nil {
			err = fmt.Errorf("cornucopia: close connection: %w", cerr)
		}
	}()

	if len(cfg.Schemas) > 0 {
		ctx = pg.WithSchemas(ctx, cfg.Schemas)
	}

	reg := pgtype.NewRegistrar(conn)

	report := &Report{}
	var preparedModules []ir.PreparedModule

	for _, m := range modules {
		parsed, perrs := parser.Parse(m.Path, m.Name, m.Text)
		if len(perrs) > 0 {
			report.Structural = append(report.Structural, perrs...)
			continue
		}

		vres := validate.Module(parsed)
		if vres.HasErrors() {
			report.Structural = append(report.Structural, vres.Errors...)
			continue
		}

		pm, perrs := prepare.Module(ctx, conn, reg, parsed)
		for _, e := range perrs {
			report.Diagnostics = append(report.Diagnostics, toDiagnostic(m, e))
		}
		preparedModules = append(preparedModules, pm)
	}

	prep = ir.Assemble(preparedModules, reg)

	if report.HasErrors() {
		return prep, report
	}
	return prep, nil
}

// runMigrations applies cfg.MigrationsDir before introspection starts, so
// that columns a migration just added are visible to the preparer. It
// opens its own database/sql connection (migrate runs on lib/pq, not the
// pgx connection introspection uses) and closes it before returning.
func runMigrations(ctx context.Context, cfg Config) error {
	db, err := migrate.Open(cfg.DSN)
	if err != nil {
		return fmt.Errorf("cornucopia: open migrations connection: %w", err)
	}
	defer db.Close()

	if _, err := migrate.Run(ctx, db, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("cornucopia: apply migrations: %w", err)
	}
	return nil
}

// toDiagnostic converts a prepare-stage error into a Diagnostic. Every
// error type prepare.Module can return implements diagnosable; a type
// that doesn't (a defensive fallback, not a reachable path today) still
// renders, just without a query/file/line prefix.
func toDiagnostic(m reader.Module, err error) Diagnostic {
	if d, ok := err.(diagnosable); ok {
		query, path, pos := d.DiagnosticInfo()
		return Diagnostic{Query: query, Path: path, Pos: pos, Err: err}
	}
	return Diagnostic{Path: m.Path, Err: err}
}
