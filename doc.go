// Package cornucopia compiles a directory of hand-written SQL query files
// into a typed intermediate representation by introspecting a live
// PostgreSQL database.
//
// The pipeline is linear and leaves-first:
//
//	read queries ──▶ parse ──▶ validate ──▶ prepare (DB introspection) ──▶ register types ──▶ assemble IR ──▶ [emit]
//
// Each stage lives in its own package (reader, parser, validate, prepare,
// pgtype, ir); this package wires them together behind [Compile] and holds
// the shared [Config], error taxonomy, and the [Emitter] interface that a
// separate code-generation backend implements.
//
// # Usage
//
//	cfg, err := cornucopia.NewConfig(
//		cornucopia.WithQueriesDir("queries"),
//		cornucopia.WithDSN(os.Getenv("DATABASE_URL")),
//	)
//	if err != nil {
//		return err
//	}
//	prep, err := cornucopia.Compile(ctx, cfg)
package cornucopia
