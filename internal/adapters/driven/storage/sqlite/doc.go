// Package sqlite provides a SQLite-based implementation of the run store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Each run is one row in `runs`; hypotheses and lineage are
// stored as JSON documents keyed by (run_id, pathway_id) so lineage can be
// fetched for one pathway without loading the whole run.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files and
// records its own version in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.pathscout/data/runs.db
package sqlite
