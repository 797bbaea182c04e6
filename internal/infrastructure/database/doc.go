// Package database provides SQLite connection management and schema
// migrations for Rackview Core.
//
// This package manages:
//   - Opening the database with WAL mode and foreign keys enabled
//   - Single-writer connection pool tuning for SQLite
//   - Embedded, versioned schema migrations (schema_migrations table)
//   - Health checks for the /api/health endpoint
//
// Concurrency Model:
//   - MaxOpenConns is set to 1; SQLite serialises writers and the busy
//     timeout absorbs short lock contention
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "./data/rackview.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database
