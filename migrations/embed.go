// Package migrations embeds the SQL schema migrations into the binary.
//
// Files follow the naming convention YYYYMMDD_HHMMSS_description.up.sql
// (and .down.sql for rollback). The database package discovers and
// applies them in version order.
package migrations

import (
	"embed"

	"github.com/nerrad567/rackview-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
