// responsible for updating the database based on the files in the "migrations"-folder.
package dbMan

import (
	"database/sql"
	"embed"

	"github.com/Compufreak345/dbg"
	migrate "github.com/rubenv/sql-migrate"
)

const mdbTag = dbg.Tag("tankerlog/migrateDb.go")

//go:embed migrations/*.sql
var migrationFiles embed.FS

func migrationSource() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}
}

// ExecMigrations executes all pending migrations
func ExecMigrations(db *sql.DB) (int, error) {
	rec, err := migrate.GetMigrationRecords(db, "sqlite3")
	if err == nil {
		dbg.D(mdbTag, "migration records: ", len(rec))
	}

	n, err := migrate.Exec(db, "sqlite3", migrationSource(), migrate.Up)
	if err != nil {
		dbg.E(mdbTag, "Failed to migrate Database up() : ", err)
	}

	return n, err
}
