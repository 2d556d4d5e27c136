// Package database provides SQLite connectivity and schema migrations.
//
// The only persistent state of the service is the config entry table, but
// the package stays generic: it opens a WAL-mode SQLite file and applies
// versioned migrations registered through MigrationsFS.
//
// Security Considerations:
//   - All queries use parameterised statements
//   - Database file permissions are set to 0600
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
