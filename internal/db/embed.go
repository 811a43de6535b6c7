package db

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed migrations
var migrationsFS embed.FS

// DevMode switches migration loading from the embedded filesystem to the
// migrations directory in the working tree, so schema changes can be
// iterated on without rebuilding.
var DevMode bool

const devMigrationsDir = "internal/db/migrations"

// getMigrationsFS returns a filesystem whose root holds the numbered
// migration files.
func getMigrationsFS() (fs.FS, error) {
	if DevMode {
		if _, err := os.Stat(devMigrationsDir); err != nil {
			return nil, fmt.Errorf("dev mode migrations directory %s not available: %w", devMigrationsDir, err)
		}
		return os.DirFS(devMigrationsDir), nil
	}

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to scope embedded migrations: %w", err)
	}
	return sub, nil
}
