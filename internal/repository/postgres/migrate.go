package postgres

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"billdoc/internal/config"
)

// NewMigrator returns a golang-migrate instance reading migrations from dir.
func NewMigrator(dir string, cfg *config.DBConfig) (*migrate.Migrate, error) {
	m, err := migrate.New("file://"+dir, cfg.MigrateURL())
	if err != nil {
		return nil, fmt.Errorf("creating migrate instance: %w", err)
	}
	return m, nil
}
