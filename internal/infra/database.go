package infra

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vitorf997/packing-creator/internal/model"
)

// NewDatabase opens the PostgreSQL connection and brings the schema up to
// date: AutoMigrate for the tables, then the idempotent patches AutoMigrate
// cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations migrates every model. PostgreSQL-only patches are skipped on
// other dialects so that tests can run against SQLite.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.LabelTemplate{},
		&model.Client{},
		&model.SizeMatrix{},
		&model.PackingList{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that GORM tags cannot describe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// containment queries on the allocation rows (entries @> '[{"size":"M"}]')
		{"gin index packing_lists.entries", `
CREATE INDEX IF NOT EXISTS idx_packing_lists_entries
    ON packing_lists USING GIN (entries jsonb_path_ops)`},
		{"single default label template", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_label_templates_single_default
    ON label_templates (is_default) WHERE is_default`},
		{"packing list search by po", `
CREATE INDEX IF NOT EXISTS idx_packing_lists_po_lower
    ON packing_lists (LOWER(po))`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
