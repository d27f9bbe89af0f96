package infra

import (
	"fmt"

	"github.com/bfrpaulondev/fitness-api/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for the list table, then applies the idempotent SQL patches that GORM
// cannot express (descending and GIN indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

// RunMigrations creates or updates the schema. Safe to run on every boot;
// integration tests call it directly against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := applyPreMigrationPatches(db); err != nil {
		return fmt.Errorf("pre-migration patches: %w", err)
	}
	if err := db.AutoMigrate(&model.ListaCompra{}); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applyPreMigrationPatches prepares what AutoMigrate relies on.
// gen_random_uuid() is built in from PostgreSQL 13; pgcrypto covers older servers.
func applyPreMigrationPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"pgcrypto extension", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("pre-patch %q: %w", p.descr, err)
		}
	}
	return nil
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// express on its own. Each statement uses IF NOT EXISTS semantics so re-running
// on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// history scans: all lists of one user, optionally bounded by recency
		`CREATE INDEX IF NOT EXISTS idx_listas_compra_user_updated
		    ON listas_compra (user_id, updated_at DESC)`,
		// containment queries over embedded items (name / purchased flags)
		`CREATE INDEX IF NOT EXISTS idx_listas_compra_items_gin
		    ON listas_compra USING GIN (items jsonb_path_ops)`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_listas_compra_mes') THEN
		    ALTER TABLE listas_compra
		      ADD CONSTRAINT chk_listas_compra_mes CHECK (mes BETWEEN 1 AND 12);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
