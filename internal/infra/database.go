package infra

import (
	"fmt"

	"tillengine/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes, sequences).
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

// RunMigrations applies AutoMigrate plus schema patches. Exported so the
// integration tests can migrate their throwaway container databases.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.TreasuryAccount{},
		&model.Variant{},
		&model.ConsumptionLink{},
		&model.TillSession{},
		&model.TreasuryMovement{},
		&model.SaleOrder{},
		&model.SaleOrderLine{},
		&model.PaymentTender{},
		&model.StockMovement{},
		&model.CurrentAccountEntry{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
// Each statement is guarded by an existence check so re-running on an
// already-patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// One open till session per cashier, enforced at the database so a
		// concurrent double-open loses on commit rather than racing the
		// service-level check.
		{"partial unique index on open till sessions", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_till_sessions_open_cashier') THEN
    CREATE UNIQUE INDEX uni_till_sessions_open_cashier
        ON till_sessions (cashier_id)
        WHERE status = 'open';
  END IF;
END $$`},
		// Order numbering sequence: nextval keeps numbers gap-tolerant but
		// strictly increasing under concurrent sales.
		{"order number sequence",
			`CREATE SEQUENCE IF NOT EXISTS sale_orders_number_seq START 1`},
		// Stock can never go negative even if a guard regression slips in.
		{"non-negative stock check constraint", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_variants_stock_on_hand') THEN
    ALTER TABLE variants ADD CONSTRAINT chk_variants_stock_on_hand CHECK (stock_on_hand >= 0);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", p.descr, err)
		}
	}
	return nil
}
