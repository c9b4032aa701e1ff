package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement origins.
const (
	StockOriginSale       = "sale"
	StockOriginCreditNote = "credit_note"
	StockOriginManual     = "manual_adjustment"
	StockOriginImport     = "stock_import"
)

// StockMovement records every change to a variant's on-hand quantity.
// The ledger is append-only: rows are never updated or deleted;
// reversals create new rows with the opposite sign.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VariantID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Quantity is signed: positive = entry, negative = removal.
	Quantity    int    `gorm:"not null"`
	Origin      string `gorm:"type:varchar(30);not null"`
	StockBefore int    `gorm:"not null"`
	StockAfter  int    `gorm:"not null"`
	Note        string
	// OrderID links the movement to the originating sale or credit note.
	OrderID   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time

	Variant *Variant `gorm:"foreignKey:VariantID"`
}

func (StockMovement) TableName() string { return "stock_movements" }
