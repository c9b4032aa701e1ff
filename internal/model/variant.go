package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant identifies a sellable unit (article × size × color). The
// catalog collaborator owns the descriptive attributes; this engine
// only reads price/stock and applies signed deltas to StockOnHand.
type Variant struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name    string    `gorm:"index;not null"`
	Barcode *string   `gorm:"uniqueIndex"`
	// SKU attributes kept denormalized — size/color resolution is catalog
	// territory, the engine never joins on it.
	Size        *string         `gorm:"type:varchar(20)"`
	Color       *string         `gorm:"type:varchar(30)"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockOnHand int             `gorm:"not null;default:0"`
	StockMin    int             `gorm:"not null;default:0"`
	StockMax    int             `gorm:"not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ConsumptionLink makes a variant composite: selling one unit of
// VariantID additionally consumes Units of ComponentVariantID (a combo
// or recipe-style equivalence rule). A variant without a link is simple.
type ConsumptionLink struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VariantID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	ComponentVariantID uuid.UUID `gorm:"type:uuid;index;not null"`
	// Units is the equivalence factor: component units consumed per unit sold.
	Units     int  `gorm:"not null"`
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time

	Variant   *Variant `gorm:"foreignKey:VariantID"`
	Component *Variant `gorm:"foreignKey:ComponentVariantID"`
}

func (ConsumptionLink) TableName() string { return "consumption_links" }
