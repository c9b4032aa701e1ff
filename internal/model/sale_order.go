package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Document types issued by the engine.
const (
	DocTypeSale       = "sale"
	DocTypeCreditNote = "credit_note"
)

// SaleOrder is the header of a sale or credit note. Created once;
// the only permitted mutation is setting Annulled when a credit note
// reverses it. Never physically deleted.
type SaleOrder struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number        int             `gorm:"uniqueIndex;not null"`
	DocumentType  string          `gorm:"type:varchar(20);not null;default:'sale'"`
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CashierID     uuid.UUID       `gorm:"type:uuid;not null"`
	TillSessionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Annulled      bool            `gorm:"not null;default:false"`
	// ReversesOrderID is set on a credit note: the sale it reverses.
	ReversesOrderID *uuid.UUID `gorm:"type:uuid;index"`
	// IdempotencyKey dedupes caller retries of the same order.
	IdempotencyKey *string `gorm:"uniqueIndex"`
	CreatedAt      time.Time

	Lines   []SaleOrderLine `gorm:"foreignKey:OrderID"`
	Tenders []PaymentTender `gorm:"foreignKey:OrderID"`
	Client  *Client         `gorm:"foreignKey:ClientID"`
}

func (SaleOrder) TableName() string { return "sale_orders" }

// SaleOrderLine is immutable after creation: a reversal is a new set of
// lines on a credit note, never an edit.
type SaleOrderLine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	VariantID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity  int       `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Per-line discounts: percentage applied first, then the fixed amount.
	DiscountPct    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt      time.Time

	Variant *Variant `gorm:"foreignKey:VariantID"`
}

func (SaleOrderLine) TableName() string { return "sale_order_lines" }

// PaymentTender applies an amount from one treasury account to an
// order. Tenders for one order reference distinct accounts and sum
// exactly to the order total. Immutable.
type PaymentTender struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID uuid.UUID       `gorm:"type:uuid;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time

	Account *TreasuryAccount `gorm:"foreignKey:AccountID"`
}

func (PaymentTender) TableName() string { return "payment_tenders" }
