package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Till session states.
const (
	TillOpen   = "open"
	TillClosed = "closed"
)

// TillSession is a cashier's bounded working period (a "lote") between
// opening and closing the drawer. At most one session per cashier may
// be open at any time; the partial unique index in infra.NewDatabase
// backs the invariant under concurrency.
type TillSession struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CashierID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	RegisterID     int             `gorm:"not null;index"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status         string          `gorm:"type:varchar(20);not null;default:'open'"`
	Notes          *string
	OpenedAt       time.Time
	ClosedAt       *time.Time

	Movements []TreasuryMovement `gorm:"foreignKey:SessionID"`
}

func (TillSession) TableName() string { return "till_sessions" }

// Treasury movement directions and kinds.
const (
	DirIngress = "ingress"
	DirEgress  = "egress"

	MovementOpeningBalance = "opening_balance"
	MovementSale           = "sale"
	MovementRefund         = "refund"
	MovementManual         = "manual"
)

// TreasuryMovement is an immutable entry in the per-session treasury
// ledger. One row per non-current-account tender plus the opening
// balance seed; reversals write egress rows, never edits.
type TreasuryMovement struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Direction string          `gorm:"type:varchar(10);not null"`
	Kind      string          `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string        `gorm:"not null"`
	// OrderID links sale/refund movements to their order.
	OrderID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time

	Account *TreasuryAccount `gorm:"foreignKey:AccountID"`
}

func (TreasuryMovement) TableName() string { return "treasury_movements" }
