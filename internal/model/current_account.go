package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Current-account entry states.
const (
	CAEntryOpen      = "open"
	CAEntrySettled   = "settled"
	CAEntryCancelled = "cancelled"
)

// CurrentAccountEntry records client debt created by a deferred-payment
// tender. It is a promise to pay, not cash received, so it never
// produces a treasury ingress and reconciliation reports it as
// informational only.
type CurrentAccountEntry struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Balance is the amount still owed; collections decrease it.
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status    string          `gorm:"type:varchar(20);not null;default:'open'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Client *Client `gorm:"foreignKey:ClientID"`
}

func (CurrentAccountEntry) TableName() string { return "current_account_entries" }
