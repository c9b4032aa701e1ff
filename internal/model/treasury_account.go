package model

import (
	"time"

	"github.com/google/uuid"
)

// Treasury account kinds. KindCurrentAccount is the distinguished
// deferred-payment account: tenders against it record client debt
// instead of cash received, and reconciliation reports it separately.
const (
	KindCash           = "cash"
	KindDebit          = "debit"
	KindCredit         = "credit"
	KindTransfer       = "transfer"
	KindCurrentAccount = "current_account"
)

// TreasuryAccount is one payment instrument/destination in the treasury
// catalog (cash drawer, card terminal, bank transfer, current account).
type TreasuryAccount struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Kind        string    `gorm:"type:varchar(20);not null"`
	Description *string
	// IsDefault marks the account seeded with the opening balance when a
	// till opens. Exactly one cash account should carry it.
	IsDefault bool `gorm:"not null;default:false"`
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *TreasuryAccount) IsCurrentAccount() bool { return a.Kind == KindCurrentAccount }
