package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client is a catalog-owned customer record. The engine reads it to
// validate deferred-payment ("cuenta corriente") tenders.
type Client struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"not null"`
	Document *string   `gorm:"type:varchar(20)"`
	// WalkIn marks the anonymous counter client. It can never carry
	// current-account debt.
	WalkIn bool `gorm:"not null;default:false"`
	// CreditLimit caps outstanding current-account debt. Zero = no limit
	// configured.
	CreditLimit decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Client) TableName() string { return "clients" }
