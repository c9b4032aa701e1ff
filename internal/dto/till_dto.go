package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenTillRequest struct {
	RegisterID     int             `json:"register_id"     validate:"required,min=1"`
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"min=0"`
	Notes          *string         `json:"notes"`
}

type CloseTillRequest struct {
	TillSessionID string  `json:"till_session_id" validate:"required,uuid"`
	Notes         *string `json:"notes"`
}

type ManualMovementRequest struct {
	TillSessionID string          `json:"till_session_id" validate:"required,uuid"`
	AccountID     string          `json:"account_id"      validate:"required,uuid"`
	Direction     string          `json:"direction"       validate:"required,oneof=ingress egress"`
	Amount        decimal.Decimal `json:"amount"          validate:"required,gt=0"`
	Description   string          `json:"description"     validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TillSessionResponse struct {
	ID             string          `json:"id"`
	CashierID      string          `json:"cashier_id"`
	RegisterID     int             `json:"register_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Status         string          `json:"status"`
	Notes          *string         `json:"notes,omitempty"`
	OpenedAt       string          `json:"opened_at"`
	ClosedAt       *string         `json:"closed_at,omitempty"`
}

// AccountReportRow is the per-account aggregation in a reconciliation
// report.
type AccountReportRow struct {
	AccountID string          `json:"account_id"`
	Account   string          `json:"account"`
	Kind      string          `json:"kind"`
	Ingress   decimal.Decimal `json:"ingress"`
	Egress    decimal.Decimal `json:"egress"`
}

// ReconciliationReport is the close-out summary of one till session.
// CurrentAccountTotal is informational: deferred-payment debt is not
// cash in the drawer and is excluded from FinalCashBalance.
type ReconciliationReport struct {
	TillSessionID       string             `json:"till_session_id"`
	RegisterID          int                `json:"register_id"`
	CashierID           string             `json:"cashier_id"`
	Status              string             `json:"status"`
	OpeningBalance      decimal.Decimal    `json:"opening_balance"`
	Accounts            []AccountReportRow `json:"accounts"`
	TotalIngress        decimal.Decimal    `json:"total_ingress"`
	TotalEgress         decimal.Decimal    `json:"total_egress"`
	CurrentAccountTotal decimal.Decimal    `json:"current_account_total"`
	FinalCashBalance    decimal.Decimal    `json:"final_cash_balance"`
	OrderCount          int64              `json:"order_count"`
	OpenedAt            string             `json:"opened_at"`
	ClosedAt            *string            `json:"closed_at,omitempty"`
}

type TillHistoryResponse struct {
	Data  []TillSessionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
