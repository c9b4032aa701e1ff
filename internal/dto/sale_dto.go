package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleLineRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	// DiscountPct is applied to quantity × unit price first, then
	// DiscountAmount is subtracted.
	DiscountPct    decimal.Decimal `json:"discount_pct"    validate:"min=0,max=100"`
	DiscountAmount decimal.Decimal `json:"discount_amount" validate:"min=0"`
}

type TenderRequest struct {
	AccountID string          `json:"account_id" validate:"required,uuid"`
	Amount    decimal.Decimal `json:"amount"     validate:"required"`
}

type CreateSaleRequest struct {
	TillSessionID string            `json:"till_session_id" validate:"required,uuid"`
	ClientID      string            `json:"client_id"       validate:"required,uuid"`
	Lines         []SaleLineRequest `json:"lines"           validate:"required,min=1,dive"`
	Tenders       []TenderRequest   `json:"tenders"         validate:"required,min=1,dive"`
	// IdempotencyKey lets callers retry safely after a timeout: a
	// repeated key returns the stored order instead of creating another.
	IdempotencyKey *string `json:"idempotency_key" validate:"omitempty,uuid"`
}

// CreateCreditNoteRequest reverses a prior sale. Empty Lines/Tenders
// re-propose the original order in full; callers may pass reduced
// quantities for a partial reversal.
type CreateCreditNoteRequest struct {
	Lines   []SaleLineRequest `json:"lines"   validate:"omitempty,dive"`
	Tenders []TenderRequest   `json:"tenders" validate:"omitempty,dive"`
	Reason  string            `json:"reason"  validate:"required,min=5"`
}

// OrderFilterRequest is bound from query string of GET /v1/orders.
type OrderFilterRequest struct {
	Date         string `form:"date"`                         // YYYY-MM-DD; empty = today
	DocumentType string `form:"document_type,default=sale"`   // sale | credit_note | all
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleLineResponse struct {
	VariantID      string          `json:"variant_id"`
	Variant        string          `json:"variant"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountPct    decimal.Decimal `json:"discount_pct"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

type TenderResponse struct {
	AccountID string          `json:"account_id"`
	Account   string          `json:"account"`
	Amount    decimal.Decimal `json:"amount"`
}

type SaleOrderResponse struct {
	ID              string             `json:"id"`
	Number          int                `json:"number"`
	DocumentType    string             `json:"document_type"`
	ClientID        string             `json:"client_id"`
	TillSessionID   string             `json:"till_session_id"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	DiscountTotal   decimal.Decimal    `json:"discount_total"`
	Total           decimal.Decimal    `json:"total"`
	Annulled        bool               `json:"annulled"`
	ReversesOrderID *string            `json:"reverses_order_id,omitempty"`
	Lines           []SaleLineResponse `json:"lines"`
	Tenders         []TenderResponse   `json:"tenders"`
	CreatedAt       string             `json:"created_at"`
}

type OrderListResponse struct {
	Data  []SaleOrderResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}
