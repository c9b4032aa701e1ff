package dto

// AdjustStockRequest records a manual stock movement outside the sale
// and credit-note flows.
type AdjustStockRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	// Delta is signed: positive = entry, negative = removal.
	Delta  int    `json:"delta"  validate:"required"`
	Origin string `json:"origin" validate:"required,oneof=manual_adjustment stock_import"`
	Note   string `json:"note"   validate:"required,min=3"`
}

type StockMovementResponse struct {
	ID          string  `json:"id"`
	VariantID   string  `json:"variant_id"`
	Variant     string  `json:"variant"`
	Quantity    int     `json:"quantity"`
	Origin      string  `json:"origin"`
	StockBefore int     `json:"stock_before"`
	StockAfter  int     `json:"stock_after"`
	Note        string  `json:"note,omitempty"`
	OrderID     *string `json:"order_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
