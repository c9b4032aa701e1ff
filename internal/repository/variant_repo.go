package repository

import (
	"context"

	"tillengine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VariantRepository is the engine's view of the catalog's variant stock
// store: read a variant, read its consumption link, apply signed deltas.
// Services depend on this interface, not on the concrete GORM
// implementation, enabling clean unit testing via stubs.
type VariantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Variant, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Variant, error)

	// FindConsumptionLink returns the composite rule for a variant, or
	// gorm.ErrRecordNotFound for a simple variant.
	FindConsumptionLink(ctx context.Context, variantID uuid.UUID) (*model.ConsumptionLink, error)

	// Used inside transactions — callers must pass the tx instance.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Variant, error)

	// AdjustStockTx applies a signed delta with a non-negative guard.
	// Returns the number of rows updated: zero means the guard rejected
	// the decrement (or the variant is missing) and the caller must fail
	// the enclosing transaction.
	AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type variantRepo struct{ db *gorm.DB }

func NewVariantRepository(db *gorm.DB) VariantRepository { return &variantRepo{db: db} }

func (r *variantRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Variant, error) {
	var v model.Variant
	err := r.db.WithContext(ctx).First(&v, id).Error
	return &v, err
}

func (r *variantRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Variant, error) {
	var v model.Variant
	err := r.db.WithContext(ctx).Where("barcode = ? AND active = true", barcode).First(&v).Error
	return &v, err
}

func (r *variantRepo) FindConsumptionLink(ctx context.Context, variantID uuid.UUID) (*model.ConsumptionLink, error) {
	var l model.ConsumptionLink
	err := r.db.WithContext(ctx).
		Where("variant_id = ? AND active = true", variantID).
		First(&l).Error
	return &l, err
}

func (r *variantRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Variant, error) {
	var v model.Variant
	err := tx.First(&v, id).Error
	return &v, err
}

func (r *variantRepo) AdjustStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int64, error) {
	// Conditional update: the WHERE guard serializes concurrent decrements
	// at the row level and rejects any delta that would drive stock negative.
	res := tx.Model(&model.Variant{}).
		Where("id = ? AND stock_on_hand + ? >= 0", id, delta).
		Update("stock_on_hand", gorm.Expr("stock_on_hand + ?", delta))
	return res.RowsAffected, res.Error
}

func (r *variantRepo) DB() *gorm.DB { return r.db }
