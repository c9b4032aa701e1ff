package repository

import (
	"context"

	"tillengine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	Date         string // YYYY-MM-DD; empty = today
	DocumentType string // sale | credit_note | all
	Annulled     *bool
	Page         int
	Limit        int
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.SaleOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SaleOrder, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*model.SaleOrder, error)
	MarkAnnulledTx(tx *gorm.DB, id uuid.UUID) error
	NextOrderNumber(ctx context.Context, tx *gorm.DB) (int, error)
	List(ctx context.Context, filter OrderFilter) ([]model.SaleOrder, int64, error)
	// CountBySession returns how many non-annulled orders belong to one
	// till session, used by reconciliation cross-checks.
	CountBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.SaleOrder) error {
	return tx.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SaleOrder, error) {
	var o model.SaleOrder
	err := r.db.WithContext(ctx).
		Preload("Lines.Variant").
		Preload("Tenders.Account").
		Preload("Client").
		First(&o, id).Error
	return &o, err
}

func (r *orderRepo) FindByIdempotencyKey(ctx context.Context, key string) (*model.SaleOrder, error) {
	var o model.SaleOrder
	err := r.db.WithContext(ctx).
		Preload("Lines").Preload("Tenders").
		Where("idempotency_key = ?", key).First(&o).Error
	return &o, err
}

func (r *orderRepo) MarkAnnulledTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.SaleOrder{}).Where("id = ?", id).Update("annulled", true).Error
}

func (r *orderRepo) NextOrderNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	// PostgreSQL sequence keeps numbering atomic under concurrent sales.
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('sale_orders_number_seq')").Scan(&num).Error
	return num, err
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.SaleOrder, int64, error) {
	var orders []model.SaleOrder
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SaleOrder{})

	if filter.DocumentType != "" && filter.DocumentType != "all" {
		q = q.Where("document_type = ?", filter.DocumentType)
	}
	if filter.Annulled != nil {
		q = q.Where("annulled = ?", *filter.Annulled)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	err := q.Preload("Lines.Variant").Preload("Tenders.Account").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) CountBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SaleOrder{}).
		Where("till_session_id = ? AND annulled = false", sessionID).
		Count(&n).Error
	return n, err
}
