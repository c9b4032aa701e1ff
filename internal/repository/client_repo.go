package repository

import (
	"context"

	"tillengine/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	CreateCurrentAccountEntryTx(tx *gorm.DB, e *model.CurrentAccountEntry) error
	ListCurrentAccountEntries(ctx context.Context, clientID uuid.UUID) ([]model.CurrentAccountEntry, error)
	// CancelCurrentAccountEntryTx voids the debt created by an order when
	// a credit note reverses it.
	CancelCurrentAccountEntryTx(tx *gorm.DB, orderID uuid.UUID) error
	// SumCurrentAccountBySession totals the non-cancelled deferred-payment
	// debt originated by orders of one till session.
	SumCurrentAccountBySession(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error)
}

type clientRepo struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) ClientRepository { return &clientRepo{db: db} }

func (r *clientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *clientRepo) CreateCurrentAccountEntryTx(tx *gorm.DB, e *model.CurrentAccountEntry) error {
	return tx.Create(e).Error
}

func (r *clientRepo) ListCurrentAccountEntries(ctx context.Context, clientID uuid.UUID) ([]model.CurrentAccountEntry, error) {
	var entries []model.CurrentAccountEntry
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (r *clientRepo) CancelCurrentAccountEntryTx(tx *gorm.DB, orderID uuid.UUID) error {
	return tx.Model(&model.CurrentAccountEntry{}).
		Where("order_id = ? AND status = 'open'", orderID).
		Update("status", model.CAEntryCancelled).Error
}

func (r *clientRepo) SumCurrentAccountBySession(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(e.total), 0)
		FROM current_account_entries e
		JOIN sale_orders o ON o.id = e.order_id
		WHERE o.till_session_id = ? AND e.status <> 'cancelled'`, sessionID).
		Scan(&total).Error
	return total, err
}
