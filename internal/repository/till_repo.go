package repository

import (
	"context"

	"tillengine/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountSum is one row of the per-account treasury aggregation used by
// the reconciliation engine.
type AccountSum struct {
	AccountID   uuid.UUID       `gorm:"column:account_id"`
	AccountName string          `gorm:"column:account_name"`
	AccountKind string          `gorm:"column:account_kind"`
	Ingress     decimal.Decimal `gorm:"column:ingress"`
	Egress      decimal.Decimal `gorm:"column:egress"`
}

type TillRepository interface {
	CreateSessionTx(tx *gorm.DB, s *model.TillSession) error
	FindOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*model.TillSession, error)
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.TillSession, error)
	UpdateSessionTx(tx *gorm.DB, s *model.TillSession) error
	CreateMovement(ctx context.Context, m *model.TreasuryMovement) error
	CreateMovementTx(tx *gorm.DB, m *model.TreasuryMovement) error
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.TreasuryMovement, error)
	// SumMovementsByAccount aggregates the session ledger per treasury
	// account, ordered by account name for stable report output. The
	// opening-balance seed is excluded: reconciliation adds the session's
	// opening balance directly, counting the seed here would double it.
	SumMovementsByAccount(ctx context.Context, sessionID uuid.UUID) ([]AccountSum, error)
	History(ctx context.Context, page, limit int) ([]model.TillSession, int64, error)
	DB() *gorm.DB
}

type tillRepo struct{ db *gorm.DB }

func NewTillRepository(db *gorm.DB) TillRepository { return &tillRepo{db: db} }

func (r *tillRepo) DB() *gorm.DB { return r.db }

func (r *tillRepo) CreateSessionTx(tx *gorm.DB, s *model.TillSession) error {
	return tx.Create(s).Error
}

func (r *tillRepo) FindOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*model.TillSession, error) {
	var s model.TillSession
	err := r.db.WithContext(ctx).
		Where("cashier_id = ? AND status = 'open'", cashierID).
		First(&s).Error
	return &s, err
}

func (r *tillRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.TillSession, error) {
	var s model.TillSession
	err := r.db.WithContext(ctx).Preload("Movements").First(&s, id).Error
	return &s, err
}

func (r *tillRepo) UpdateSessionTx(tx *gorm.DB, s *model.TillSession) error {
	return tx.Save(s).Error
}

func (r *tillRepo) CreateMovement(ctx context.Context, m *model.TreasuryMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *tillRepo) CreateMovementTx(tx *gorm.DB, m *model.TreasuryMovement) error {
	return tx.Create(m).Error
}

func (r *tillRepo) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.TreasuryMovement, error) {
	var movs []model.TreasuryMovement
	err := r.db.WithContext(ctx).
		Preload("Account").
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *tillRepo) SumMovementsByAccount(ctx context.Context, sessionID uuid.UUID) ([]AccountSum, error) {
	var sums []AccountSum
	err := r.db.WithContext(ctx).Raw(`
		SELECT a.id   AS account_id,
		       a.name AS account_name,
		       a.kind AS account_kind,
		       COALESCE(SUM(m.amount) FILTER (WHERE m.direction = 'ingress'), 0) AS ingress,
		       COALESCE(SUM(m.amount) FILTER (WHERE m.direction = 'egress'),  0) AS egress
		FROM treasury_movements m
		JOIN treasury_accounts a ON a.id = m.account_id
		WHERE m.session_id = ? AND m.kind <> 'opening_balance'
		GROUP BY a.id, a.name, a.kind
		ORDER BY a.name ASC`, sessionID).
		Scan(&sums).Error
	return sums, err
}

func (r *tillRepo) History(ctx context.Context, page, limit int) ([]model.TillSession, int64, error) {
	var sessions []model.TillSession
	var total int64

	q := r.db.WithContext(ctx).Model(&model.TillSession{}).Where("status = 'closed'")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("closed_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}
