package repository

import (
	"context"

	"tillengine/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.TreasuryAccount, error)
	// FindDefaultCash returns the account seeded with opening balances.
	FindDefaultCash(ctx context.Context) (*model.TreasuryAccount, error)
	List(ctx context.Context) ([]model.TreasuryAccount, error)
}

type accountRepo struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) AccountRepository { return &accountRepo{db: db} }

func (r *accountRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TreasuryAccount, error) {
	var a model.TreasuryAccount
	err := r.db.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *accountRepo) FindDefaultCash(ctx context.Context) (*model.TreasuryAccount, error) {
	var a model.TreasuryAccount
	err := r.db.WithContext(ctx).
		Where("kind = 'cash' AND is_default = true AND active = true").
		First(&a).Error
	return &a, err
}

func (r *accountRepo) List(ctx context.Context) ([]model.TreasuryAccount, error) {
	var accounts []model.TreasuryAccount
	err := r.db.WithContext(ctx).Where("active = true").Order("name ASC").Find(&accounts).Error
	return accounts, err
}
