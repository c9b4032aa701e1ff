package service

import (
	"context"
	"fmt"

	"tillengine/internal/dto"
	"tillengine/internal/model"
	"tillengine/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockService owns the append-only stock ledger: every change to a
// variant's on-hand quantity goes through ApplyDeltaTx, which records a
// StockMovement alongside the guarded counter update.
type StockService interface {
	// RecordMovement handles manual adjustments and imports, outside the
	// sale/credit-note flows.
	RecordMovement(ctx context.Context, role string, req dto.AdjustStockRequest) (*dto.StockMovementResponse, error)
	// ApplyDeltaTx applies one resolver delta inside an open transaction
	// and appends the ledger row. Fails with ErrInsufficientStock when
	// the delta would drive stock negative.
	ApplyDeltaTx(ctx context.Context, tx *gorm.DB, delta StockDelta, origin string, orderID *uuid.UUID, note string) error
	ListMovements(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error)
}

type stockService struct {
	variants  repository.VariantRepository
	movements repository.StockMovementRepository
	policy    *Policy
}

func NewStockService(variants repository.VariantRepository, movements repository.StockMovementRepository, policy *Policy) StockService {
	return &stockService{variants: variants, movements: movements, policy: policy}
}

func (s *stockService) RecordMovement(ctx context.Context, role string, req dto.AdjustStockRequest) (*dto.StockMovementResponse, error) {
	if err := s.policy.Authorize(role, OpAdjustStock); err != nil {
		return nil, err
	}
	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		return nil, fmt.Errorf("invalid variant_id: %w", err)
	}
	if req.Delta == 0 {
		return nil, ErrInvalidQuantity
	}

	var mov *model.StockMovement
	txErr := runTx(ctx, s.variants.DB(), func(tx *gorm.DB) error {
		var err error
		mov, err = s.applyDelta(ctx, tx, StockDelta{VariantID: variantID, Quantity: req.Delta}, req.Origin, nil, req.Note)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := movementToResponse(mov)
	return &resp, nil
}

func (s *stockService) ApplyDeltaTx(ctx context.Context, tx *gorm.DB, delta StockDelta, origin string, orderID *uuid.UUID, note string) error {
	_, err := s.applyDelta(ctx, tx, delta, origin, orderID, note)
	return err
}

// applyDelta reads the current quantity, applies the guarded update and
// appends the ledger row. Must run inside the caller's transaction so a
// later failure rolls everything back together.
func (s *stockService) applyDelta(ctx context.Context, tx *gorm.DB, delta StockDelta, origin string, orderID *uuid.UUID, note string) (*model.StockMovement, error) {
	v, err := s.variants.FindByIDTx(tx, delta.VariantID)
	if err != nil {
		return nil, fmt.Errorf("variant %s not found: %w", delta.VariantID, err)
	}

	rows, err := s.variants.AdjustStockTx(tx, delta.VariantID, delta.Quantity)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: variant %s has %d on hand, delta %d",
			ErrInsufficientStock, v.Name, v.StockOnHand, delta.Quantity)
	}

	mov := &model.StockMovement{
		VariantID:   delta.VariantID,
		Quantity:    delta.Quantity,
		Origin:      origin,
		StockBefore: v.StockOnHand,
		StockAfter:  v.StockOnHand + delta.Quantity,
		Note:        note,
		OrderID:     orderID,
	}
	if err := s.movements.CreateTx(tx, mov); err != nil {
		return nil, err
	}
	mov.Variant = v
	return mov, nil
}

func (s *stockService) ListMovements(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	movements, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		items = append(items, movementToResponse(&movements[i]))
	}
	return &dto.StockMovementListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func movementToResponse(m *model.StockMovement) dto.StockMovementResponse {
	name := ""
	if m.Variant != nil {
		name = m.Variant.Name
	}
	var orderID *string
	if m.OrderID != nil {
		s := m.OrderID.String()
		orderID = &s
	}
	return dto.StockMovementResponse{
		ID:          m.ID.String(),
		VariantID:   m.VariantID.String(),
		Variant:     name,
		Quantity:    m.Quantity,
		Origin:      m.Origin,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Note:        m.Note,
		OrderID:     orderID,
		CreatedAt:   m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
