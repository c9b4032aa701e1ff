package service

import (
	"context"
	"errors"
	"fmt"

	"tillengine/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockDelta is one signed stock adjustment produced by the resolver.
type StockDelta struct {
	VariantID uuid.UUID
	Quantity  int
}

// ComboResolver expands a sold variant into the stock deltas it causes.
// A simple variant yields a single negative delta for itself; a
// composite variant (one with a consumption link) additionally deducts
// its linked component, scaled by the link's equivalence factor.
// Resolution is read-only — callers apply the deltas.
type ComboResolver interface {
	Resolve(ctx context.Context, variantID uuid.UUID, quantity int) ([]StockDelta, error)
}

type comboResolver struct {
	variants repository.VariantRepository
}

func NewComboResolver(variants repository.VariantRepository) ComboResolver {
	return &comboResolver{variants: variants}
}

func (r *comboResolver) Resolve(ctx context.Context, variantID uuid.UUID, quantity int) ([]StockDelta, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	deltas := []StockDelta{{VariantID: variantID, Quantity: -quantity}}

	link, err := r.variants.FindConsumptionLink(ctx, variantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return deltas, nil // simple variant
	}
	if err != nil {
		return nil, fmt.Errorf("resolving consumption link for %s: %w", variantID, err)
	}

	// Composite: the component must exist before we promise a deduction
	// against it.
	if _, err := r.variants.FindByID(ctx, link.ComponentVariantID); err != nil {
		return nil, fmt.Errorf("%w: component %s", ErrUnresolvableCombo, link.ComponentVariantID)
	}
	if link.Units <= 0 {
		return nil, fmt.Errorf("%w: non-positive equivalence factor", ErrUnresolvableCombo)
	}

	deltas = append(deltas, StockDelta{
		VariantID: link.ComponentVariantID,
		Quantity:  -quantity * link.Units,
	})
	return deltas, nil
}
