package service_test

import (
	"context"
	"testing"

	"tillengine/internal/dto"
	"tillengine/internal/model"
	"tillengine/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMovement_ManualEntry(t *testing.T) {
	f := newFixture()
	v := seedVariant(f.variants, "Jeans 42", dec("8000.00"), 10)

	resp, err := f.stock.RecordMovement(context.Background(), model.RoleSupervisor, dto.AdjustStockRequest{
		VariantID: v.ID.String(),
		Delta:     5,
		Origin:    model.StockOriginImport,
		Note:      "weekly delivery",
	})
	require.NoError(t, err)

	assert.Equal(t, 15, v.StockOnHand)
	assert.Equal(t, 10, resp.StockBefore)
	assert.Equal(t, 15, resp.StockAfter)
	assert.Equal(t, model.StockOriginImport, resp.Origin)
	require.Len(t, f.stockMov.movements, 1)
}

func TestRecordMovement_RemovalBelowZeroRejected(t *testing.T) {
	f := newFixture()
	v := seedVariant(f.variants, "Jeans 42", dec("8000.00"), 3)

	_, err := f.stock.RecordMovement(context.Background(), model.RoleSupervisor, dto.AdjustStockRequest{
		VariantID: v.ID.String(),
		Delta:     -5,
		Origin:    model.StockOriginManual,
		Note:      "shrinkage count",
	})
	assert.ErrorIs(t, err, service.ErrInsufficientStock)
	assert.Equal(t, 3, v.StockOnHand, "stock must be untouched")
	assert.Empty(t, f.stockMov.movements, "no ledger row on failure")
}

func TestRecordMovement_CashierForbidden(t *testing.T) {
	f := newFixture()
	v := seedVariant(f.variants, "Jeans 42", dec("8000.00"), 3)

	_, err := f.stock.RecordMovement(context.Background(), model.RoleCashier, dto.AdjustStockRequest{
		VariantID: v.ID.String(),
		Delta:     1,
		Origin:    model.StockOriginManual,
		Note:      "should not happen",
	})
	assert.ErrorIs(t, err, service.ErrNotAuthorized)
}
