package service_test

import (
	"context"
	"testing"

	"tillengine/internal/dto"
	"tillengine/internal/model"
	"tillengine/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseSale_FullReversal(t *testing.T) {
	f := newFixture()
	soda := seedVariant(f.variants, "Soda 500ml", dec("100.00"), 10)
	sessionID, cashierID := f.openTill(t, dec("1000.00"))

	sale := f.cashSale(t, sessionID, cashierID, soda, 3, dec("300.00"))
	require.Equal(t, 7, soda.StockOnHand)
	saleID, err := uuid.Parse(sale.ID)
	require.NoError(t, err)

	note, err := f.credit.ReverseSale(context.Background(), model.RoleSupervisor, cashierID, saleID, dto.CreateCreditNoteRequest{
		Reason: "customer returned the goods",
	})
	require.NoError(t, err)

	assert.Equal(t, model.DocTypeCreditNote, note.DocumentType)
	assert.True(t, note.Total.Equal(dec("-300.00")), "total %s", note.Total)
	require.NotNil(t, note.ReversesOrderID)
	assert.Equal(t, sale.ID, *note.ReversesOrderID)
	require.Len(t, note.Lines, 1)
	assert.True(t, note.Lines[0].LineTotal.Equal(dec("-300.00")))

	assert.Equal(t, 10, soda.StockOnHand, "reversal restocks the sold quantity")

	original := f.orders.orders[saleID]
	assert.True(t, original.Annulled)

	refunds := f.tills.movementsFor(sessionID, model.MovementRefund)
	require.Len(t, refunds, 1)
	assert.Equal(t, model.DirEgress, refunds[0].Direction)
	assert.True(t, refunds[0].Amount.Equal(dec("300.00")), "egress records a positive amount")
}

func TestReverseSale_AlreadyAnnulled(t *testing.T) {
	f := newFixture()
	soda := seedVariant(f.variants, "Soda 500ml", dec("100.00"), 10)
	sessionID, cashierID := f.openTill(t, dec("1000.00"))
	sale := f.cashSale(t, sessionID, cashierID, soda, 1, dec("100.00"))
	saleID, _ := uuid.Parse(sale.ID)

	_, err := f.credit.ReverseSale(context.Background(), model.RoleSupervisor, cashierID, saleID, dto.CreateCreditNoteRequest{
		Reason: "first reversal",
	})
	require.NoError(t, err)

	_, err = f.credit.ReverseSale(context.Background(), model.RoleSupervisor, cashierID, saleID, dto.CreateCreditNoteRequest{
		Reason: "second reversal",
	})
	assert.ErrorIs(t, err, service.ErrAlreadyAnnulled)
}

func TestReverseSale_CreditNoteCannotBeReversed(t *testing.T) {
	f := newFixture()
	soda := seedVariant(f.variants, "Soda 500ml", dec("100.00"), 10)
	sessionID, cashierID := f.openTill(t, dec("1000.00"))
	sale := f.cashSale(t, sessionID, cashierID, soda, 1, dec("100.00"))
	saleID, _ := uuid.Parse(sale.ID)

	note, err := f.credit.ReverseSale(context.Background(), model.RoleSupervisor, cashierID, saleID, dto.CreateCreditNoteRequest{
		Reason: "customer returned the goods",
	})
	require.NoError(t, err)
	noteID, _ := uuid.Parse(note.ID)

	_, err = f.credit.ReverseSale(context.Background(), model.RoleSupervisor, cashierID, noteID, dto.CreateCreditNoteRequest{
		Reason: "reverse the reversal",
	})
	assert.ErrorIs(t, err, service.ErrOrderNotFound)
}

func TestReverseSale_CashierForbidden(t *testing.T) {
	f := newFixture()
	soda := seedVariant(f.variants, "Soda 500ml", dec("100.00"), 10)
	sessionID, cashierID := f.openTill(t, dec("1000.00"))
	sale := f.cashSale(t, sessionID, cashierID, soda, 1, dec("100.00"))
	saleID, _ := uuid.Parse(sale.ID)

	_, err := f.credit.ReverseSale(context.Background(), model.RoleCashier, cashierID, saleID, dto.CreateCreditNoteRequest{
		Reason: "cashiers cannot reverse",
	})
	assert.ErrorIs(t, err, service.ErrNotAuthorized)
}

func TestReverseSale_RequiresOpenTill(t *testing.T) {
	f := newFixture()
	soda := seedVariant(f.variants, "Soda 500ml", dec("100.00"), 10)
	sessionID, cashierID := f.openTill(t, dec("1000.00"))
	sale := f.cashSale(t, sessionID, cashierID, soda, 1, dec("100.00"))
	saleID, _ := uuid.Parse(sale.ID)

	_, err := f.till.Close(context.Background(), model.RoleCashier, dto.CloseTillRequest{
		TillSessionID: sessionID.String(),
	})
	require.NoError(t, err)

	_, err = f.credit.ReverseSale(context.Background(), model.RoleSupervisor, cashierID, saleID, dto.CreateCreditNoteRequest{
		Reason: "till already closed",
	})
	assert.ErrorIs(t, err, service.ErrTillNotOpen)
}

func TestReverseSale_PartialWithExplicitTenders(t *testing.T) {
	f := newFixture()
	soda := seedVariant(f.variants, "Soda 500ml", dec("100.00"), 10)
	sessionID, cashierID := f.openTill(t, dec("1000.00"))
	sale := f.cashSale(t, sessionID, cashierID, soda, 4, dec("400.00"))
	saleID, _ := uuid.Parse(sale.ID)
	require.Equal(t, 6, soda.StockOnHand)

	note, err := f.credit.ReverseSale(context.Background(), model.RoleSupervisor, cashierID, saleID, dto.CreateCreditNoteRequest{
		Lines:   []dto.SaleLineRequest{{VariantID: soda.ID.String(), Quantity: 1}},
		Tenders: []dto.TenderRequest{{AccountID: f.cashAccount.ID.String(), Amount: dec("100.00")}},
		Reason:  "one bottle came back",
	})
	require.NoError(t, err)

	assert.True(t, note.Total.Equal(dec("-100.00")), "refund is the per-unit share: %s", note.Total)
	assert.Equal(t, 7, soda.StockOnHand, "only the reversed quantity restocks")

	// A partial reversal leaves the original order live.
	original := f.orders.orders[saleID]
	assert.False(t, original.Annulled)
}

func TestReverseSale_PartialRefundScalesDiscountedLine(t *testing.T) {
	f := newFixture()
	soda := seedVariant(f.variants, "Soda 500ml", dec("100.00"), 10)
	sessionID, cashierID := f.openTill(t, dec("1000.00"))

	// 4 × 100 with 10% off → line total 360; reversing 1 refunds 90.
	sale, err := f.sales.CreateSale(context.Background(), model.RoleCashier, cashierID, dto.CreateSaleRequest{
		TillSessionID: sessionID.String(),
		ClientID:      f.walkIn.ID.String(),
		Lines:         []dto.SaleLineRequest{{VariantID: soda.ID.String(), Quantity: 4, DiscountPct: dec("10")}},
		Tenders:       []dto.TenderRequest{{AccountID: f.cashAccount.ID.String(), Amount: dec("360.00")}},
	})
	require.NoError(t, err)
	saleID, _ := uuid.Parse(sale.ID)

	note, err := f.credit.ReverseSale(context.Background(), model.RoleSupervisor, cashierID, saleID, dto.CreateCreditNoteRequest{
		Lines:   []dto.SaleLineRequest{{VariantID: soda.ID.String(), Quantity: 1}},
		Tenders: []dto.TenderRequest{{AccountID: f.cashAccount.ID.String(), Amount: dec("90.00")}},
		Reason:  "one unit refunded",
	})
	require.NoError(t, err)
	assert.True(t, note.Total.Equal(dec("-90.00")), "total %s", note.Total)
}

func TestReverseSale_PartialWithoutTendersRejected(t *testing.T) {
	f := newFixture()
	soda := seedVariant(f.variants, "Soda 500ml", dec("100.00"), 10)
	sessionID, cashierID := f.openTill(t, dec("1000.00"))
	sale := f.cashSale(t, sessionID, cashierID, soda, 4, dec("400.00"))
	saleID, _ := uuid.Parse(sale.ID)

	_, err := f.credit.ReverseSale(context.Background(), model.RoleSupervisor, cashierID, saleID, dto.CreateCreditNoteRequest{
		Lines:  []dto.SaleLineRequest{{VariantID: soda.ID.String(), Quantity: 2}},
		Reason: "no tenders given",
	})
	assert.ErrorIs(t, err, service.ErrTenderMismatch)
	assert.Equal(t, 6, soda.StockOnHand)
}

func TestReverseSale_QuantityExceedsSoldRejected(t *testing.T) {
	f := newFixture()
	soda := seedVariant(f.variants, "Soda 500ml", dec("100.00"), 10)
	sessionID, cashierID := f.openTill(t, dec("1000.00"))
	sale := f.cashSale(t, sessionID, cashierID, soda, 2, dec("200.00"))
	saleID, _ := uuid.Parse(sale.ID)

	_, err := f.credit.ReverseSale(context.Background(), model.RoleSupervisor, cashierID, saleID, dto.CreateCreditNoteRequest{
		Lines:   []dto.SaleLineRequest{{VariantID: soda.ID.String(), Quantity: 3}},
		Tenders: []dto.TenderRequest{{AccountID: f.cashAccount.ID.String(), Amount: dec("300.00")}},
		Reason:  "asking for more than sold",
	})
	assert.Error(t, err)
}

func TestReverseSale_FullReversalCancelsCurrentAccountDebt(t *testing.T) {
	f := newFixture()
	soda := seedVariant(f.variants, "Soda 500ml", dec("100.00"), 10)
	client := seedClient(f.clients, "Acme Bar", false, decimal.Zero)
	sessionID, cashierID := f.openTill(t, dec("1000.00"))

	sale, err := f.sales.CreateSale(context.Background(), model.RoleCashier, cashierID, dto.CreateSaleRequest{
		TillSessionID: sessionID.String(),
		ClientID:      client.ID.String(),
		Lines:         []dto.SaleLineRequest{{VariantID: soda.ID.String(), Quantity: 2}},
		Tenders:       []dto.TenderRequest{{AccountID: f.caAccount.ID.String(), Amount: dec("200.00")}},
	})
	require.NoError(t, err)
	saleID, _ := uuid.Parse(sale.ID)
	require.Len(t, f.clients.entries, 1)

	_, err = f.credit.ReverseSale(context.Background(), model.RoleSupervisor, cashierID, saleID, dto.CreateCreditNoteRequest{
		Reason: "deferred sale reversed in full",
	})
	require.NoError(t, err)

	assert.Equal(t, model.CAEntryCancelled, f.clients.entries[0].Status)
	// Debt cancellation moves no cash out of the drawer.
	assert.Empty(t, f.tills.movementsFor(sessionID, model.MovementRefund))
	assert.True(t, f.orders.orders[saleID].Annulled)
}

func TestReverseSale_CompositeVariantRestocksComponent(t *testing.T) {
	f := newFixture()
	bottle := seedVariant(f.variants, "Beer bottle", dec("30.00"), 100)
	sixPack := seedVariant(f.variants, "Beer six-pack", dec("150.00"), 10)
	seedLink(f.variants, sixPack.ID, bottle.ID, 6)
	sessionID, cashierID := f.openTill(t, dec("1000.00"))

	sale := f.cashSale(t, sessionID, cashierID, sixPack, 1, dec("150.00"))
	require.Equal(t, 94, bottle.StockOnHand)
	saleID, _ := uuid.Parse(sale.ID)

	_, err := f.credit.ReverseSale(context.Background(), model.RoleSupervisor, cashierID, saleID, dto.CreateCreditNoteRequest{
		Reason: "six-pack returned intact",
	})
	require.NoError(t, err)

	assert.Equal(t, 10, sixPack.StockOnHand)
	assert.Equal(t, 100, bottle.StockOnHand)
}
