package service_test

import (
	"context"
	"testing"

	"tillengine/internal/dto"
	"tillengine/internal/model"
	"tillengine/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fixture bundles the stub repos and the services under test.
type fixture struct {
	variants *stubVariantRepo
	orders   *stubOrderRepo
	tills    *stubTillRepo
	accounts *stubAccountRepo
	clients  *stubClientRepo
	stockMov *stubStockMovementRepo

	cashAccount  *model.TreasuryAccount
	debitAccount *model.TreasuryAccount
	caAccount    *model.TreasuryAccount
	walkIn       *model.Client

	resolver service.ComboResolver
	stock    service.StockService
	till     service.TillService
	sales    service.SaleService
	credit   service.CreditNoteService
	recon    service.ReconciliationService
}

func newFixture() *fixture {
	f := &fixture{
		variants: newStubVariantRepo(),
		orders:   newStubOrderRepo(),
		accounts: newStubAccountRepo(),
		stockMov: &stubStockMovementRepo{},
	}
	f.tills = newStubTillRepo(f.accounts)
	f.clients = newStubClientRepo(f.orders)

	f.cashAccount = seedAccount(f.accounts, "Cash", model.KindCash, true)
	f.debitAccount = seedAccount(f.accounts, "Debit card", model.KindDebit, false)
	f.caAccount = seedAccount(f.accounts, "Current account", model.KindCurrentAccount, false)
	f.walkIn = seedClient(f.clients, "Walk-in customer", true, decimal.Zero)

	policy := service.NewPolicy()
	f.resolver = service.NewComboResolver(f.variants)
	f.stock = service.NewStockService(f.variants, f.stockMov, policy)
	f.till = service.NewTillService(f.tills, f.accounts, policy, nil)
	f.sales = service.NewSaleService(f.orders, f.variants, f.accounts, f.clients, f.tills, f.resolver, f.stock, f.till, policy)
	f.credit = service.NewCreditNoteService(f.orders, f.accounts, f.clients, f.tills, f.resolver, f.stock, policy)
	f.recon = service.NewReconciliationService(f.tills, f.orders, f.clients)
	return f
}

// openTill opens a session for a fresh cashier and returns both IDs.
func (f *fixture) openTill(t *testing.T, opening decimal.Decimal) (sessionID, cashierID uuid.UUID) {
	t.Helper()
	cashierID = uuid.New()
	resp, err := f.till.Open(context.Background(), model.RoleCashier, cashierID, dto.OpenTillRequest{
		RegisterID:     1,
		OpeningBalance: opening,
	})
	require.NoError(t, err)
	sessionID, err = uuid.Parse(resp.ID)
	require.NoError(t, err)
	return sessionID, cashierID
}

// cashSale registers a one-line cash sale and returns the response.
func (f *fixture) cashSale(t *testing.T, sessionID, cashierID uuid.UUID, variant *model.Variant, qty int, amount decimal.Decimal) *dto.SaleOrderResponse {
	t.Helper()
	resp, err := f.sales.CreateSale(context.Background(), model.RoleCashier, cashierID, dto.CreateSaleRequest{
		TillSessionID: sessionID.String(),
		ClientID:      f.walkIn.ID.String(),
		Lines: []dto.SaleLineRequest{
			{VariantID: variant.ID.String(), Quantity: qty},
		},
		Tenders: []dto.TenderRequest{
			{AccountID: f.cashAccount.ID.String(), Amount: amount},
		},
	})
	require.NoError(t, err)
	return resp
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
