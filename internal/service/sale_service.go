package service

import (
	"context"
	"errors"
	"fmt"

	"tillengine/internal/dto"
	"tillengine/internal/model"
	"tillengine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleService registers sale orders with split tenders and exposes the
// order query surface. Registration is all-or-nothing: the order, its
// stock deductions, its treasury movements and any current-account debt
// commit in one transaction or not at all.
type SaleService interface {
	CreateSale(ctx context.Context, role string, cashierID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleOrderResponse, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*dto.SaleOrderResponse, error)
	ListOrders(ctx context.Context, req dto.OrderFilterRequest) (*dto.OrderListResponse, error)
}

type saleService struct {
	orders   repository.OrderRepository
	variants repository.VariantRepository
	accounts repository.AccountRepository
	clients  repository.ClientRepository
	tills    repository.TillRepository
	resolver ComboResolver
	stock    StockService
	tillSvc  TillService
	policy   *Policy
}

func NewSaleService(
	orders repository.OrderRepository,
	variants repository.VariantRepository,
	accounts repository.AccountRepository,
	clients repository.ClientRepository,
	tills repository.TillRepository,
	resolver ComboResolver,
	stock StockService,
	tillSvc TillService,
	policy *Policy,
) SaleService {
	return &saleService{
		orders:   orders,
		variants: variants,
		accounts: accounts,
		clients:  clients,
		tills:    tills,
		resolver: resolver,
		stock:    stock,
		tillSvc:  tillSvc,
		policy:   policy,
	}
}

// pricedLine carries a request line after variant lookup and pricing.
type pricedLine struct {
	variant *model.Variant
	qty     int
	pct     decimal.Decimal
	amount  decimal.Decimal
	gross   decimal.Decimal
	total   decimal.Decimal
}

func (s *saleService) CreateSale(ctx context.Context, role string, cashierID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleOrderResponse, error) {
	if err := s.policy.Authorize(role, OpCreateSale); err != nil {
		return nil, err
	}

	if req.IdempotencyKey != nil {
		stored, err := s.orders.FindByIdempotencyKey(ctx, *req.IdempotencyKey)
		if err == nil {
			resp := orderToResponse(stored)
			return &resp, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	sessionID, err := uuid.Parse(req.TillSessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("invalid client id: %w", err)
	}

	session, err := s.tillSvc.RequireOpenForCashier(ctx, sessionID, cashierID)
	if err != nil {
		return nil, err
	}

	lines, subtotal, discountTotal, total, err := s.priceLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	tenders, caAccounts, err := s.checkTenders(ctx, req.Tenders, total)
	if err != nil {
		return nil, err
	}

	var caTotal decimal.Decimal
	for _, t := range tenders {
		if caAccounts[t.AccountID] {
			caTotal = caTotal.Add(t.Amount)
		}
	}
	if caTotal.IsPositive() {
		client, err := s.clients.FindByID(ctx, clientID)
		if err != nil {
			return nil, fmt.Errorf("client %s not found: %w", clientID, err)
		}
		if client.WalkIn {
			return nil, ErrInvalidClientForCredit
		}
		if client.CreditLimit.IsPositive() && total.GreaterThan(client.CreditLimit) {
			return nil, fmt.Errorf("%w: total %s, limit %s", ErrCreditLimitExceeded, total, client.CreditLimit)
		}
	}

	// Deltas are resolved before the transaction; the stock guard inside
	// it still re-checks quantities against concurrent sales.
	var deltas []StockDelta
	for _, l := range lines {
		lineDeltas, err := s.resolver.Resolve(ctx, l.variant.ID, l.qty)
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, lineDeltas...)
	}

	order := &model.SaleOrder{
		DocumentType:  model.DocTypeSale,
		ClientID:      clientID,
		CashierID:     cashierID,
		TillSessionID: session.ID,
		Subtotal:      subtotal,
		DiscountTotal: discountTotal,
		Total:         total,
		IdempotencyKey: req.IdempotencyKey,
	}
	for _, l := range lines {
		order.Lines = append(order.Lines, model.SaleOrderLine{
			VariantID:      l.variant.ID,
			Quantity:       l.qty,
			UnitPrice:      l.variant.UnitPrice,
			DiscountPct:    l.pct,
			DiscountAmount: l.amount,
			LineTotal:      l.total,
		})
	}
	order.Tenders = tenders

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		number, err := s.orders.NextOrderNumber(ctx, tx)
		if err != nil {
			return err
		}
		order.Number = number

		if err := s.orders.Create(ctx, tx, order); err != nil {
			return err
		}

		for _, d := range deltas {
			if err := s.stock.ApplyDeltaTx(ctx, tx, d, model.StockOriginSale, &order.ID,
				fmt.Sprintf("sale #%d", order.Number)); err != nil {
				return err
			}
		}

		for _, t := range order.Tenders {
			if caAccounts[t.AccountID] {
				entry := &model.CurrentAccountEntry{
					ClientID: clientID,
					OrderID:  order.ID,
					Total:    t.Amount,
					Balance:  t.Amount,
					Status:   model.CAEntryOpen,
				}
				if err := s.clients.CreateCurrentAccountEntryTx(tx, entry); err != nil {
					return err
				}
				continue
			}
			mov := &model.TreasuryMovement{
				SessionID:   session.ID,
				AccountID:   t.AccountID,
				Direction:   model.DirIngress,
				Kind:        model.MovementSale,
				Amount:      t.Amount,
				Description: fmt.Sprintf("sale #%d", order.Number),
				OrderID:     &order.ID,
			}
			if err := s.tills.CreateMovementTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := orderToResponse(order)
	return &resp, nil
}

// priceLines looks up each variant and computes line totals. The
// percentage discount applies to the gross first, then the fixed amount
// is subtracted; a line never goes negative.
func (s *saleService) priceLines(ctx context.Context, reqLines []dto.SaleLineRequest) (lines []pricedLine, subtotal, discountTotal, total decimal.Decimal, err error) {
	if len(reqLines) == 0 {
		err = ErrEmptyLines
		return
	}
	hundred := decimal.NewFromInt(100)
	for _, rl := range reqLines {
		if rl.Quantity <= 0 {
			err = ErrInvalidQuantity
			return
		}
		var variantID uuid.UUID
		variantID, err = uuid.Parse(rl.VariantID)
		if err != nil {
			err = fmt.Errorf("invalid variant id %q: %w", rl.VariantID, err)
			return
		}
		var v *model.Variant
		v, err = s.variants.FindByID(ctx, variantID)
		if err != nil {
			err = fmt.Errorf("variant %s not found: %w", variantID, err)
			return
		}

		gross := v.UnitPrice.Mul(decimal.NewFromInt(int64(rl.Quantity)))
		lineTotal := gross
		if rl.DiscountPct.IsPositive() {
			lineTotal = lineTotal.Sub(lineTotal.Mul(rl.DiscountPct).Div(hundred)).Round(2)
		}
		if rl.DiscountAmount.IsPositive() {
			lineTotal = lineTotal.Sub(rl.DiscountAmount)
		}
		if lineTotal.IsNegative() {
			err = fmt.Errorf("discounts exceed line value for variant %s", v.Name)
			return
		}

		lines = append(lines, pricedLine{
			variant: v,
			qty:     rl.Quantity,
			pct:     rl.DiscountPct,
			amount:  rl.DiscountAmount,
			gross:   gross,
			total:   lineTotal,
		})
		subtotal = subtotal.Add(gross)
		total = total.Add(lineTotal)
	}
	discountTotal = subtotal.Sub(total)
	return
}

// checkTenders validates the tender set against the order total and
// returns the model tenders plus the set of current-account account IDs
// among them.
func (s *saleService) checkTenders(ctx context.Context, reqTenders []dto.TenderRequest, total decimal.Decimal) ([]model.PaymentTender, map[uuid.UUID]bool, error) {
	if len(reqTenders) == 0 {
		return nil, nil, ErrEmptyTenders
	}

	seen := make(map[uuid.UUID]bool, len(reqTenders))
	caAccounts := make(map[uuid.UUID]bool)
	tenders := make([]model.PaymentTender, 0, len(reqTenders))
	sum := decimal.Zero

	for _, rt := range reqTenders {
		accountID, err := uuid.Parse(rt.AccountID)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid account id %q: %w", rt.AccountID, err)
		}
		if seen[accountID] {
			return nil, nil, ErrDuplicateTenderAccount
		}
		seen[accountID] = true

		if !rt.Amount.IsPositive() {
			return nil, nil, fmt.Errorf("%w: tender amounts must be positive", ErrTenderMismatch)
		}

		account, err := s.accounts.FindByID(ctx, accountID)
		if err != nil {
			return nil, nil, fmt.Errorf("treasury account %s not found: %w", accountID, err)
		}
		if !account.Active {
			return nil, nil, fmt.Errorf("treasury account %s is inactive", account.Name)
		}
		if account.IsCurrentAccount() {
			caAccounts[accountID] = true
		}

		tenders = append(tenders, model.PaymentTender{AccountID: accountID, Amount: rt.Amount})
		sum = sum.Add(rt.Amount)
	}

	if !sum.Equal(total) {
		return nil, nil, fmt.Errorf("%w: tenders %s, total %s", ErrTenderMismatch, sum, total)
	}
	return tenders, caAccounts, nil
}

func (s *saleService) GetOrder(ctx context.Context, id uuid.UUID) (*dto.SaleOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	resp := orderToResponse(order)
	return &resp, nil
}

func (s *saleService) ListOrders(ctx context.Context, req dto.OrderFilterRequest) (*dto.OrderListResponse, error) {
	filter := repository.OrderFilter{
		Date:         req.Date,
		DocumentType: req.DocumentType,
		Page:         req.Page,
		Limit:        req.Limit,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	orders, totalCount, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.OrderListResponse{
		Data:  make([]dto.SaleOrderResponse, 0, len(orders)),
		Total: totalCount,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range orders {
		resp.Data = append(resp.Data, orderToResponse(&orders[i]))
	}
	return resp, nil
}

func orderToResponse(o *model.SaleOrder) dto.SaleOrderResponse {
	resp := dto.SaleOrderResponse{
		ID:            o.ID.String(),
		Number:        o.Number,
		DocumentType:  o.DocumentType,
		ClientID:      o.ClientID.String(),
		TillSessionID: o.TillSessionID.String(),
		Subtotal:      o.Subtotal,
		DiscountTotal: o.DiscountTotal,
		Total:         o.Total,
		Annulled:      o.Annulled,
		CreatedAt:     o.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if o.ReversesOrderID != nil {
		s := o.ReversesOrderID.String()
		resp.ReversesOrderID = &s
	}
	for _, l := range o.Lines {
		lr := dto.SaleLineResponse{
			VariantID:      l.VariantID.String(),
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			DiscountPct:    l.DiscountPct,
			DiscountAmount: l.DiscountAmount,
			LineTotal:      l.LineTotal,
		}
		if l.Variant != nil {
			lr.Variant = l.Variant.Name
		}
		resp.Lines = append(resp.Lines, lr)
	}
	for _, t := range o.Tenders {
		tr := dto.TenderResponse{
			AccountID: t.AccountID.String(),
			Amount:    t.Amount,
		}
		if t.Account != nil {
			tr.Account = t.Account.Name
		}
		resp.Tenders = append(resp.Tenders, tr)
	}
	return resp
}
