package service

import (
	"context"
	"fmt"

	"tillengine/internal/dto"
	"tillengine/internal/model"
	"tillengine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditNoteService reverses sale orders. A reversal never edits or
// deletes the original: it issues a credit-note order with negated
// amounts, restocks the reversed quantities through inverse stock
// movements and writes egress treasury movements, all in one
// transaction. A full reversal also annuls the original and cancels
// any current-account debt it created.
type CreditNoteService interface {
	ReverseSale(ctx context.Context, role string, cashierID, orderID uuid.UUID, req dto.CreateCreditNoteRequest) (*dto.SaleOrderResponse, error)
}

type creditNoteService struct {
	orders   repository.OrderRepository
	accounts repository.AccountRepository
	clients  repository.ClientRepository
	tills    repository.TillRepository
	resolver ComboResolver
	stock    StockService
	policy   *Policy
}

func NewCreditNoteService(
	orders repository.OrderRepository,
	accounts repository.AccountRepository,
	clients repository.ClientRepository,
	tills repository.TillRepository,
	resolver ComboResolver,
	stock StockService,
	policy *Policy,
) CreditNoteService {
	return &creditNoteService{
		orders:   orders,
		accounts: accounts,
		clients:  clients,
		tills:    tills,
		resolver: resolver,
		stock:    stock,
		policy:   policy,
	}
}

// refundLine pairs an original line with the quantity being reversed
// and the amount to refund for it.
type refundLine struct {
	original *model.SaleOrderLine
	qty      int
	amount   decimal.Decimal
}

func (s *creditNoteService) ReverseSale(ctx context.Context, role string, cashierID, orderID uuid.UUID, req dto.CreateCreditNoteRequest) (*dto.SaleOrderResponse, error) {
	if err := s.policy.Authorize(role, OpReverseSale); err != nil {
		return nil, err
	}

	original, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if original.DocumentType != model.DocTypeSale {
		return nil, fmt.Errorf("%w: only sales can be reversed", ErrOrderNotFound)
	}
	if original.Annulled {
		return nil, ErrAlreadyAnnulled
	}

	// Reversal is posted against the operator's own open session, which
	// need not be the session that registered the sale.
	session, err := s.tills.FindOpenByCashier(ctx, cashierID)
	if err != nil {
		return nil, ErrTillNotOpen
	}

	lines, refundTotal, err := s.resolveRefundLines(original, req.Lines)
	if err != nil {
		return nil, err
	}
	full := refundTotal.Equal(original.Total)

	tenders, caAccounts, err := s.resolveRefundTenders(ctx, original, req.Tenders, refundTotal, full)
	if err != nil {
		return nil, err
	}

	note := &model.SaleOrder{
		DocumentType:    model.DocTypeCreditNote,
		ClientID:        original.ClientID,
		CashierID:       cashierID,
		TillSessionID:   session.ID,
		Subtotal:        refundTotal.Neg(),
		Total:           refundTotal.Neg(),
		ReversesOrderID: &original.ID,
	}
	for _, l := range lines {
		note.Lines = append(note.Lines, model.SaleOrderLine{
			VariantID: l.original.VariantID,
			Quantity:  l.qty,
			UnitPrice: l.original.UnitPrice,
			LineTotal: l.amount.Neg(),
		})
	}
	for _, t := range tenders {
		note.Tenders = append(note.Tenders, model.PaymentTender{
			AccountID: t.AccountID,
			Amount:    t.Amount.Neg(),
		})
	}

	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		number, err := s.orders.NextOrderNumber(ctx, tx)
		if err != nil {
			return err
		}
		note.Number = number

		if err := s.orders.Create(ctx, tx, note); err != nil {
			return err
		}

		// Restock: the sale's deltas, inverted.
		for _, l := range lines {
			deltas, err := s.resolver.Resolve(ctx, l.original.VariantID, l.qty)
			if err != nil {
				return err
			}
			for _, d := range deltas {
				d.Quantity = -d.Quantity
				if err := s.stock.ApplyDeltaTx(ctx, tx, d, model.StockOriginCreditNote, &note.ID,
					fmt.Sprintf("credit note #%d (%s)", note.Number, req.Reason)); err != nil {
					return err
				}
			}
		}

		for _, t := range tenders {
			if caAccounts[t.AccountID] {
				// Deferred-payment debt is cancelled, not refunded in cash.
				continue
			}
			mov := &model.TreasuryMovement{
				SessionID:   session.ID,
				AccountID:   t.AccountID,
				Direction:   model.DirEgress,
				Kind:        model.MovementRefund,
				Amount:      t.Amount,
				Description: fmt.Sprintf("credit note #%d for sale #%d", note.Number, original.Number),
				OrderID:     &note.ID,
			}
			if err := s.tills.CreateMovementTx(tx, mov); err != nil {
				return err
			}
		}

		if full {
			if err := s.clients.CancelCurrentAccountEntryTx(tx, original.ID); err != nil {
				return err
			}
			if err := s.orders.MarkAnnulledTx(tx, original.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := orderToResponse(note)
	return &resp, nil
}

// resolveRefundLines maps the requested lines onto the original order.
// An empty request reverses every line in full. A partial request must
// reference variants present in the original, with quantities no
// greater than sold; the refund per line is the original line total
// scaled by the reversed fraction.
func (s *creditNoteService) resolveRefundLines(original *model.SaleOrder, reqLines []dto.SaleLineRequest) ([]refundLine, decimal.Decimal, error) {
	byVariant := make(map[uuid.UUID]*model.SaleOrderLine, len(original.Lines))
	for i := range original.Lines {
		byVariant[original.Lines[i].VariantID] = &original.Lines[i]
	}

	var lines []refundLine
	total := decimal.Zero

	if len(reqLines) == 0 {
		for i := range original.Lines {
			l := &original.Lines[i]
			lines = append(lines, refundLine{original: l, qty: l.Quantity, amount: l.LineTotal})
			total = total.Add(l.LineTotal)
		}
		return lines, total, nil
	}

	for _, rl := range reqLines {
		variantID, err := uuid.Parse(rl.VariantID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("invalid variant id %q: %w", rl.VariantID, err)
		}
		orig, ok := byVariant[variantID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("variant %s is not part of the original order", variantID)
		}
		if rl.Quantity <= 0 {
			return nil, decimal.Zero, ErrInvalidQuantity
		}
		if rl.Quantity > orig.Quantity {
			return nil, decimal.Zero, fmt.Errorf("cannot reverse %d of variant %s, only %d sold",
				rl.Quantity, variantID, orig.Quantity)
		}

		amount := orig.LineTotal
		if rl.Quantity < orig.Quantity {
			amount = orig.LineTotal.
				Mul(decimal.NewFromInt(int64(rl.Quantity))).
				Div(decimal.NewFromInt(int64(orig.Quantity))).
				Round(2)
		}
		lines = append(lines, refundLine{original: orig, qty: rl.Quantity, amount: amount})
		total = total.Add(amount)
	}
	return lines, total, nil
}

// resolveRefundTenders decides which accounts receive the refund. An
// empty request mirrors the original tenders and is only valid for a
// full reversal; a partial reversal must state its tenders explicitly,
// summing exactly to the refund total.
func (s *creditNoteService) resolveRefundTenders(ctx context.Context, original *model.SaleOrder, reqTenders []dto.TenderRequest, refundTotal decimal.Decimal, full bool) ([]model.PaymentTender, map[uuid.UUID]bool, error) {
	caAccounts := make(map[uuid.UUID]bool)

	if len(reqTenders) == 0 {
		if !full {
			return nil, nil, fmt.Errorf("%w: partial reversal requires explicit tenders", ErrTenderMismatch)
		}
		tenders := make([]model.PaymentTender, 0, len(original.Tenders))
		for _, t := range original.Tenders {
			account, err := s.accounts.FindByID(ctx, t.AccountID)
			if err != nil {
				return nil, nil, fmt.Errorf("treasury account %s not found: %w", t.AccountID, err)
			}
			if account.IsCurrentAccount() {
				caAccounts[t.AccountID] = true
			}
			tenders = append(tenders, model.PaymentTender{AccountID: t.AccountID, Amount: t.Amount})
		}
		return tenders, caAccounts, nil
	}

	seen := make(map[uuid.UUID]bool, len(reqTenders))
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
		if account.IsCurrentAccount() {
			caAccounts[accountID] = true
		}
		tenders = append(tenders, model.PaymentTender{AccountID: accountID, Amount: rt.Amount})
		sum = sum.Add(rt.Amount)
	}
	if !sum.Equal(refundTotal) {
		return nil, nil, fmt.Errorf("%w: tenders %s, refund total %s", ErrTenderMismatch, sum, refundTotal)
	}
	return tenders, caAccounts, nil
}
