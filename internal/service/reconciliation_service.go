package service

import (
	"context"
	"fmt"

	"tillengine/internal/dto"
	"tillengine/internal/model"
	"tillengine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconciliationService aggregates a session's treasury ledger into the
// close-out report. It is strictly read-only and idempotent: repeated
// calls on the same session — open or long closed — produce identical
// reports.
type ReconciliationService interface {
	Reconcile(ctx context.Context, sessionID uuid.UUID) (*dto.ReconciliationReport, error)
}

type reconciliationService struct {
	tills   repository.TillRepository
	orders  repository.OrderRepository
	clients repository.ClientRepository
}

func NewReconciliationService(tills repository.TillRepository, orders repository.OrderRepository, clients repository.ClientRepository) ReconciliationService {
	return &reconciliationService{tills: tills, orders: orders, clients: clients}
}

func (s *reconciliationService) Reconcile(ctx context.Context, sessionID uuid.UUID) (*dto.ReconciliationReport, error) {
	session, err := s.tills.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	sums, err := s.tills.SumMovementsByAccount(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("aggregating treasury movements: %w", err)
	}

	rows := make([]dto.AccountReportRow, 0, len(sums))
	totalIngress := decimal.Zero
	totalEgress := decimal.Zero
	for _, sum := range sums {
		rows = append(rows, dto.AccountReportRow{
			AccountID: sum.AccountID.String(),
			Account:   sum.AccountName,
			Kind:      sum.AccountKind,
			Ingress:   sum.Ingress,
			Egress:    sum.Egress,
		})
		// Deferred-payment accounts are receivables, not drawer cash.
		if sum.AccountKind == model.KindCurrentAccount {
			continue
		}
		totalIngress = totalIngress.Add(sum.Ingress)
		totalEgress = totalEgress.Add(sum.Egress)
	}

	caTotal, err := s.clients.SumCurrentAccountBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("aggregating current-account entries: %w", err)
	}

	orderCount, err := s.orders.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	report := &dto.ReconciliationReport{
		TillSessionID:       session.ID.String(),
		RegisterID:          session.RegisterID,
		CashierID:           session.CashierID.String(),
		Status:              session.Status,
		OpeningBalance:      session.OpeningBalance,
		Accounts:            rows,
		TotalIngress:        totalIngress,
		TotalEgress:         totalEgress,
		CurrentAccountTotal: caTotal,
		FinalCashBalance:    session.OpeningBalance.Add(totalIngress).Sub(totalEgress),
		OrderCount:          orderCount,
		OpenedAt:            session.OpenedAt.Format("2006-01-02T15:04:05Z"),
	}
	if session.ClosedAt != nil {
		t := session.ClosedAt.Format("2006-01-02T15:04:05Z")
		report.ClosedAt = &t
	}
	return report, nil
}
