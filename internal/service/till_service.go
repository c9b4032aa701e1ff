package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tillengine/internal/dto"
	"tillengine/internal/model"
	"tillengine/internal/repository"
	"tillengine/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TillService manages the cashier session lifecycle: Closed → Open →
// Closed. POLICY: the one-open-session invariant is scoped per cashier,
// backed by a partial unique index so two concurrent opens cannot both
// succeed.
type TillService interface {
	Open(ctx context.Context, role string, cashierID uuid.UUID, req dto.OpenTillRequest) (*dto.TillSessionResponse, error)
	Close(ctx context.Context, role string, req dto.CloseTillRequest) (*dto.TillSessionResponse, error)
	RegisterManualMovement(ctx context.Context, role string, req dto.ManualMovementRequest) error
	GetActive(ctx context.Context, cashierID uuid.UUID) (*dto.TillSessionResponse, error)
	History(ctx context.Context, page, limit int) (*dto.TillHistoryResponse, error)

	// RequireOpenForCashier is called by the order processors: the
	// session must exist, be open, and belong to the requesting cashier.
	RequireOpenForCashier(ctx context.Context, sessionID, cashierID uuid.UUID) (*model.TillSession, error)
}

type tillService struct {
	repo       repository.TillRepository
	accounts   repository.AccountRepository
	policy     *Policy
	dispatcher *worker.Dispatcher
}

func NewTillService(repo repository.TillRepository, accounts repository.AccountRepository, policy *Policy, dispatcher *worker.Dispatcher) TillService {
	return &tillService{repo: repo, accounts: accounts, policy: policy, dispatcher: dispatcher}
}

func (s *tillService) Open(ctx context.Context, role string, cashierID uuid.UUID, req dto.OpenTillRequest) (*dto.TillSessionResponse, error) {
	if err := s.policy.Authorize(role, OpOpenTill); err != nil {
		return nil, err
	}
	if req.OpeningBalance.IsNegative() {
		return nil, errors.New("opening balance cannot be negative")
	}

	cashAccount, err := s.accounts.FindDefaultCash(ctx)
	if err != nil {
		return nil, fmt.Errorf("no default cash account configured: %w", err)
	}

	session := &model.TillSession{
		CashierID:      cashierID,
		RegisterID:     req.RegisterID,
		OpeningBalance: req.OpeningBalance,
		Status:         model.TillOpen,
		Notes:          req.Notes,
		OpenedAt:       time.Now().UTC(),
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Check-then-insert runs inside the transaction; the partial
		// unique index on (cashier_id) WHERE status='open' catches the
		// race two concurrent opens would otherwise win together.
		if existing, err := s.repo.FindOpenByCashier(ctx, cashierID); err == nil && existing != nil {
			return ErrTillAlreadyOpen
		}
		if err := s.repo.CreateSessionTx(tx, session); err != nil {
			return err
		}

		seed := &model.TreasuryMovement{
			SessionID:   session.ID,
			AccountID:   cashAccount.ID,
			Direction:   model.DirIngress,
			Kind:        model.MovementOpeningBalance,
			Amount:      req.OpeningBalance,
			Description: fmt.Sprintf("Opening balance, register %d", req.RegisterID),
		}
		return s.repo.CreateMovementTx(tx, seed)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := sessionToResponse(session)
	return &resp, nil
}

func (s *tillService) Close(ctx context.Context, role string, req dto.CloseTillRequest) (*dto.TillSessionResponse, error) {
	if err := s.policy.Authorize(role, OpCloseTill); err != nil {
		return nil, err
	}
	sessionID, err := uuid.Parse(req.TillSessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid till_session_id: %w", err)
	}

	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if session.Status != model.TillOpen {
		return nil, ErrTillNotOpen
	}

	now := time.Now().UTC()
	session.Status = model.TillClosed
	session.ClosedAt = &now
	if req.Notes != nil {
		session.Notes = req.Notes
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateSessionTx(tx, session)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Close-out report delivery is best-effort and asynchronous.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueCloseReport(ctx, worker.CloseReportPayload{
			SessionID: session.ID.String(),
		})
	}

	resp := sessionToResponse(session)
	return &resp, nil
}

// RegisterManualMovement writes an ad-hoc ingress/egress against an
// open session. Movements are immutable — no update or delete exists.
func (s *tillService) RegisterManualMovement(ctx context.Context, role string, req dto.ManualMovementRequest) error {
	if err := s.policy.Authorize(role, OpManualMovement); err != nil {
		return err
	}
	sessionID, err := uuid.Parse(req.TillSessionID)
	if err != nil {
		return fmt.Errorf("invalid till_session_id: %w", err)
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return fmt.Errorf("invalid account_id: %w", err)
	}

	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return ErrSessionNotFound
	}
	if session.Status != model.TillOpen {
		return ErrTillNotOpen
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("treasury account not found: %w", err)
	}
	if account.IsCurrentAccount() {
		return errors.New("manual movements cannot target the current account")
	}

	mov := &model.TreasuryMovement{
		SessionID:   sessionID,
		AccountID:   accountID,
		Direction:   req.Direction,
		Kind:        model.MovementManual,
		Amount:      req.Amount,
		Description: req.Description,
	}
	return s.repo.CreateMovement(ctx, mov)
}

func (s *tillService) GetActive(ctx context.Context, cashierID uuid.UUID) (*dto.TillSessionResponse, error) {
	session, err := s.repo.FindOpenByCashier(ctx, cashierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if session == nil {
		return nil, nil
	}
	resp := sessionToResponse(session)
	return &resp, nil
}

func (s *tillService) History(ctx context.Context, page, limit int) (*dto.TillHistoryResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	sessions, total, err := s.repo.History(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TillSessionResponse, 0, len(sessions))
	for i := range sessions {
		items = append(items, sessionToResponse(&sessions[i]))
	}
	return &dto.TillHistoryResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *tillService) RequireOpenForCashier(ctx context.Context, sessionID, cashierID uuid.UUID) (*model.TillSession, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if session.Status != model.TillOpen {
		return nil, ErrTillNotOpen
	}
	if session.CashierID != cashierID {
		return nil, fmt.Errorf("%w: session belongs to another cashier", ErrTillNotOpen)
	}
	return session, nil
}

func sessionToResponse(s *model.TillSession) dto.TillSessionResponse {
	resp := dto.TillSessionResponse{
		ID:             s.ID.String(),
		CashierID:      s.CashierID.String(),
		RegisterID:     s.RegisterID,
		OpeningBalance: s.OpeningBalance,
		Status:         s.Status,
		Notes:          s.Notes,
		OpenedAt:       s.OpenedAt.Format("2006-01-02T15:04:05Z"),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format("2006-01-02T15:04:05Z")
		resp.ClosedAt = &t
	}
	return resp
}
