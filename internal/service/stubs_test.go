package service_test

import (
	"context"

	"tillengine/internal/model"
	"tillengine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. The services open no real transaction in
// unit-test mode (nil DB), so every *Tx method accepts a nil *gorm.DB.

// ── Variants ─────────────────────────────────────────────────────────────────

type stubVariantRepo struct {
	variants map[uuid.UUID]*model.Variant
	links    map[uuid.UUID]*model.ConsumptionLink
}

func newStubVariantRepo() *stubVariantRepo {
	return &stubVariantRepo{
		variants: make(map[uuid.UUID]*model.Variant),
		links:    make(map[uuid.UUID]*model.ConsumptionLink),
	}
}

func (r *stubVariantRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Variant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVariantRepo) FindByBarcode(_ context.Context, barcode string) (*model.Variant, error) {
	for _, v := range r.variants {
		if v.Barcode != nil && *v.Barcode == barcode {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubVariantRepo) FindConsumptionLink(_ context.Context, variantID uuid.UUID) (*model.ConsumptionLink, error) {
	l, ok := r.links[variantID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return l, nil
}

func (r *stubVariantRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Variant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	// The real repository loads a fresh row from the DB, so callers get a
	// snapshot rather than an alias of the stored record.
	snapshot := *v
	return &snapshot, nil
}

func (r *stubVariantRepo) AdjustStockTx(_ *gorm.DB, id uuid.UUID, delta int) (int64, error) {
	v, ok := r.variants[id]
	if !ok {
		return 0, nil
	}
	if v.StockOnHand+delta < 0 {
		return 0, nil
	}
	v.StockOnHand += delta
	return 1, nil
}

func (r *stubVariantRepo) DB() *gorm.DB { return nil }

var _ repository.VariantRepository = (*stubVariantRepo)(nil)

func seedVariant(r *stubVariantRepo, name string, price decimal.Decimal, stock int) *model.Variant {
	v := &model.Variant{
		ID:          uuid.New(),
		Name:        name,
		UnitPrice:   price,
		StockOnHand: stock,
		Active:      true,
	}
	r.variants[v.ID] = v
	return v
}

func seedLink(r *stubVariantRepo, variantID, componentID uuid.UUID, units int) {
	r.links[variantID] = &model.ConsumptionLink{
		ID:                 uuid.New(),
		VariantID:          variantID,
		ComponentVariantID: componentID,
		Units:              units,
		Active:             true,
	}
}

// ── Orders ───────────────────────────────────────────────────────────────────

type stubOrderRepo struct {
	orders    map[uuid.UUID]*model.SaleOrder
	byIdemKey map[string]*model.SaleOrder
	seq       int
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders:    make(map[uuid.UUID]*model.SaleOrder),
		byIdemKey: make(map[string]*model.SaleOrder),
	}
}

func (r *stubOrderRepo) Create(_ context.Context, _ *gorm.DB, o *model.SaleOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.orders[o.ID] = o
	if o.IdempotencyKey != nil {
		r.byIdemKey[*o.IdempotencyKey] = o
	}
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SaleOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) FindByIdempotencyKey(_ context.Context, key string) (*model.SaleOrder, error) {
	o, ok := r.byIdemKey[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) MarkAnnulledTx(_ *gorm.DB, id uuid.UUID) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Annulled = true
	return nil
}

func (r *stubOrderRepo) NextOrderNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubOrderRepo) List(_ context.Context, _ repository.OrderFilter) ([]model.SaleOrder, int64, error) {
	out := make([]model.SaleOrder, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) CountBySession(_ context.Context, sessionID uuid.UUID) (int64, error) {
	var n int64
	for _, o := range r.orders {
		if o.TillSessionID == sessionID && !o.Annulled {
			n++
		}
	}
	return n, nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// ── Till sessions and treasury movements ─────────────────────────────────────

type stubTillRepo struct {
	sessions  map[uuid.UUID]*model.TillSession
	movements []model.TreasuryMovement
	accounts  *stubAccountRepo
}

func newStubTillRepo(accounts *stubAccountRepo) *stubTillRepo {
	return &stubTillRepo{sessions: make(map[uuid.UUID]*model.TillSession), accounts: accounts}
}

func (r *stubTillRepo) CreateSessionTx(_ *gorm.DB, s *model.TillSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *stubTillRepo) FindOpenByCashier(_ context.Context, cashierID uuid.UUID) (*model.TillSession, error) {
	for _, s := range r.sessions {
		if s.CashierID == cashierID && s.Status == model.TillOpen {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTillRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*model.TillSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubTillRepo) UpdateSessionTx(_ *gorm.DB, s *model.TillSession) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *stubTillRepo) CreateMovement(_ context.Context, m *model.TreasuryMovement) error {
	return r.CreateMovementTx(nil, m)
}

func (r *stubTillRepo) CreateMovementTx(_ *gorm.DB, m *model.TreasuryMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubTillRepo) ListMovements(_ context.Context, sessionID uuid.UUID) ([]model.TreasuryMovement, error) {
	var out []model.TreasuryMovement
	for _, m := range r.movements {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubTillRepo) SumMovementsByAccount(_ context.Context, sessionID uuid.UUID) ([]repository.AccountSum, error) {
	sums := make(map[uuid.UUID]*repository.AccountSum)
	for _, m := range r.movements {
		if m.SessionID != sessionID || m.Kind == model.MovementOpeningBalance {
			continue
		}
		sum, ok := sums[m.AccountID]
		if !ok {
			sum = &repository.AccountSum{
				AccountID: m.AccountID,
				Ingress:   decimal.Zero,
				Egress:    decimal.Zero,
			}
			if a, ok := r.accounts.accounts[m.AccountID]; ok {
				sum.AccountName = a.Name
				sum.AccountKind = a.Kind
			}
			sums[m.AccountID] = sum
		}
		if m.Direction == model.DirIngress {
			sum.Ingress = sum.Ingress.Add(m.Amount)
		} else {
			sum.Egress = sum.Egress.Add(m.Amount)
		}
	}
	out := make([]repository.AccountSum, 0, len(sums))
	for _, s := range sums {
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubTillRepo) History(_ context.Context, _, _ int) ([]model.TillSession, int64, error) {
	out := make([]model.TillSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubTillRepo) DB() *gorm.DB { return nil }

var _ repository.TillRepository = (*stubTillRepo)(nil)

// movementsFor filters the captured ledger by session and kind.
func (r *stubTillRepo) movementsFor(sessionID uuid.UUID, kind string) []model.TreasuryMovement {
	var out []model.TreasuryMovement
	for _, m := range r.movements {
		if m.SessionID == sessionID && m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// ── Treasury accounts ────────────────────────────────────────────────────────

type stubAccountRepo struct {
	accounts map[uuid.UUID]*model.TreasuryAccount
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[uuid.UUID]*model.TreasuryAccount)}
}

func (r *stubAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TreasuryAccount, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubAccountRepo) FindDefaultCash(_ context.Context) (*model.TreasuryAccount, error) {
	for _, a := range r.accounts {
		if a.Kind == model.KindCash && a.IsDefault && a.Active {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubAccountRepo) List(_ context.Context) ([]model.TreasuryAccount, error) {
	out := make([]model.TreasuryAccount, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	return out, nil
}

var _ repository.AccountRepository = (*stubAccountRepo)(nil)

func seedAccount(r *stubAccountRepo, name, kind string, isDefault bool) *model.TreasuryAccount {
	a := &model.TreasuryAccount{
		ID:        uuid.New(),
		Name:      name,
		Kind:      kind,
		IsDefault: isDefault,
		Active:    true,
	}
	r.accounts[a.ID] = a
	return a
}

// ── Clients and current-account entries ──────────────────────────────────────

type stubClientRepo struct {
	clients map[uuid.UUID]*model.Client
	entries []model.CurrentAccountEntry
	orders  *stubOrderRepo
}

func newStubClientRepo(orders *stubOrderRepo) *stubClientRepo {
	return &stubClientRepo{clients: make(map[uuid.UUID]*model.Client), orders: orders}
}

func (r *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClientRepo) CreateCurrentAccountEntryTx(_ *gorm.DB, e *model.CurrentAccountEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubClientRepo) ListCurrentAccountEntries(_ context.Context, clientID uuid.UUID) ([]model.CurrentAccountEntry, error) {
	var out []model.CurrentAccountEntry
	for _, e := range r.entries {
		if e.ClientID == clientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubClientRepo) CancelCurrentAccountEntryTx(_ *gorm.DB, orderID uuid.UUID) error {
	for i := range r.entries {
		if r.entries[i].OrderID == orderID && r.entries[i].Status == model.CAEntryOpen {
			r.entries[i].Status = model.CAEntryCancelled
		}
	}
	return nil
}

func (r *stubClientRepo) SumCurrentAccountBySession(_ context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range r.entries {
		if e.Status == model.CAEntryCancelled {
			continue
		}
		o, ok := r.orders.orders[e.OrderID]
		if !ok || o.TillSessionID != sessionID {
			continue
		}
		total = total.Add(e.Total)
	}
	return total, nil
}

var _ repository.ClientRepository = (*stubClientRepo)(nil)

func seedClient(r *stubClientRepo, name string, walkIn bool, creditLimit decimal.Decimal) *model.Client {
	c := &model.Client{
		ID:          uuid.New(),
		Name:        name,
		WalkIn:      walkIn,
		CreditLimit: creditLimit,
		Active:      true,
	}
	r.clients[c.ID] = c
	return c
}

// ── Stock movements ──────────────────────────────────────────────────────────

type stubStockMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubStockMovementRepo) Create(_ context.Context, m *model.StockMovement) error {
	return r.CreateTx(nil, m)
}

func (r *stubStockMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubStockMovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.VariantID != nil && m.VariantID != *filter.VariantID {
			continue
		}
		if filter.Origin != "" && m.Origin != filter.Origin {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.StockMovementRepository = (*stubStockMovementRepo)(nil)
