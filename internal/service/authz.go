package service

import "tillengine/internal/model"

// Operation names every mutating or sensitive action gated by the
// authorization policy.
type Operation string

const (
	OpCreateSale     Operation = "sale.create"
	OpReverseSale    Operation = "sale.reverse"
	OpOpenTill       Operation = "till.open"
	OpCloseTill      Operation = "till.close"
	OpReconcileTill  Operation = "till.reconcile"
	OpManualMovement Operation = "till.manual_movement"
	OpAdjustStock    Operation = "stock.adjust"
	OpManageUsers    Operation = "users.manage"
)

// Policy is the single authorization gate consulted at the start of
// every mutating operation, parameterized by (role, operation). It
// replaces scattered per-handler role checks so the full permission
// matrix lives in one place.
type Policy struct {
	allowed map[Operation]map[string]bool
}

// NewPolicy builds the default permission matrix:
//   - cashiers run the counter: sales, their own till, reconciliation
//   - supervisors additionally reverse sales and adjust stock/treasury
//   - admins can do everything including user management
func NewPolicy() *Policy {
	grants := map[Operation][]string{
		OpCreateSale:     {model.RoleCashier, model.RoleSupervisor, model.RoleAdmin},
		OpOpenTill:       {model.RoleCashier, model.RoleSupervisor, model.RoleAdmin},
		OpCloseTill:      {model.RoleCashier, model.RoleSupervisor, model.RoleAdmin},
		OpReconcileTill:  {model.RoleCashier, model.RoleSupervisor, model.RoleAdmin},
		OpReverseSale:    {model.RoleSupervisor, model.RoleAdmin},
		OpManualMovement: {model.RoleSupervisor, model.RoleAdmin},
		OpAdjustStock:    {model.RoleSupervisor, model.RoleAdmin},
		OpManageUsers:    {model.RoleAdmin},
	}

	allowed := make(map[Operation]map[string]bool, len(grants))
	for op, roles := range grants {
		m := make(map[string]bool, len(roles))
		for _, r := range roles {
			m[r] = true
		}
		allowed[op] = m
	}
	return &Policy{allowed: allowed}
}

// Authorize returns ErrNotAuthorized unless role may perform op.
func (p *Policy) Authorize(role string, op Operation) error {
	if !p.allowed[op][role] {
		return ErrNotAuthorized
	}
	return nil
}

// Roles returns the roles granted an operation, for route registration.
func (p *Policy) Roles(op Operation) []string {
	roles := make([]string, 0, len(p.allowed[op]))
	for _, r := range []string{model.RoleCashier, model.RoleSupervisor, model.RoleAdmin} {
		if p.allowed[op][r] {
			roles = append(roles, r)
		}
	}
	return roles
}
