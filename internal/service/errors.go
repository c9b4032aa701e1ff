package service

import "errors"

// Terminal errors surfaced by the engine. Handlers map them to HTTP
// statuses; services wrap them with fmt.Errorf("%w") when context helps.
var (
	// Validation — rejected before any write occurs.
	ErrEmptyLines             = errors.New("order must contain at least one line")
	ErrInvalidQuantity        = errors.New("line quantity must be positive")
	ErrEmptyTenders           = errors.New("order must contain at least one tender")
	ErrDuplicateTenderAccount = errors.New("tenders must reference distinct treasury accounts")
	ErrTenderMismatch         = errors.New("tender amounts must sum exactly to the order total")

	// State
	ErrTillAlreadyOpen = errors.New("cashier already has an open till session")
	ErrTillNotOpen     = errors.New("no open till session")
	ErrAlreadyAnnulled = errors.New("order is already annulled")
	ErrSessionNotFound = errors.New("till session not found")
	ErrOrderNotFound   = errors.New("order not found")

	// Credit policy
	ErrInvalidClientForCredit = errors.New("walk-in client cannot use current-account payment")
	ErrCreditLimitExceeded    = errors.New("order total exceeds the client's credit limit")

	// Stock
	ErrInsufficientStock = errors.New("insufficient stock for requested quantity")
	ErrUnresolvableCombo = errors.New("combo component variant cannot be resolved")

	// Authorization
	ErrNotAuthorized = errors.New("role is not allowed to perform this operation")
)
