package svcerr

import "errors"

var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrLimitExceeded      = errors.New("number exposure limit exceeded")
	ErrInvalidDraw        = errors.New("invalid or closed draw")
	ErrDuplicateTicket    = errors.New("duplicate ticket code")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountSuspended   = errors.New("account is not active")
	ErrBetNotFound        = errors.New("bet not found")
	ErrBetNotPending      = errors.New("bet is not pending")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Code maps a service error to the machine-readable message returned to
// callers.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, ErrLimitExceeded):
		return "LIMIT_EXCEEDED"
	case errors.Is(err, ErrInvalidDraw):
		return "INVALID_DRAW"
	case errors.Is(err, ErrAccountNotFound):
		return "ACCOUNT_NOT_FOUND"
	case errors.Is(err, ErrAccountSuspended):
		return "ACCOUNT_SUSPENDED"
	case errors.Is(err, ErrBetNotFound):
		return "BET_NOT_FOUND"
	case errors.Is(err, ErrBetNotPending):
		return "BET_NOT_PENDING"
	case errors.Is(err, ErrServiceUnavailable):
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// IsBusiness reports whether the error is a business-rule rejection that
// should abort without retry and be returned to the caller verbatim.
func IsBusiness(err error) bool {
	for _, target := range []error{
		ErrInsufficientFunds,
		ErrLimitExceeded,
		ErrInvalidDraw,
		ErrAccountNotFound,
		ErrAccountSuspended,
		ErrBetNotFound,
		ErrBetNotPending,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
