// Package service implements the application use-cases on top of storage,
// the ledger engine, auth, cache and email. Every balance-affecting mutation
// runs the full recomputation cascade before returning.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound is returned when no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrFriendNotFound is returned when no active friend matches the lookup.
	ErrFriendNotFound = errors.New("friend not found")

	// ErrTransactionNotFound is returned when no active transaction matches
	// the lookup.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateFriend is returned when adding a friend whose email already
	// belongs to one of the user's active friends.
	ErrDuplicateFriend = errors.New("friend with this email already exists")

	// ErrNothingToSettle is returned when settling a friend whose balance is
	// already within tolerance of zero.
	ErrNothingToSettle = errors.New("no outstanding balance to settle")

	// ErrInvalidCode is returned for a wrong, malformed or expired
	// verification code or reset token.
	ErrInvalidCode = errors.New("invalid or expired code")

	// ErrValidation wraps input validation failures so the API layer can map
	// them to 400 without inspecting messages.
	ErrValidation = errors.New("validation failed")
)

// UnsettledBalanceError rejects a friend deletion while money is still owed.
// The outstanding balance is carried so the API can report it.
type UnsettledBalanceError struct {
	Balance float64
}

func (e *UnsettledBalanceError) Error() string {
	return fmt.Sprintf("cannot delete friend with unsettled balance of %.2f", e.Balance)
}
