// Package ledger owns the atomic seat/balance state transitions.  All
// booking and cancellation traffic, from any surface, goes through the one
// Ledger in this package.
package ledger

import "errors"

// Sentinel errors returned by Book and Cancel, one per violated
// precondition.  Handlers translate them with errors.Is; every failure names
// the exact precondition that failed, never a generic "operation failed".
var (
	// ErrAccountNotFound means the identity does not match any account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrUnknownSlot means the slot label is not in the catalog.
	ErrUnknownSlot = errors.New("unknown slot")

	// ErrSeatOutOfRange means the seat number is outside [1, capacity].
	ErrSeatOutOfRange = errors.New("seat number out of range")

	// ErrSeatTaken means a book attempt found the seat already held.
	ErrSeatTaken = errors.New("seat already booked")

	// ErrNotBooked means a cancel attempt found the seat free.
	ErrNotBooked = errors.New("seat is not booked")

	// ErrNotOwner means a cancel attempt came from an account that is not
	// the seat's holder.  This must never silently succeed.
	ErrNotOwner = errors.New("seat booked by a different account")

	// ErrInsufficientFunds means the account balance is below the fee.
	ErrInsufficientFunds = errors.New("insufficient balance")

	// ErrSeatBusy means the per-seat lock could not be acquired within the
	// configured wait; the caller should retry shortly.
	ErrSeatBusy = errors.New("seat is busy, retry shortly")
)
