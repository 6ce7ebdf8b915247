package model

import "github.com/shopspring/decimal"

// Direction says which way a booking transaction moves money: a debit books
// the seat and charges the fee, a credit frees the seat and refunds it.
type Direction int

const (
	Debit Direction = iota
	Credit
)

// BookingTransaction is the atomic unit applied by a ledger store: the seat
// flip and the balance delta for one account.  It is never persisted as its
// own table; it describes the two-row update the store must commit or roll
// back as a whole.
type BookingTransaction struct {
	AccountID  uint64
	Slot       string
	SeatNumber uint32
	Fee        decimal.Decimal
	Direction  Direction
}
