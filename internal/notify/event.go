// Package notify is the notification hook: a fire-and-forget side effect
// invoked after a committed booking or cancellation.  Failures here are
// logged and counted, never propagated back into the ledger transaction.
package notify

// Event actions.
const (
	ActionBooked    = "booked"
	ActionCancelled = "cancelled"
)

// ReservationEvent is published after a booking or cancellation commits.  It
// carries enough for downstream consumers (confirmation mail, entry QR,
// analytics) to act without querying the primary database.
type ReservationEvent struct {
	BookingRef   string `json:"booking_ref"`
	Action       string `json:"action"`
	AccountEmail string `json:"account_email"`
	Slot         string `json:"slot"`
	SeatNumber   uint32 `json:"seat_number"`
	OccurredAt   string `json:"occurred_at"`
}
