package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Notifier delivers reservation events to whatever is listening.  Publish is
// best-effort: the ledger calls it after commit, ignores the error beyond
// logging, and never rolls back on failure.
type Notifier interface {
	Publish(ctx context.Context, ev ReservationEvent) error
}

// LogNotifier writes events to the service log.  It is the fallback when no
// broker is configured and keeps the hook contract observable in dev.
type LogNotifier struct {
	Log *logrus.Logger
}

// NewLogNotifier returns a LogNotifier bound to log.
func NewLogNotifier(log *logrus.Logger) *LogNotifier { return &LogNotifier{Log: log} }

// Publish logs the event and always succeeds.
func (n *LogNotifier) Publish(_ context.Context, ev ReservationEvent) error {
	n.Log.WithFields(logrus.Fields{
		"booking_ref": ev.BookingRef,
		"action":      ev.Action,
		"account":     ev.AccountEmail,
		"slot":        ev.Slot,
		"seat":        ev.SeatNumber,
	}).Info("reservation event")
	return nil
}
