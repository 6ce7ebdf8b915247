package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/bluereserve/cafeteria-seat-reservation/internal/catalog"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/model"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/notify"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/observability"
)

// Store is the persistence boundary the ledger drives.  ApplyBooking must be
// atomic: either the seat flip and the balance delta both commit, or neither
// does, and it must re-verify the seat/funds preconditions under its own
// transaction so cross-process races still resolve to one winner.  The SQL
// implementation uses SELECT ... FOR UPDATE inside one sql.Tx; the in-memory
// implementation applies both mutations under one mutex.
type Store interface {
	// AccountByEmail resolves an account by its identity.  Returns
	// ErrAccountNotFound when no account matches.
	AccountByEmail(ctx context.Context, email string) (model.Account, error)

	// SeatsBySlot returns all seat rows for a slot in ascending seat order.
	// Only committed state is visible.
	SeatsBySlot(ctx context.Context, slot string) ([]model.SeatState, error)

	// ApplyBooking commits one booking transaction and returns the
	// account's new balance.  Returns ErrSeatTaken / ErrInsufficientFunds
	// on a debit and ErrNotBooked / ErrNotOwner on a credit.
	ApplyBooking(ctx context.Context, bk model.BookingTransaction) (decimal.Decimal, error)
}

// Result is returned by Book and Cancel on success.
type Result struct {
	BookingRef string          // reference carried into the notification event
	Message    string          // human-readable confirmation
	Balance    decimal.Decimal // balance after the debit/credit
}

// Ledger serializes and applies seat bookings.  It is the sole mutator of
// seat state and the sole booking-related mutator of account balances; every
// caller, whatever the surface, goes through Book and Cancel.
type Ledger struct {
	store    Store
	catalog  *catalog.Catalog
	fee      decimal.Decimal
	lockWait time.Duration
	locks    *seatLocks
	notifier notify.Notifier
	log      *logrus.Logger
}

// New constructs a Ledger.  fee must be positive (falls back to 1 unit);
// lockWait bounds how long a caller waits on a contested seat key (falls
// back to 2s).  notifier may be nil, in which case the post-commit hook is
// skipped.
func New(store Store, cat *catalog.Catalog, fee decimal.Decimal, lockWait time.Duration, notifier notify.Notifier, log *logrus.Logger) *Ledger {
	if store == nil || cat == nil {
		panic("nil store or catalog passed to ledger.New")
	}
	if fee.Sign() <= 0 {
		fee = decimal.NewFromInt(1)
	}
	if lockWait <= 0 {
		lockWait = 2 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Ledger{
		store:    store,
		catalog:  cat,
		fee:      fee,
		lockWait: lockWait,
		locks:    newSeatLocks(),
		notifier: notifier,
		log:      log,
	}
}

// Fee returns the fixed per-booking fee.
func (l *Ledger) Fee() decimal.Decimal { return l.fee }

// Book reserves seatNumber in slot for the account identified by identity
// and debits the fee, atomically.  Preconditions are checked in order and
// fail fast with a specific sentinel: account exists, slot known, seat in
// range, seat free, balance covers the fee.
func (l *Ledger) Book(ctx context.Context, identity, slot string, seatNumber uint32) (Result, error) {
	res, err := l.apply(ctx, identity, slot, seatNumber, model.Debit)
	observability.BookingsTotal.WithLabelValues(outcomeOf(err)).Inc()
	return res, err
}

// Cancel releases seatNumber in slot and credits the fee back, atomically.
// Only the account that holds the seat may cancel it; a cancel by anyone
// else fails with ErrNotOwner and changes nothing.
func (l *Ledger) Cancel(ctx context.Context, identity, slot string, seatNumber uint32) (Result, error) {
	res, err := l.apply(ctx, identity, slot, seatNumber, model.Credit)
	observability.CancellationsTotal.WithLabelValues(outcomeOf(err)).Inc()
	return res, err
}

// Seats returns the committed seat rows for slot in ascending seat order.
// The query facade reads through here so every surface shares the same slot
// validation and consistency boundary.
func (l *Ledger) Seats(ctx context.Context, slot string) ([]model.SeatState, error) {
	if !l.catalog.Contains(slot) {
		return nil, ErrUnknownSlot
	}
	return l.store.SeatsBySlot(ctx, slot)
}

func (l *Ledger) apply(ctx context.Context, identity, slot string, seatNumber uint32, dir model.Direction) (Result, error) {
	identity = strings.ToLower(strings.TrimSpace(identity))

	acct, err := l.store.AccountByEmail(ctx, identity)
	if err != nil {
		return Result{}, err
	}
	if !l.catalog.Contains(slot) {
		return Result{}, ErrUnknownSlot
	}
	if seatNumber < 1 || seatNumber > l.catalog.Capacity() {
		return Result{}, ErrSeatOutOfRange
	}

	release, err := l.locks.acquire(ctx, seatKey(slot, seatNumber), l.lockWait)
	if err != nil {
		return Result{}, err
	}
	defer release()

	timer := prometheus.NewTimer(observability.LedgerApplyDuration)
	balance, err := l.store.ApplyBooking(ctx, model.BookingTransaction{
		AccountID:  acct.ID,
		Slot:       slot,
		SeatNumber: seatNumber,
		Fee:        l.fee,
		Direction:  dir,
	})
	timer.ObserveDuration()
	if err != nil {
		return Result{}, err
	}

	res := Result{BookingRef: uuid.NewString(), Balance: balance}
	action := notify.ActionBooked
	if dir == model.Debit {
		res.Message = fmt.Sprintf("Seat %d booked successfully for slot %s!", seatNumber, slot)
	} else {
		res.Message = fmt.Sprintf("Seat %d booking cancelled for slot %s!", seatNumber, slot)
		action = notify.ActionCancelled
	}

	l.notifyAsync(notify.ReservationEvent{
		BookingRef:   res.BookingRef,
		Action:       action,
		AccountEmail: acct.Email,
		Slot:         slot,
		SeatNumber:   seatNumber,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	})
	return res, nil
}

// notifyAsync fires the notification hook after commit.  It runs detached
// from the request: a caller that gives up does not cancel the publish, and
// a publish failure is logged and counted, never surfaced.
func (l *Ledger) notifyAsync(ev notify.ReservationEvent) {
	if l.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.notifier.Publish(ctx, ev); err != nil {
			observability.NotificationFailures.Inc()
			l.log.WithError(err).WithFields(logrus.Fields{
				"booking_ref": ev.BookingRef,
				"action":      ev.Action,
			}).Warn("notification hook failed")
		}
	}()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSeatTaken), errors.Is(err, ErrNotBooked):
		return "conflict"
	case errors.Is(err, ErrNotOwner):
		return "not_owner"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrUnknownSlot), errors.Is(err, ErrSeatOutOfRange):
		return "not_found"
	case errors.Is(err, ErrSeatBusy):
		return "busy"
	default:
		return "error"
	}
}
