package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/bluereserve/cafeteria-seat-reservation/internal/ledger"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/model"
)

// SQLStore implements ledger.Store over MySQL.  ApplyBooking runs the seat
// flip and the balance delta inside one transaction with both rows locked
// FOR UPDATE, so a concurrent reader never sees the seat booked without the
// debit applied (or vice versa), and two racing transactions on the same
// seat serialize at the row lock.
type SQLStore struct {
	DB       *sql.DB
	Accounts *AccountRepo
	Seats    *SeatRepo
}

// NewSQLStore builds a SQLStore over db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db, Accounts: NewAccountRepo(db), Seats: NewSeatRepo(db)}
}

// AccountByEmail implements ledger.Store.
func (s *SQLStore) AccountByEmail(ctx context.Context, email string) (model.Account, error) {
	return s.Accounts.GetByEmail(ctx, email)
}

// SeatsBySlot implements ledger.Store.
func (s *SQLStore) SeatsBySlot(ctx context.Context, slot string) ([]model.SeatState, error) {
	return s.Seats.ListBySlot(ctx, slot)
}

// ApplyBooking implements ledger.Store.  Preconditions already vetted by
// the ledger (account, slot, range) are re-verified here under the row
// locks; the first violated one aborts the transaction with its sentinel
// and no partial effects.
func (s *SQLStore) ApplyBooking(ctx context.Context, bk model.BookingTransaction) (decimal.Decimal, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	seat, err := s.Seats.getForUpdateTx(ctx, tx, bk.Slot, bk.SeatNumber)
	if err != nil {
		return decimal.Zero, err
	}
	balance, err := s.Accounts.balanceForUpdateTx(ctx, tx, bk.AccountID)
	if err != nil {
		return decimal.Zero, err
	}

	switch bk.Direction {
	case model.Debit:
		if seat.Booked {
			return decimal.Zero, ledger.ErrSeatTaken
		}
		if balance.LessThan(bk.Fee) {
			return decimal.Zero, ledger.ErrInsufficientFunds
		}
		if err := s.Seats.setBookedTx(ctx, tx, bk.Slot, bk.SeatNumber, bk.AccountID); err != nil {
			return decimal.Zero, err
		}
		balance = balance.Sub(bk.Fee)
	case model.Credit:
		if !seat.Booked {
			return decimal.Zero, ledger.ErrNotBooked
		}
		if seat.HolderID == nil || *seat.HolderID != bk.AccountID {
			return decimal.Zero, ledger.ErrNotOwner
		}
		if err := s.Seats.setFreeTx(ctx, tx, bk.Slot, bk.SeatNumber); err != nil {
			return decimal.Zero, err
		}
		balance = balance.Add(bk.Fee)
	}

	if err := s.Accounts.setBalanceTx(ctx, tx, bk.AccountID, balance); err != nil {
		return decimal.Zero, err
	}
	if err := tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	committed = true
	return balance, nil
}

var _ ledger.Store = (*SQLStore)(nil)
