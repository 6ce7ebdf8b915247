package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bluereserve/cafeteria-seat-reservation/internal/ledger"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/model"
)

// SeatRepo encapsulates database operations for the `seat_state` table.
// One row exists per (slot, seat_number) pair; rows are seeded once at
// catalog initialization and only ever toggled, never deleted.
type SeatRepo struct{ DB *sql.DB }

func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{DB: db} }

// Seed inserts the capacity * len(slots) seat rows.  INSERT IGNORE keeps it
// idempotent across restarts; inserts are batched per slot.
func (r *SeatRepo) Seed(ctx context.Context, slots []string, capacity uint32) error {
	for _, slot := range slots {
		query := "INSERT IGNORE INTO seat_state (slot, seat_number) VALUES "
		args := make([]interface{}, 0, capacity*2)
		for n := uint32(1); n <= capacity; n++ {
			if n > 1 {
				query += ","
			}
			query += "(?, ?)"
			args = append(args, slot, n)
		}
		if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// ListBySlot returns all seat rows for a slot in ascending seat order.
func (r *SeatRepo) ListBySlot(ctx context.Context, slot string) ([]model.SeatState, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, slot, seat_number, booked, holder_id, updated_at
		 FROM seat_state WHERE slot = ? ORDER BY seat_number`, slot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.SeatState, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// getForUpdateTx reads one seat row under FOR UPDATE within tx, blocking
// concurrent transactions on the same key until commit/rollback.
func (r *SeatRepo) getForUpdateTx(ctx context.Context, tx *sql.Tx, slot string, seatNumber uint32) (model.SeatState, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, slot, seat_number, booked, holder_id, updated_at
		 FROM seat_state WHERE slot = ? AND seat_number = ? FOR UPDATE`, slot, seatNumber)
	s, err := scanSeat(row)
	if errors.Is(err, sql.ErrNoRows) {
		// Rows are seeded for every catalog slot, so a miss means the
		// key is outside the seeded matrix.
		return model.SeatState{}, ledger.ErrSeatOutOfRange
	}
	return s, err
}

// setBookedTx marks the seat as held by holderID within tx.
func (r *SeatRepo) setBookedTx(ctx context.Context, tx *sql.Tx, slot string, seatNumber uint32, holderID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE seat_state SET booked = 1, holder_id = ? WHERE slot = ? AND seat_number = ?",
		holderID, slot, seatNumber)
	return err
}

// setFreeTx releases the seat within tx.
func (r *SeatRepo) setFreeTx(ctx context.Context, tx *sql.Tx, slot string, seatNumber uint32) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE seat_state SET booked = 0, holder_id = NULL WHERE slot = ? AND seat_number = ?",
		slot, seatNumber)
	return err
}

func scanSeat(row rowScanner) (model.SeatState, error) {
	var (
		s      model.SeatState
		holder sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.Slot, &s.SeatNumber, &s.Booked, &holder, &s.UpdatedAt); err != nil {
		return model.SeatState{}, err
	}
	if holder.Valid {
		v := uint64(holder.Int64)
		s.HolderID = &v
	}
	return s, nil
}
