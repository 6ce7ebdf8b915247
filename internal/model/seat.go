package model

import "time"

// SeatState tracks who, if anyone, holds a seat within a slot.  There is one
// row for every (slot, seat_number) pair, seeded when the catalog is
// initialized and never deleted; booking toggles Booked/HolderID.
//
// Invariant: Booked == false exactly when HolderID is nil.
//
// Fields:
//  ID         – primary key identifier.
//  Slot       – catalog slot label this seat belongs to.
//  SeatNumber – 1..capacity, unique within the slot.
//  Booked     – whether the seat is currently held.
//  HolderID   – account holding the seat (nil when free).
//  UpdatedAt  – timestamp of last state change.
type SeatState struct {
	ID         uint64    // seat_state.id
	Slot       string    // seat_state.slot
	SeatNumber uint32    // seat_state.seat_number
	Booked     bool      // seat_state.booked
	HolderID   *uint64   // seat_state.holder_id (nullable)
	UpdatedAt  time.Time // seat_state.updated_at
}
