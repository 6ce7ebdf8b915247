package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bluereserve/cafeteria-seat-reservation/internal/catalog"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/ledger"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/model"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/utils"
)

func testStore() *MemoryStore {
	return NewMemoryStore(catalog.New([]string{"lunch", "dinner"}, 5, 2))
}

func TestSeedShape(t *testing.T) {
	m := testStore()
	seats, err := m.SeatsBySlot(context.Background(), "lunch")
	if err != nil {
		t.Fatalf("seats: %v", err)
	}
	if len(seats) != 5 {
		t.Fatalf("expected 5 seeded seats, got %d", len(seats))
	}
	for i, s := range seats {
		if s.SeatNumber != uint32(i+1) || s.Booked {
			t.Fatalf("seat %d seeded wrong: %+v", i, s)
		}
	}
	if rows, _ := m.SeatsBySlot(context.Background(), "breakfast"); len(rows) != 0 {
		t.Fatalf("unknown slot must have no rows, got %d", len(rows))
	}
}

func TestCreateAndLookup(t *testing.T) {
	m := testStore()
	id, err := m.Create(context.Background(), "Carol@Example.com", "carol", "password123", model.RoleMember, nil, 4, decimal.NewFromInt(30))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	a, err := m.GetByEmail(context.Background(), "carol@example.com")
	if err != nil || a.ID != id {
		t.Fatalf("lookup by normalized email failed: %v", err)
	}
	if !utils.VerifyPassword(a.PasswordHash, "password123") {
		t.Fatal("stored hash must verify against the password")
	}
	if _, err := m.Create(context.Background(), "carol@example.com", "dup", "password123", model.RoleMember, nil, 4, decimal.NewFromInt(30)); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if _, err := m.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ledger.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestTopUpAuthorization(t *testing.T) {
	m := testStore()
	ctx := context.Background()
	approver := "boss@example.com"
	if _, err := m.Create(ctx, approver, "boss", "password123", model.RoleApprover, nil, 4, decimal.Zero); err != nil {
		t.Fatalf("create approver: %v", err)
	}
	if _, err := m.Create(ctx, "eve@example.com", "eve", "password123", model.RoleMember, &approver, 4, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("create member: %v", err)
	}
	if _, err := m.Create(ctx, "stray@example.com", "stray", "password123", model.RoleMember, nil, 4, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("create stray: %v", err)
	}

	bal, err := m.TopUp(ctx, approver, "eve@example.com", decimal.NewFromInt(5))
	if err != nil {
		t.Fatalf("topup: %v", err)
	}
	if !bal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected balance 15, got %s", bal)
	}
	if _, err := m.TopUp(ctx, approver, "stray@example.com", decimal.NewFromInt(5)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unbacked member, got %v", err)
	}
	if _, err := m.TopUp(ctx, approver, "eve@example.com", decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	members, err := m.MembersOf(ctx, approver)
	if err != nil || len(members) != 1 || members[0].Email != "eve@example.com" {
		t.Fatalf("expected eve as sole backed member, got %v (%v)", members, err)
	}
}

func TestRefreshTokenLifecycle(t *testing.T) {
	m := testStore()
	ctx := context.Background()
	id, _ := m.Create(ctx, "dan@example.com", "dan", "password123", model.RoleMember, nil, 4, decimal.Zero)

	hash := utils.HashRefreshRaw("raw-token")
	if err := m.StoreRefresh(ctx, id, hash, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("store: %v", err)
	}
	got, err := m.ValidateRefresh(ctx, hash)
	if err != nil || got != id {
		t.Fatalf("validate: got %d, %v", got, err)
	}
	if err := m.RevokeByHash(ctx, hash); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := m.ValidateRefresh(ctx, hash); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid after revoke, got %v", err)
	}

	expired := utils.HashRefreshRaw("expired")
	_ = m.StoreRefresh(ctx, id, expired, time.Now().Add(-time.Minute))
	if _, err := m.ValidateRefresh(ctx, expired); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}

	other := utils.HashRefreshRaw("other")
	_ = m.StoreRefresh(ctx, id, other, time.Now().Add(time.Hour))
	if err := m.RevokeAllForAccount(ctx, id); err != nil {
		t.Fatalf("revoke all: %v", err)
	}
	if _, err := m.ValidateRefresh(ctx, other); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid after revoke-all, got %v", err)
	}
}

func TestApplyBookingAtomicity(t *testing.T) {
	m := testStore()
	ctx := context.Background()
	id, _ := m.Create(ctx, "fred@example.com", "fred", "password123", model.RoleMember, nil, 4, decimal.NewFromInt(1))

	one := decimal.NewFromInt(1)
	bal, err := m.ApplyBooking(ctx, model.BookingTransaction{AccountID: id, Slot: "lunch", SeatNumber: 2, Fee: one, Direction: model.Debit})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if !bal.Equal(decimal.Zero) {
		t.Fatalf("expected zero balance, got %s", bal)
	}

	// A second debit on a free seat must fail on funds and leave it free.
	if _, err := m.ApplyBooking(ctx, model.BookingTransaction{AccountID: id, Slot: "lunch", SeatNumber: 3, Fee: one, Direction: model.Debit}); !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	seats, _ := m.SeatsBySlot(ctx, "lunch")
	if seats[2].Booked {
		t.Fatal("seat 3 must stay free after failed debit")
	}
	if seats[1].HolderID == nil || *seats[1].HolderID != id {
		t.Fatal("seat 2 must record its holder")
	}

	if _, err := m.ApplyBooking(ctx, model.BookingTransaction{AccountID: id, Slot: "lunch", SeatNumber: 6, Fee: one, Direction: model.Debit}); !errors.Is(err, ledger.ErrSeatOutOfRange) {
		t.Fatalf("expected ErrSeatOutOfRange, got %v", err)
	}
}
