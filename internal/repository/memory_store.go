package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bluereserve/cafeteria-seat-reservation/internal/catalog"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/ledger"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/model"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/utils"
)

// MemoryStore is an in-memory implementation of ledger.Store, Accounts and
// RefreshTokens.  It backs the test suite and STORE_BACKEND=memory, where
// the service runs without MySQL.  One mutex guards all state, which makes
// ApplyBooking trivially atomic: both mutations happen under the same
// critical section or not at all.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  uint64
	byEmail map[string]*model.Account
	byID    map[uint64]*model.Account
	seats   map[string][]model.SeatState // slot -> rows indexed seat_number-1
	tokens  map[string]model.RefreshToken
}

// NewMemoryStore seeds capacity * len(slots) free seat rows from the
// catalog, mirroring what SeatRepo.Seed does for MySQL.
func NewMemoryStore(cat *catalog.Catalog) *MemoryStore {
	m := &MemoryStore{
		byEmail: make(map[string]*model.Account),
		byID:    make(map[uint64]*model.Account),
		seats:   make(map[string][]model.SeatState),
		tokens:  make(map[string]model.RefreshToken),
	}
	now := time.Now().UTC()
	for _, slot := range cat.Slots() {
		rows := make([]model.SeatState, cat.Capacity())
		for i := range rows {
			m.nextID++
			rows[i] = model.SeatState{
				ID:         m.nextID,
				Slot:       slot,
				SeatNumber: uint32(i + 1),
				UpdatedAt:  now,
			}
		}
		m.seats[slot] = rows
	}
	return m
}

// --- Accounts ---

// Create inserts an account and returns its ID.
func (m *MemoryStore) Create(ctx context.Context, email, username, password, role string, approverEmail *string, cost int, startingBalance decimal.Decimal) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[email]; exists {
		return 0, ErrEmailExists
	}
	m.nextID++
	now := time.Now().UTC()
	a := &model.Account{
		ID:           m.nextID,
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Balance:      startingBalance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if approverEmail != nil && strings.TrimSpace(*approverEmail) != "" {
		v := strings.ToLower(strings.TrimSpace(*approverEmail))
		a.ApproverEmail = &v
	}
	m.byEmail[email] = a
	m.byID[a.ID] = a
	return a.ID, nil
}

// GetByEmail fetches an account by normalized email.
func (m *MemoryStore) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byEmail[email]
	if !ok {
		return model.Account{}, ledger.ErrAccountNotFound
	}
	return *a, nil
}

// GetByID fetches an account by id.
func (m *MemoryStore) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return model.Account{}, ledger.ErrAccountNotFound
	}
	return *a, nil
}

// MembersOf lists member accounts backed by the given approver email.
func (m *MemoryStore) MembersOf(ctx context.Context, approverEmail string) ([]model.Account, error) {
	approverEmail = strings.ToLower(strings.TrimSpace(approverEmail))
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Account, 0)
	for _, a := range m.byEmail {
		if a.Role == model.RoleMember && a.ApproverEmail != nil && *a.ApproverEmail == approverEmail {
			out = append(out, *a)
		}
	}
	return out, nil
}

// TopUp credits amount to a backed member's balance.
func (m *MemoryStore) TopUp(ctx context.Context, approverEmail, memberEmail string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	approverEmail = strings.ToLower(strings.TrimSpace(approverEmail))
	memberEmail = strings.ToLower(strings.TrimSpace(memberEmail))
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byEmail[memberEmail]
	if !ok || a.Role != model.RoleMember {
		return decimal.Zero, ledger.ErrAccountNotFound
	}
	if a.ApproverEmail == nil || *a.ApproverEmail != approverEmail {
		return decimal.Zero, ErrForbidden
	}
	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = time.Now().UTC()
	return a.Balance, nil
}

// --- ledger.Store ---

// AccountByEmail implements ledger.Store.
func (m *MemoryStore) AccountByEmail(ctx context.Context, email string) (model.Account, error) {
	return m.GetByEmail(ctx, email)
}

// SeatsBySlot implements ledger.Store.
func (m *MemoryStore) SeatsBySlot(ctx context.Context, slot string) ([]model.SeatState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.seats[slot]
	if !ok {
		return []model.SeatState{}, nil
	}
	out := make([]model.SeatState, len(rows))
	copy(out, rows)
	return out, nil
}

// ApplyBooking implements ledger.Store.  Both mutations happen under one
// lock so no caller can observe the seat flipped without the balance delta.
func (m *MemoryStore) ApplyBooking(ctx context.Context, bk model.BookingTransaction) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.seats[bk.Slot]
	if !ok || bk.SeatNumber < 1 || bk.SeatNumber > uint32(len(rows)) {
		return decimal.Zero, ledger.ErrSeatOutOfRange
	}
	seat := &rows[bk.SeatNumber-1]
	acct, ok := m.byID[bk.AccountID]
	if !ok {
		return decimal.Zero, ledger.ErrAccountNotFound
	}

	switch bk.Direction {
	case model.Debit:
		if seat.Booked {
			return decimal.Zero, ledger.ErrSeatTaken
		}
		if acct.Balance.LessThan(bk.Fee) {
			return decimal.Zero, ledger.ErrInsufficientFunds
		}
		holder := bk.AccountID
		seat.Booked = true
		seat.HolderID = &holder
		acct.Balance = acct.Balance.Sub(bk.Fee)
	case model.Credit:
		if !seat.Booked {
			return decimal.Zero, ledger.ErrNotBooked
		}
		if seat.HolderID == nil || *seat.HolderID != bk.AccountID {
			return decimal.Zero, ledger.ErrNotOwner
		}
		seat.Booked = false
		seat.HolderID = nil
		acct.Balance = acct.Balance.Add(bk.Fee)
	}
	now := time.Now().UTC()
	seat.UpdatedAt = now
	acct.UpdatedAt = now
	return acct.Balance, nil
}

// --- RefreshTokens ---

// StoreRefresh records a refresh token hash.
func (m *MemoryStore) StoreRefresh(ctx context.Context, accountID uint64, tokenHash string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.tokens[tokenHash] = model.RefreshToken{
		ID:        m.nextID,
		AccountID: accountID,
		TokenHash: tokenHash,
		ExpiresAt: exp,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// ValidateRefresh returns the owning account when a non-revoked,
// non-expired token hash exists.
func (m *MemoryStore) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[tokenHash]
	if !ok || t.RevokedAt != nil || time.Now().UTC().After(t.ExpiresAt) {
		return 0, ErrTokenInvalid
	}
	return t.AccountID, nil
}

// RevokeByHash marks one token as revoked.
func (m *MemoryStore) RevokeByHash(ctx context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[tokenHash]; ok && t.RevokedAt == nil {
		now := time.Now().UTC()
		t.RevokedAt = &now
		m.tokens[tokenHash] = t
	}
	return nil
}

// RevokeAllForAccount revokes every active token owned by accountID.
func (m *MemoryStore) RevokeAllForAccount(ctx context.Context, accountID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	for h, t := range m.tokens {
		if t.AccountID == accountID && t.RevokedAt == nil {
			t.RevokedAt = &now
			m.tokens[h] = t
		}
	}
	return nil
}

var (
	_ ledger.Store  = (*MemoryStore)(nil)
	_ Accounts      = (*MemoryStore)(nil)
	_ RefreshTokens = (*MemoryStore)(nil)
)
