package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bluereserve/cafeteria-seat-reservation/internal/model"
)

// Accounts is the account store consumed by the auth and approver handlers.
// Balance mutations for bookings do NOT go through here; those belong to
// the ledger's atomic apply.  Both the MySQL repo and the in-memory store
// implement it.
type Accounts interface {
	// Create inserts a new account with the given starting balance and
	// returns its ID.  Email is normalized to lowercase.  Duplicate
	// emails return ErrEmailExists.
	Create(ctx context.Context, email, username, password, role string, approverEmail *string, cost int, startingBalance decimal.Decimal) (uint64, error)

	// GetByEmail fetches an account by normalized email.  Returns
	// ledger.ErrAccountNotFound when no account matches.
	GetByEmail(ctx context.Context, email string) (model.Account, error)

	// GetByID fetches an account by id.
	GetByID(ctx context.Context, id uint64) (model.Account, error)

	// MembersOf lists member accounts backed by the given approver email.
	MembersOf(ctx context.Context, approverEmail string) ([]model.Account, error)

	// TopUp credits amount to the member's balance, provided the member is
	// backed by approverEmail.  Returns the new balance.  ErrForbidden
	// when the member is backed by someone else (or nobody),
	// ErrInvalidAmount when amount is not positive.
	TopUp(ctx context.Context, approverEmail, memberEmail string, amount decimal.Decimal) (decimal.Decimal, error)
}

// RefreshTokens persists and validates refresh token hashes.
type RefreshTokens interface {
	StoreRefresh(ctx context.Context, accountID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForAccount(ctx context.Context, accountID uint64) error
}
