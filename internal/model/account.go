package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role names stored in accounts.role.  Members book and cancel seats and pay
// the booking fee; approvers can top up balances for the members they back.
const (
	RoleMember   = "MEMBER"
	RoleApprover = "APPROVER"
)

// Account represents a row in the `accounts` table.  Email doubles as the
// account identity used by the public booking endpoints; it is unique and
// stored lowercase.  Balance is only ever mutated by the ledger's atomic
// debit/credit or by an explicit approver top-up.
//
// Fields:
//  ID            – primary key identifier.
//  Email         – unique identity, normalized lowercase.
//  Username      – display name.
//  PasswordHash  – bcrypt hashed credential.
//  Role          – MEMBER or APPROVER.
//  ApproverEmail – for members, the approver backing this account (nil when none).
//  Balance       – prepaid balance in currency units, DECIMAL(10,2).
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Account struct {
	ID            uint64          // accounts.id
	Email         string          // accounts.email
	Username      string          // accounts.username
	PasswordHash  string          // accounts.password_hash
	Role          string          // accounts.role
	ApproverEmail *string         // accounts.approver_email (nullable)
	Balance       decimal.Decimal // accounts.balance
	CreatedAt     time.Time       // accounts.created_at
	UpdatedAt     time.Time       // accounts.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token value is stored.
//
// Fields:
//  ID        – primary key identifier.
//  AccountID – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	AccountID uint64     // refresh_tokens.account_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
