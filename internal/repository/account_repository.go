package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bluereserve/cafeteria-seat-reservation/internal/ledger"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/model"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/utils"
)

const accountColumns = "id,email,username,password_hash,role,approver_email,balance,created_at,updated_at"

// AccountRepo provides data access to the `accounts` table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Create inserts an account and returns its ID.
func (r *AccountRepo) Create(ctx context.Context, email, username, password, role string, approverEmail *string, cost int, startingBalance decimal.Decimal) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var approver sql.NullString
	if approverEmail != nil && strings.TrimSpace(*approverEmail) != "" {
		approver = sql.NullString{String: strings.ToLower(strings.TrimSpace(*approverEmail)), Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (email, username, password_hash, role, approver_email, balance) VALUES (?,?,?,?,?,?)",
		email, username, hash, role, approver, startingBalance)
	if err != nil {
		// MySQL duplicate-key error code.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE email=? LIMIT 1", email)
	return scanAccount(row)
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id=? LIMIT 1", id)
	return scanAccount(row)
}

// MembersOf lists member accounts backed by the given approver email,
// ordered by email for deterministic output.
func (r *AccountRepo) MembersOf(ctx context.Context, approverEmail string) ([]model.Account, error) {
	approverEmail = strings.ToLower(strings.TrimSpace(approverEmail))
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE approver_email=? AND role=? ORDER BY email",
		approverEmail, model.RoleMember)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Account, 0)
	for rows.Next() {
		a, err := scanAccountRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// TopUp credits amount to a backed member's balance inside one transaction.
// The member row is locked for the duration so concurrent ledger debits
// cannot interleave with the credit.
func (r *AccountRepo) TopUp(ctx context.Context, approverEmail, memberEmail string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	approverEmail = strings.ToLower(strings.TrimSpace(approverEmail))
	memberEmail = strings.ToLower(strings.TrimSpace(memberEmail))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		id       uint64
		approver sql.NullString
		balance  decimal.Decimal
	)
	err = tx.QueryRowContext(ctx,
		"SELECT id, approver_email, balance FROM accounts WHERE email=? AND role=? FOR UPDATE",
		memberEmail, model.RoleMember).Scan(&id, &approver, &balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, ledger.ErrAccountNotFound
		}
		return decimal.Zero, err
	}
	if !approver.Valid || approver.String != approverEmail {
		return decimal.Zero, ErrForbidden
	}

	newBalance := balance.Add(amount)
	if _, err := tx.ExecContext(ctx,
		"UPDATE accounts SET balance=? WHERE id=?", newBalance, id); err != nil {
		return decimal.Zero, err
	}
	if err := tx.Commit(); err != nil {
		return decimal.Zero, err
	}
	committed = true
	return newBalance, nil
}

// balanceForUpdateTx reads an account balance under FOR UPDATE within tx.
// Used by the SQL ledger store while applying a booking.
func (r *AccountRepo) balanceForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRowContext(ctx,
		"SELECT balance FROM accounts WHERE id=? FOR UPDATE", id).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ledger.ErrAccountNotFound
	}
	return balance, err
}

// setBalanceTx writes an account balance within tx.
func (r *AccountRepo) setBalanceTx(ctx context.Context, tx *sql.Tx, id uint64, balance decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, "UPDATE accounts SET balance=? WHERE id=?", balance, id)
	return err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanAccount(row rowScanner) (model.Account, error) {
	a, err := scanAccountRows(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ledger.ErrAccountNotFound
	}
	return a, err
}

func scanAccountRows(row rowScanner) (model.Account, error) {
	var (
		a        model.Account
		approver sql.NullString
	)
	err := row.Scan(&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.Role,
		&approver, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Account{}, err
	}
	if approver.Valid {
		v := approver.String
		a.ApproverEmail = &v
	}
	return a, nil
}
