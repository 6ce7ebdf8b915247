// Package repository provides the persistence implementations behind the
// ledger and the account store: per-table MySQL repos and an in-memory
// store used by tests and broker-less development.  Sentinel values here
// cover account-store failures; the booking-path sentinels live in the
// ledger package, which owns that contract.
package repository

import "errors"

// ErrEmailExists is returned when registration hits a duplicate email.
// Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when an approver attempts a top-up for an
// account it does not back.  Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidAmount is returned when a top-up amount is zero or negative.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrTokenInvalid is returned when a refresh token hash is unknown, revoked
// or expired.  Handlers should translate this into an HTTP 401 response.
var ErrTokenInvalid = errors.New("invalid refresh token")
