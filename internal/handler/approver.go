package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/bluereserve/cafeteria-seat-reservation/internal/ledger"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/middleware"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/repository"
)

// ApproverHandler serves the approver surface: listing backed members and
// topping up their balances.
type ApproverHandler struct {
	Accounts repository.Accounts
}

func NewApproverHandler(a repository.Accounts) *ApproverHandler {
	return &ApproverHandler{Accounts: a}
}

type memberPart struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Balance  string `json:"balance"`
}

type topUpReq struct {
	MemberIdentity string          `json:"member_identity" validate:"required,email"`
	Amount         decimal.Decimal `json:"amount" validate:"required"`
}

// Members handles GET /v1/approver/members.
func (h *ApproverHandler) Members(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	caller, err := h.Accounts.GetByID(ctx, middleware.AccountID(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account not found"})
	}
	members, err := h.Accounts.MembersOf(ctx, caller.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]memberPart, 0, len(members))
	for _, m := range members {
		out = append(out, memberPart{Email: m.Email, Username: m.Username, Balance: m.Balance.StringFixed(2)})
	}
	return c.JSON(http.StatusOK, echo.Map{"members": out})
}

// TopUp handles POST /v1/approver/topup.  Only the approver that backs the
// member may credit it.
func (h *ApproverHandler) TopUp(c echo.Context) error {
	var req topUpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	caller, err := h.Accounts.GetByID(ctx, middleware.AccountID(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account not found"})
	}
	balance, err := h.Accounts.TopUp(ctx, caller.Email, req.MemberIdentity, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidAmount):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
		case errors.Is(err, ledger.ErrAccountNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "member not backed by caller"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "top-up failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"member_identity": req.MemberIdentity,
		"balance":         balance.StringFixed(2),
	})
}
