package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/bluereserve/cafeteria-seat-reservation/internal/ledger"
)

// ReservationHandler exposes the public booking surface.  Both endpoints
// are unauthenticated and identify the account by email in the body, which
// keeps the walk-up kiosk flow a single request.
type ReservationHandler struct {
	Ledger *ledger.Ledger
}

func NewReservationHandler(l *ledger.Ledger) *ReservationHandler {
	return &ReservationHandler{Ledger: l}
}

type reservationReq struct {
	AccountIdentity string `json:"account_identity" validate:"required,email"`
	SeatNumber      uint32 `json:"seat_number" validate:"required,min=1"`
	Slot            string `json:"slot" validate:"required"`
}

type bookResp struct {
	Message    string          `json:"message"`
	Balance    decimal.Decimal `json:"balance"`
	BookingRef string          `json:"booking_ref"`
}

type cancelResp struct {
	Message string          `json:"message"`
	Balance decimal.Decimal `json:"balance"`
}

// Book handles POST /book_seat.
func (h *ReservationHandler) Book(c echo.Context) error {
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Ledger.Book(c.Request().Context(), req.AccountIdentity, req.Slot, req.SeatNumber)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, bookResp{
		Message:    res.Message,
		Balance:    res.Balance,
		BookingRef: res.BookingRef,
	})
}

// Cancel handles POST /cancel_seat.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Ledger.Cancel(c.Request().Context(), req.AccountIdentity, req.Slot, req.SeatNumber)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, cancelResp{Message: res.Message, Balance: res.Balance})
}

// reservationError maps ledger sentinels onto the public error contract.
// Every precondition failure is a 400 with the sentinel's message; only a
// contested lock turns into a 503 so clients know to retry.
func reservationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrSeatBusy):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrUnknownSlot),
		errors.Is(err, ledger.ErrSeatOutOfRange),
		errors.Is(err, ledger.ErrSeatTaken),
		errors.Is(err, ledger.ErrNotBooked),
		errors.Is(err, ledger.ErrNotOwner),
		errors.Is(err, ledger.ErrInsufficientFunds):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}
}
