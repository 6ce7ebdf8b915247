package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bluereserve/cafeteria-seat-reservation/internal/catalog"
	"github.com/bluereserve/cafeteria-seat-reservation/internal/ledger"
)

// SeatsHandler serves the read-only seat grid.
type SeatsHandler struct {
	Ledger  *ledger.Ledger
	Catalog *catalog.Catalog
}

func NewSeatsHandler(l *ledger.Ledger, cat *catalog.Catalog) *SeatsHandler {
	return &SeatsHandler{Ledger: l, Catalog: cat}
}

type seatCell struct {
	SeatNumber uint32 `json:"seat_number"`
	IsBooked   bool   `json:"is_booked"`
}

// Grid handles GET /seats?slot=L.  The response is the seat matrix: rows of
// the configured width in ascending seat order, last row short when
// capacity is not a multiple of the width.  Only committed state is shown.
func (h *SeatsHandler) Grid(c echo.Context) error {
	slot := c.QueryParam("slot")
	if slot == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot query parameter required"})
	}

	seats, err := h.Ledger.Seats(c.Request().Context(), slot)
	if err != nil {
		if errors.Is(err, ledger.ErrUnknownSlot) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown slot"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(seats) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no seats for slot"})
	}

	width := int(h.Catalog.RowWidth())
	grid := make([][]seatCell, 0, (len(seats)+width-1)/width)
	for start := 0; start < len(seats); start += width {
		end := start + width
		if end > len(seats) {
			end = len(seats)
		}
		row := make([]seatCell, 0, end-start)
		for _, s := range seats[start:end] {
			row = append(row, seatCell{SeatNumber: s.SeatNumber, IsBooked: s.Booked})
		}
		grid = append(grid, row)
	}
	return c.JSON(http.StatusOK, grid)
}

// Slots handles GET /slots, listing the bookable slot labels in order.
func (h *SeatsHandler) Slots(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"slots": h.Catalog.Slots()})
}
