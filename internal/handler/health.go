package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness for load balancers and probes.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
