// Package handler contains the Echo HTTP handlers: the public reservation
// surface, the seat grid facade, auth and the approver endpoints.
package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate(&dto) after binding.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate implements echo.Validator.  Struct tag violations surface as a
// 400 with the first failing field named, which keeps the public error
// shape stable without leaking validator internals.
func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid field: "+errs[0].Field())
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return nil
}
