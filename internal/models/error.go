package models

import (
	"fmt"
	"net/http"
)

// Codes of the rates API error body.
const (
	CodeUnknownDriver       = "unknown_driver"
	CodeInvalidDate         = "invalid_date"
	CodeUnsupportedCurrency = "unsupported_currency"
	CodeSameCurrency        = "same_currency"
	CodeRateNotAvailable    = "rate_not_available"
	CodeUpstream            = "upstream_error"

	CodeAPIKeyMissing    = "api_key_missing"
	CodeAPIKeyInvalid    = "invalid_api_key"
	CodeAPIKeyRevoked    = "api_key_revoked"
	CodeDriverNotAllowed = "driver_not_allowed"
	CodeInternal         = "internal_error"
)

// BusinessError is an error a client can act on. Driver names the rates
// source the request was about, when there is one.
type BusinessError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Driver  string `json:"driver,omitempty"`
}

func (e *BusinessError) Error() string {
	if e.Driver == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Driver, e.Message)
}

// HTTPStatus maps the code onto the API response status.
func (e *BusinessError) HTTPStatus() int {
	switch e.Code {
	case CodeUnknownDriver:
		return http.StatusNotFound
	case CodeAPIKeyMissing, CodeAPIKeyInvalid:
		return http.StatusUnauthorized
	case CodeAPIKeyRevoked, CodeDriverNotAllowed:
		return http.StatusForbidden
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func BizError(code, msg string) *BusinessError { return &BusinessError{Code: code, Message: msg} }

func DriverError(driver, code, msg string) *BusinessError {
	return &BusinessError{Code: code, Message: msg, Driver: driver}
}
