package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"evalgo.org/hostconf/internal/metrics"
	"evalgo.org/hostconf/internal/provision"
	"evalgo.org/hostconf/internal/render"
)

// APIError represents a structured API error with HTTP status code.
type APIError struct {
	Code       int                    `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	FieldError map[string]string      `json:"field_errors,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

// NewAPIError creates a new API error.
func NewAPIError(code int, message string, details string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Common error constructors
func BadRequestError(message, details string) *APIError {
	return NewAPIError(http.StatusBadRequest, message, details)
}

func NotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Context: map[string]interface{}{"id": id},
	}
}

func ValidationError(message string, fieldErrors map[string]string) *APIError {
	return &APIError{
		Code:       http.StatusBadRequest,
		Message:    message,
		FieldError: fieldErrors,
	}
}

func InternalError(message, details string) *APIError {
	return NewAPIError(http.StatusInternalServerError, message, details)
}

func PayloadTooLargeError(message, details string) *APIError {
	return NewAPIError(http.StatusRequestEntityTooLarge, message, details)
}

func UnprocessableError(message, details string) *APIError {
	return NewAPIError(http.StatusUnprocessableEntity, message, details)
}

// invalidMACError is the response for a malformed :mac parameter.
func invalidMACError(mac string) *APIError {
	return ValidationError("Invalid MAC address", map[string]string{
		"mac": fmt.Sprintf("%q is not a MAC address", mac),
	})
}

// provisionError maps a provision.Service error to an API error.
func provisionError(err error, mac string) *APIError {
	switch {
	case errors.Is(err, provision.ErrInvalidMAC):
		return invalidMACError(mac)
	case errors.Is(err, provision.ErrHostNotFound):
		return NotFoundError("Host", mac)
	case errors.Is(err, provision.ErrCustomDisabled):
		return NewAPIError(http.StatusNotFound, getHTTPMessage(http.StatusNotFound), "")
	case errors.Is(err, render.ErrTemplateTooLarge):
		return PayloadTooLargeError("Template too large", err.Error())
	case errors.Is(err, render.ErrInvalidTemplate):
		return BadRequestError("Invalid template", err.Error())
	case errors.Is(err, render.ErrOutputTooLarge):
		return UnprocessableError("Rendered document too large", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return UnprocessableError("Template execution timed out", err.Error())
	case errors.Is(err, context.Canceled):
		return NewAPIError(http.StatusServiceUnavailable, getHTTPMessage(http.StatusServiceUnavailable), err.Error())
	default:
		return InternalError("Render failed", err.Error())
	}
}

// lookupOutcome classifies a lookup result for the lookups counter.
func lookupOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, provision.ErrHostNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, provision.ErrInvalidMAC):
		return metrics.OutcomeInvalidMAC
	default:
		return metrics.OutcomeError
	}
}

// HTTPErrorHandler is a custom error handler for Echo.
func HTTPErrorHandler(err error, c echo.Context) {
	// Don't send response if already sent
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var he *echo.HTTPError
	code := http.StatusInternalServerError

	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &he):
		code = he.Code
		apiErr = &APIError{
			Code:    code,
			Message: getHTTPMessage(code),
			Details: fmt.Sprintf("%v", he.Message),
		}
	default:
		apiErr = &APIError{
			Code:    code,
			Message: "Internal server error",
			Details: err.Error(),
		}
	}

	// Don't expose internal errors in production
	if code == http.StatusInternalServerError && !c.Echo().Debug {
		apiErr = &APIError{
			Code:    code,
			Message: apiErr.Message,
			Details: "An internal error occurred. Please try again later.",
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, apiErr)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

// getHTTPMessage returns a user-friendly message for HTTP status codes.
func getHTTPMessage(code int) string {
	messages := map[int]string{
		http.StatusBadRequest:            "Bad request",
		http.StatusUnauthorized:          "Unauthorized",
		http.StatusForbidden:             "Forbidden",
		http.StatusNotFound:              "Resource not found",
		http.StatusMethodNotAllowed:      "Method not allowed",
		http.StatusRequestEntityTooLarge: "Request entity too large",
		http.StatusUnsupportedMediaType:  "Unsupported media type",
		http.StatusUnprocessableEntity:   "Unprocessable entity",
		http.StatusTooManyRequests:       "Too many requests",
		http.StatusInternalServerError:   "Internal server error",
		http.StatusBadGateway:            "Bad gateway",
		http.StatusServiceUnavailable:    "Service unavailable",
	}

	if msg, ok := messages[code]; ok {
		return msg
	}
	return http.StatusText(code)
}
