package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"evalgo.org/hostconf/internal/metrics"
	"evalgo.org/hostconf/internal/provision"
	"evalgo.org/hostconf/internal/render"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		want     string
	}{
		{
			name: "error with details",
			apiError: &APIError{
				Code:    400,
				Message: "Bad Request",
				Details: "Invalid JSON format",
			},
			want: "Bad Request: Invalid JSON format",
		},
		{
			name: "error without details",
			apiError: &APIError{
				Code:    404,
				Message: "Not Found",
			},
			want: "Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.apiError.Error(); got != tt.want {
				t.Errorf("APIError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBadRequestError(t *testing.T) {
	err := BadRequestError("Invalid input", "Field 'name' is required")

	if err.Code != http.StatusBadRequest {
		t.Errorf("BadRequestError().Code = %v, want %v", err.Code, http.StatusBadRequest)
	}
	if err.Message != "Invalid input" {
		t.Errorf("BadRequestError().Message = %v, want %v", err.Message, "Invalid input")
	}
	if err.Details != "Field 'name' is required" {
		t.Errorf("BadRequestError().Details = %v, want %v", err.Details, "Field 'name' is required")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("Host", "aa:bb:cc:dd:ee:ff")

	if err.Code != http.StatusNotFound {
		t.Errorf("NotFoundError().Code = %v, want %v", err.Code, http.StatusNotFound)
	}
	if err.Message != "Host not found" {
		t.Errorf("NotFoundError().Message = %v, want %v", err.Message, "Host not found")
	}
	if err.Context == nil {
		t.Error("NotFoundError().Context is nil, want non-nil")
	}
	if id, ok := err.Context["id"].(string); !ok || id != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("NotFoundError().Context['id'] = %v, want 'aa:bb:cc:dd:ee:ff'", id)
	}
}

func TestValidationError(t *testing.T) {
	fieldErrors := map[string]string{
		"name":  "Name is required",
		"email": "Invalid email format",
	}
	err := ValidationError("Validation failed", fieldErrors)

	if err.Code != http.StatusBadRequest {
		t.Errorf("ValidationError().Code = %v, want %v", err.Code, http.StatusBadRequest)
	}
	if err.Message != "Validation failed" {
		t.Errorf("ValidationError().Message = %v, want %v", err.Message, "Validation failed")
	}
	if len(err.FieldError) != 2 {
		t.Errorf("ValidationError().FieldError length = %v, want 2", len(err.FieldError))
	}
	if err.FieldError["name"] != "Name is required" {
		t.Errorf("ValidationError().FieldError['name'] = %v, want 'Name is required'", err.FieldError["name"])
	}
}

func TestInternalError(t *testing.T) {
	err := InternalError("Render failed", "template: osconfig:3: boom")

	if err.Code != http.StatusInternalServerError {
		t.Errorf("InternalError().Code = %v, want %v", err.Code, http.StatusInternalServerError)
	}
	if err.Message != "Render failed" {
		t.Errorf("InternalError().Message = %v, want %v", err.Message, "Render failed")
	}
	if err.Details != "template: osconfig:3: boom" {
		t.Errorf("InternalError().Details = %v, want %v", err.Details, "template: osconfig:3: boom")
	}
}

func TestPayloadTooLargeError(t *testing.T) {
	err := PayloadTooLargeError("Template too large", "Templates are limited to 10 bytes")

	if err.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("PayloadTooLargeError().Code = %v, want %v", err.Code, http.StatusRequestEntityTooLarge)
	}
	if err.Message != "Template too large" {
		t.Errorf("PayloadTooLargeError().Message = %v, want %v", err.Message, "Template too large")
	}
}

func TestProvisionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"invalid MAC", fmt.Errorf("%w: %q", provision.ErrInvalidMAC, "nope"), http.StatusBadRequest, "Invalid MAC address"},
		{"host not found", fmt.Errorf("%w: aa:bb:cc:dd:ee:ff", provision.ErrHostNotFound), http.StatusNotFound, "Host not found"},
		{"custom disabled", provision.ErrCustomDisabled, http.StatusNotFound, "Resource not found"},
		{"template too large", fmt.Errorf("%w: 11 bytes exceeds 10", render.ErrTemplateTooLarge), http.StatusRequestEntityTooLarge, "Template too large"},
		{"invalid template", fmt.Errorf("%w: unexpected EOF", render.ErrInvalidTemplate), http.StatusBadRequest, "Invalid template"},
		{"output too large", render.ErrOutputTooLarge, http.StatusUnprocessableEntity, "Rendered document too large"},
		{"timeout", context.DeadlineExceeded, http.StatusUnprocessableEntity, "Template execution timed out"},
		{"canceled", context.Canceled, http.StatusServiceUnavailable, "Service unavailable"},
		{"render failure", fmt.Errorf("%w: boom", render.ErrRender), http.StatusInternalServerError, "Render failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := provisionError(tt.err, "aa:bb:cc:dd:ee:ff")
			if got.Code != tt.wantCode {
				t.Errorf("provisionError().Code = %v, want %v", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMsg {
				t.Errorf("provisionError().Message = %v, want %v", got.Message, tt.wantMsg)
			}
		})
	}
}

func TestLookupOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, metrics.OutcomeOK},
		{fmt.Errorf("%w: x", provision.ErrHostNotFound), metrics.OutcomeNotFound},
		{fmt.Errorf("%w: x", provision.ErrInvalidMAC), metrics.OutcomeInvalidMAC},
		{render.ErrRender, metrics.OutcomeError},
	}

	for _, tt := range tests {
		if got := lookupOutcome(tt.err); got != tt.want {
			t.Errorf("lookupOutcome(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		debug       bool
		err         error
		wantCode    int
		wantMessage string
		wantDetails string
	}{
		{
			name:        "api error",
			err:         NotFoundError("Host", "aa:bb:cc:dd:ee:ff"),
			wantCode:    http.StatusNotFound,
			wantMessage: "Host not found",
		},
		{
			name:        "wrapped api error",
			err:         fmt.Errorf("lookup: %w", BadRequestError("Invalid MAC address", "")),
			wantCode:    http.StatusBadRequest,
			wantMessage: "Invalid MAC address",
		},
		{
			name:        "echo error",
			err:         echo.ErrMethodNotAllowed,
			wantCode:    http.StatusMethodNotAllowed,
			wantMessage: "Method not allowed",
			wantDetails: "Method Not Allowed",
		},
		{
			name:        "internal details hidden",
			err:         errors.New("template: osconfig:3: boom"),
			wantCode:    http.StatusInternalServerError,
			wantMessage: "Internal server error",
			wantDetails: "An internal error occurred. Please try again later.",
		},
		{
			name:        "internal details in debug",
			debug:       true,
			err:         errors.New("template: osconfig:3: boom"),
			wantCode:    http.StatusInternalServerError,
			wantMessage: "Internal server error",
			wantDetails: "template: osconfig:3: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.Debug = tt.debug
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			HTTPErrorHandler(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Errorf("HTTPErrorHandler() status = %v, want %v", rec.Code, tt.wantCode)
			}
			var body APIError
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("HTTPErrorHandler() body is not JSON: %v", err)
			}
			if body.Message != tt.wantMessage {
				t.Errorf("HTTPErrorHandler() message = %v, want %v", body.Message, tt.wantMessage)
			}
			if tt.wantDetails != "" && body.Details != tt.wantDetails {
				t.Errorf("HTTPErrorHandler() details = %v, want %v", body.Details, tt.wantDetails)
			}
		})
	}
}

func TestHTTPErrorHandler_Committed(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "partial")

	HTTPErrorHandler(errors.New("late"), c)

	if rec.Body.String() != "partial" {
		t.Errorf("HTTPErrorHandler() wrote after commit: %q", rec.Body.String())
	}
}

func TestGetHTTPMessage(t *testing.T) {
	tests := []struct {
		name string
		code int
		want string
	}{
		{"Bad Request", http.StatusBadRequest, "Bad request"},
		{"Not Found", http.StatusNotFound, "Resource not found"},
		{"Internal Server Error", http.StatusInternalServerError, "Internal server error"},
		{"Unknown Code", 999, http.StatusText(999)}, // Falls back to http.StatusText for unknown codes
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getHTTPMessage(tt.code); got != tt.want {
				t.Errorf("getHTTPMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}
