package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsroom/internal/apperr"
	"newsroom/internal/entity"

	"github.com/gin-gonic/gin"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/test", nil)
	c.Set(requestIDContextKey, "trace-1")
	return c, w
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		production     bool
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "Validation",
			err:            apperr.Validation("Comment content is required", apperr.CodeContentRequired),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apperr.CodeContentRequired,
			expectedMsg:    "Comment content is required",
		},
		{
			name:           "Authentication",
			err:            apperr.Authentication("Token expired", apperr.CodeTokenExpired),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   apperr.CodeTokenExpired,
			expectedMsg:    "Token expired",
		},
		{
			name:           "Conflict",
			err:            apperr.Conflict("Email already registered", apperr.CodeEmailExists),
			expectedStatus: http.StatusConflict,
			expectedCode:   apperr.CodeEmailExists,
			expectedMsg:    "Email already registered",
		},
		{
			name:           "UnknownInDevelopment",
			err:            errors.New("connection reset"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   apperr.CodeInternal,
			expectedMsg:    "connection reset",
		},
		{
			name:           "UnknownInProduction",
			err:            errors.New("connection reset"),
			production:     true,
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   apperr.CodeInternal,
			expectedMsg:    genericErrorMessage,
		},
		{
			name:           "ExpectedInProduction",
			err:            apperr.NotFound("Comment not found", apperr.CodeCommentNotFound),
			production:     true,
			expectedStatus: http.StatusNotFound,
			expectedCode:   apperr.CodeCommentNotFound,
			expectedMsg:    "Comment not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			WriteError(c, tt.err, tt.production)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var response Envelope
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if response.Success {
				t.Error("expected success=false")
			}
			if response.Code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
			}
			if response.Message != tt.expectedMsg {
				t.Errorf("expected message %s, got %s", tt.expectedMsg, response.Message)
			}
			if response.TraceID != "trace-1" {
				t.Errorf("expected traceId trace-1, got %s", response.TraceID)
			}
			if response.Timestamp.IsZero() {
				t.Error("expected timestamp to be set")
			}
		})
	}
}

func TestWriteErrorWithDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newTestContext()

	details := []entity.FieldError{{Field: "email", Message: "must be a valid email address"}}
	WriteError(c, apperr.Validation("Validation failed", apperr.CodeValidation).WithDetails(details), false)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var response struct {
		Code   string              `json:"code"`
		Errors []entity.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if response.Code != apperr.CodeValidation {
		t.Errorf("expected code %s, got %s", apperr.CodeValidation, response.Code)
	}
	if len(response.Errors) != 1 || response.Errors[0].Field != "email" {
		t.Errorf("expected field errors to be echoed, got %+v", response.Errors)
	}
}

func TestRespondPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, w := newTestContext()

	meta := entity.NewMeta(entity.Page{Page: 2, Limit: 10}, 25)
	RespondPage(c, []string{"a"}, meta)

	var response Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !response.Success {
		t.Error("expected success=true")
	}
	if response.Pagination == nil || response.Pagination.TotalPages != 3 || !response.Pagination.HasNext || !response.Pagination.HasPrev {
		t.Errorf("unexpected pagination %+v", response.Pagination)
	}
}

func TestNormalisePublicBase(t *testing.T) {
	tests := map[string]string{
		"":                       "/files",
		"uploads/":               "/uploads",
		"/files":                 "/files",
		"https://cdn.example/a/": "https://cdn.example/a",
	}
	for input, expected := range tests {
		if got := NormalisePublicBase(input); got != expected {
			t.Errorf("NormalisePublicBase(%q) = %q, want %q", input, got, expected)
		}
	}
}
