package models

import (
	"net/http"
	"testing"
)

func TestAPIErrorHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeAccessDenied, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := &APIError{Code: tt.code, Message: "m"}
			if got := err.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewAccessDeniedErrorIsGeneric(t *testing.T) {
	a := NewAccessDeniedError()
	b := NewAccessDeniedError()
	if a.Message != b.Message {
		t.Error("access denied message varies between calls")
	}
	if a.Fields != nil {
		t.Errorf("Fields = %v, want nil", a.Fields)
	}
}
