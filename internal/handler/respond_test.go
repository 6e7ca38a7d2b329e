package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/accountabro/backend/internal/service"
	"github.com/accountabro/backend/internal/validation"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("match m1: %w", service.ErrNotFound), http.StatusNotFound},
		{service.ErrNotAMember, http.StatusForbidden},
		{service.ErrDuplicateRequest, http.StatusConflict},
		{service.ErrAlreadyEnded, http.StatusConflict},
		{service.ErrMatchClosed, http.StatusConflict},
		{service.ErrDuplicateCheckIn, http.StatusConflict},
		{service.ErrProfileExists, http.StatusConflict},
		{service.ErrInvalidResult, http.StatusUnprocessableEntity},
		{service.ErrSelfBlock, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: display name is required", validation.ErrInvalid), http.StatusUnprocessableEntity},
		{errors.New("database is locked"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/api/matches", nil), errors.New("dial tcp: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Reason string `json:"reason" validate:"required,max=5"`
	}

	tests := []struct {
		name     string
		input    string
		ok       bool
		status   int
		contains string
	}{
		{"valid", `{"reason":"done"}`, true, 0, ""},
		{"malformed", `{"reason":`, false, http.StatusBadRequest, "invalid JSON body"},
		{"unknown field", `{"reason":"done","extra":1}`, false, http.StatusBadRequest, "extra"},
		{"empty body fails required", ``, false, http.StatusUnprocessableEntity, `"reason":"is required"`},
		{"too long", `{"reason":"finished"}`, false, http.StatusUnprocessableEntity, `"reason":"must be at most 5"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.input))

			var dst body
			ok := decodeJSON(rec, req, &dst)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Equal(t, tt.status, rec.Code)
				assert.Contains(t, rec.Body.String(), tt.contains)
			}
		})
	}
}
