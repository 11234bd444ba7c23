package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nitinder-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestHTTPError_MapsSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"bad request", fmt.Errorf("email is required: %w", domain.ErrBadRequest), http.StatusBadRequest, "email is required"},
		{"unauthorized", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized), http.StatusUnauthorized, "invalid credentials"},
		{"forbidden", fmt.Errorf("you are not part of this match: %w", domain.ErrForbidden), http.StatusForbidden, "you are not part of this match"},
		{"bare not found", domain.ErrNotFound, http.StatusNotFound, "not found"},
		{"conflict", fmt.Errorf("match already exists: %w", domain.ErrConflict), http.StatusConflict, "match already exists"},
		{"throttled", fmt.Errorf("please wait before requesting another OTP: %w", domain.ErrTooManyRequests), http.StatusTooManyRequests, "please wait before requesting another OTP"},
		{"derived sentinel", domain.ErrAlreadyResponded, http.StatusBadRequest, "you have already responded to this game"},
		{"rewrapped", fmt.Errorf("submit: %w", domain.ErrSessionCompleted), http.StatusBadRequest, "submit: game session already completed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			httpError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
			assert.Equal(t, tc.status, rr.Code)
			var body ErrorEnvelope
			decodeBody(t, rr, &body)
			assert.Equal(t, tc.detail, body.Detail)
		})
	}
}

func TestHTTPError_HidesInternalErrors(t *testing.T) {
	rr := httptest.NewRecorder()
	httpError(rr, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("dynamodb: connection reset"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "dynamodb")
	assert.JSONEq(t, `{"detail":"internal server error"}`, rr.Body.String())
}

func TestDecode_RejectsMalformedBody(t *testing.T) {
	rr := httptest.NewRecorder()
	var v struct{}
	ok := decode(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json")), &v)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"detail":"invalid request body"}`, rr.Body.String())
}

func TestDecode_RejectsOversizedBody(t *testing.T) {
	rr := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"bio":"`+strings.Repeat("x", 64)+`"}`))
	r.Body = http.MaxBytesReader(rr, r.Body, 16)
	var v struct {
		Bio string `json:"bio"`
	}
	assert.False(t, decode(rr, r, &v))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestHealth(t *testing.T) {
	h := NewHealthHandler()

	rr := httptest.NewRecorder()
	h.Root(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"message":"Hello, World!"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.Ping(rr, withParam(httptest.NewRequest(http.MethodGet, "/health-check/ping", nil), "action", "ping"))
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.Ping(rr, withParam(httptest.NewRequest(http.MethodGet, "/health-check/boom", nil), "action", "boom"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
