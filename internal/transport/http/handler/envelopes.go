package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nitinder-api/internal/domain"
	jwtinfra "github.com/nitinder-api/internal/infrastructure/jwt"
	"github.com/nitinder-api/internal/transport/http/middleware"
)

// ErrorEnvelope is the body of every non-2xx response.
type ErrorEnvelope struct {
	Detail string `json:"detail"`
}

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message"`
}

// AuthEnvelope wraps registration and login responses.
type AuthEnvelope struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type SessionEnvelope struct {
	Session *domain.Session `json:"session"`
}

type ProfileEnvelope struct {
	Profile *domain.Profile `json:"profile"`
}

type ProfilesEnvelope struct {
	Profiles []domain.Profile `json:"profiles"`
}

type SwipeEnvelope struct {
	Swipe *domain.Swipe `json:"swipe"`
}

type SwipesEnvelope struct {
	Swipes []domain.Swipe `json:"swipes"`
}

type ConversationEnvelope struct {
	Conversation *domain.ConversationSummary `json:"conversation"`
}

type MessagesEnvelope struct {
	Messages []domain.Message `json:"messages"`
}

type MessageDataEnvelope struct {
	Data *domain.Message `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorEnvelope{Detail: msg})
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{domain.ErrBadRequest, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrTooManyRequests, http.StatusTooManyRequests},
}

// httpError maps a service error to its status code. The detail is the message in front
// of the sentinel; unmapped errors are logged and reported as a generic 500.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.err) {
			writeError(w, m.status, detail(err, m.err))
			return
		}
	}
	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func detail(err, sentinel error) string {
	msg := err.Error()
	if msg == sentinel.Error() {
		return msg
	}
	return strings.TrimSuffix(msg, ": "+sentinel.Error())
}

// decode reads a JSON body into v, writing the error response itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
	return false
}

// caller returns the authenticated token claims. Routes behind the auth middleware always have them.
func caller(w http.ResponseWriter, r *http.Request) (*jwtinfra.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return nil, false
	}
	return claims, true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
