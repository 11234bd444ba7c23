package handler

import (
	"fmt"
	"net/http"

	"github.com/nitinder-api/internal/application/auth"
	"github.com/nitinder-api/internal/application/session"
	"github.com/nitinder-api/internal/application/user"
	"github.com/nitinder-api/internal/domain"
)

// AuthHandler handles OTP registration, login and the caller's session.
type AuthHandler struct {
	svc      auth.Service
	sessions session.Service
	users    user.Service
}

func NewAuthHandler(svc auth.Service, sessions session.Service, users user.Service) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions, users: users}
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.SendOTPRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.SendOTP(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.VerifyOTPAndRegister(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	w.Header().Set("Authorization", "Bearer "+res.Token)
	writeJSON(w, http.StatusCreated, AuthEnvelope{
		Message: fmt.Sprintf("Registered user: %s", res.Name),
		Token:   res.Token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	w.Header().Set("Authorization", "Bearer "+res.Token)
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Message: fmt.Sprintf("Welcome back %s!", res.Name),
		Token:   res.Token,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Logout(r.Context(), claims.SessionID); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	sess, err := h.sessions.GetCurrent(r.Context(), claims.SessionID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{Session: sess})
}

// DeleteAccount soft-deletes the caller, revoking every session and removing the profile.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), claims.UserID); err != nil {
		httpError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
