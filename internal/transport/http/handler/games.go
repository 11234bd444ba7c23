package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nitinder-api/internal/application/game"
	"github.com/nitinder-api/internal/domain"
)

// GameHandler handles the mini-game session protocol.
type GameHandler struct {
	svc game.Service
}

func NewGameHandler(svc game.Service) *GameHandler {
	return &GameHandler{svc: svc}
}

func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	var req domain.CreateGameRequest
	if !decode(w, r, &req) {
		return
	}
	g, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *GameHandler) ListForMatch(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	games, err := h.svc.ListForMatch(r.Context(), claims.UserID, chi.URLParam(r, "matchId"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(games))
}

func (h *GameHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	g, err := h.svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *GameHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	var req domain.SubmitResponseRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := h.svc.SubmitResponse(r.Context(), claims.UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *GameHandler) Complete(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	done, err := h.svc.Complete(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, done)
}
