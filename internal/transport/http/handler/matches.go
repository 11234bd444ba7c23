package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nitinder-api/internal/application/match"
	"github.com/nitinder-api/internal/domain"
)

// MatchHandler handles match listing and explicit match creation.
type MatchHandler struct {
	svc match.Service
}

func NewMatchHandler(svc match.Service) *MatchHandler {
	return &MatchHandler{svc: svc}
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	matches, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(matches))
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	m, err := h.svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	var req domain.CreateMatchRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}
