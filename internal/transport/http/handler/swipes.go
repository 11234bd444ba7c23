package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nitinder-api/internal/application/swipe"
	"github.com/nitinder-api/internal/domain"
)

// SwipeHandler handles swipe recording and lookup.
type SwipeHandler struct {
	svc swipe.Service
}

func NewSwipeHandler(svc swipe.Service) *SwipeHandler {
	return &SwipeHandler{svc: svc}
}

func (h *SwipeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	swipes, err := h.svc.List(r.Context(), domain.SwipeFilter{
		SwiperID: q.Get("swiper_id"),
		SwipeeID: q.Get("swipee_id"),
	})
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SwipesEnvelope{Swipes: nonNil(swipes)})
}

func (h *SwipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	sw, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SwipeEnvelope{Swipe: sw})
}

// Create records a swipe by the caller. The response carries the match when the swipe completed one.
func (h *SwipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	var req domain.CreateSwipeRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.svc.Record(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *SwipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "swipe deleted"})
}
