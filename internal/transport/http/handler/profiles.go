package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nitinder-api/internal/application/profile"
	"github.com/nitinder-api/internal/domain"
)

// ProfileHandler handles profile CRUD, the swipe feed and profile images.
type ProfileHandler struct {
	svc profile.Service
}

func NewProfileHandler(svc profile.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// List returns all profiles except the caller's, or the profile of ?user_id=.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	profiles, err := h.svc.List(r.Context(), claims.UserID, r.URL.Query().Get("user_id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfilesEnvelope{Profiles: nonNil(profiles)})
}

func (h *ProfileHandler) Feed(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	profiles, err := h.svc.Feed(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfilesEnvelope{Profiles: nonNil(profiles)})
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Me(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileEnvelope{Profile: p})
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileEnvelope{Profile: p})
}

// Image streams the stored picture. {id} may be a profile id or a user id.
func (h *ProfileHandler) Image(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.svc.Image(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	var req domain.CreateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ProfileEnvelope{Profile: p})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	var patch domain.ProfilePatch
	if !decode(w, r, &patch) {
		return
	}
	p, err := h.svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "id"), patch)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileEnvelope{Profile: p})
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
