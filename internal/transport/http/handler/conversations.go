package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nitinder-api/internal/application/conversation"
	"github.com/nitinder-api/internal/domain"
)

// ConversationHandler handles match conversations and their messages.
type ConversationHandler struct {
	svc conversation.Service
}

func NewConversationHandler(svc conversation.Service) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	convs, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(convs))
}

// Open returns the conversation of a match, creating it on first use.
func (h *ConversationHandler) Open(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	var req domain.OpenConversationRequest
	if !decode(w, r, &req) {
		return
	}
	c, created, err := h.svc.Open(r.Context(), claims.UserID, req.MatchID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, ConversationEnvelope{Conversation: c})
}

func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	msgs, err := h.svc.ListMessages(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessagesEnvelope{Messages: nonNil(msgs)})
}

func (h *ConversationHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims, ok := caller(w, r)
	if !ok {
		return
	}
	var req domain.SendMessageRequest
	if !decode(w, r, &req) {
		return
	}
	msg, err := h.svc.Send(r.Context(), claims.UserID, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageDataEnvelope{Data: msg})
}
