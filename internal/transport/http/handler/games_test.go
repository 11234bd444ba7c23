package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/nitinder-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGameSvc struct{ mock.Mock }

func (m *mockGameSvc) Create(ctx context.Context, userID string, req domain.CreateGameRequest) (*domain.GameSession, error) {
	args := m.Called(ctx, userID, req)
	g, _ := args.Get(0).(*domain.GameSession)
	return g, args.Error(1)
}

func (m *mockGameSvc) ListForMatch(ctx context.Context, userID, matchID string) ([]domain.GameSessionView, error) {
	args := m.Called(ctx, userID, matchID)
	gs, _ := args.Get(0).([]domain.GameSessionView)
	return gs, args.Error(1)
}

func (m *mockGameSvc) Get(ctx context.Context, userID, sessionID string) (*domain.GameSessionDetail, error) {
	args := m.Called(ctx, userID, sessionID)
	g, _ := args.Get(0).(*domain.GameSessionDetail)
	return g, args.Error(1)
}

func (m *mockGameSvc) SubmitResponse(ctx context.Context, userID, sessionID string, req domain.SubmitResponseRequest) (*domain.GameResponse, error) {
	args := m.Called(ctx, userID, sessionID, req)
	r, _ := args.Get(0).(*domain.GameResponse)
	return r, args.Error(1)
}

func (m *mockGameSvc) Complete(ctx context.Context, userID, sessionID string) (*domain.GameCompletion, error) {
	args := m.Called(ctx, userID, sessionID)
	c, _ := args.Get(0).(*domain.GameCompletion)
	return c, args.Error(1)
}

func TestGameCreate_ReturnsRawSession(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockGameSvc{}
	req := domain.CreateGameRequest{MatchID: "m1", GameType: domain.GameTypeTwoTruthsLie}
	svc.On("Create", mock.Anything, "u1", req).Return(&domain.GameSession{
		SessionID: "g1", MatchID: "m1", GameType: req.GameType, Status: domain.GameStatusPending, InitiatorID: "u1",
	}, nil)
	h := NewGameHandler(svc)

	rr := serveAuthed(p, h.Create, bearerReq(t, p, http.MethodPost, "/games", "u1", req))

	require.Equal(t, http.StatusCreated, rr.Code)
	var g domain.GameSession
	decodeBody(t, rr, &g)
	assert.Equal(t, "g1", g.SessionID)
	assert.Equal(t, domain.GameStatusPending, g.Status)
}

func TestGameListForMatch_Forbidden(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockGameSvc{}
	svc.On("ListForMatch", mock.Anything, "u3", "m1").Return(nil, fmt.Errorf("you are not part of this match: %w", domain.ErrForbidden))
	h := NewGameHandler(svc)

	rr := serveAuthed(p, h.ListForMatch, withParam(bearerReq(t, p, http.MethodGet, "/games/m1", "u3", nil), "matchId", "m1"))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGameGetSession_IncludesPollInterval(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockGameSvc{}
	svc.On("Get", mock.Anything, "u1", "g1").Return(&domain.GameSessionDetail{
		GameSession:    domain.GameSession{SessionID: "g1", Status: domain.GameStatusPending},
		Responses:      []domain.GameResponse{},
		PollIntervalMS: domain.GamePollInterval.Milliseconds(),
	}, nil)
	h := NewGameHandler(svc)

	rr := serveAuthed(p, h.GetSession, withParam(bearerReq(t, p, http.MethodGet, "/games/session/g1", "u1", nil), "id", "g1"))

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]interface{}
	decodeBody(t, rr, &body)
	assert.EqualValues(t, 3000, body["poll_interval_ms"])
	assert.Equal(t, []interface{}{}, body["responses"])
}

func TestGameSubmitResponse_KeepsPayloadOpaque(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockGameSvc{}
	payload := json.RawMessage(`{"statements":["a","b","c"],"lie_index":2}`)
	svc.On("SubmitResponse", mock.Anything, "u1", "g1", mock.MatchedBy(func(req domain.SubmitResponseRequest) bool {
		return assert.ObjectsAreEqual(string(payload), string(req.ResponseData))
	})).Return(&domain.GameResponse{ResponseID: "r1", SessionID: "g1", UserID: "u1", ResponseData: payload}, nil)
	h := NewGameHandler(svc)

	body := `{"response_data":{"statements":["a","b","c"],"lie_index":2}}`
	rr := serveAuthed(p, h.SubmitResponse, withParam(bearerReq(t, p, http.MethodPost, "/games/session/g1/response", "u1", body), "id", "g1"))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"lie_index":2`)
	svc.AssertExpectations(t)
}

func TestGameSubmitResponse_Repeat(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockGameSvc{}
	svc.On("SubmitResponse", mock.Anything, "u1", "g1", mock.Anything).Return(nil, domain.ErrAlreadyResponded)
	h := NewGameHandler(svc)

	rr := serveAuthed(p, h.SubmitResponse, withParam(bearerReq(t, p, http.MethodPost, "/games/session/g1/response", "u1", `{"response_data":{"x":1}}`), "id", "g1"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"detail":"you have already responded to this game"}`, rr.Body.String())
}

func TestGameComplete(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockGameSvc{}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.On("Complete", mock.Anything, "u1", "g1").Return(&domain.GameCompletion{ID: "g1", Status: domain.GameStatusCompleted, CompletedAt: &at}, nil)
	h := NewGameHandler(svc)

	rr := serveAuthed(p, h.Complete, withParam(bearerReq(t, p, http.MethodPut, "/games/session/g1/complete", "u1", nil), "id", "g1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":"g1","status":"completed","completed_at":"2026-03-01T12:00:00Z"}`, rr.Body.String())
}
