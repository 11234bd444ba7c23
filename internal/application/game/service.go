package game

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nitinder-api/internal/domain"
	"github.com/nitinder-api/internal/pkg/id"
	"github.com/nitinder-api/internal/pkg/validate"
)

// Service runs the one-shot game protocol between the two users of a match:
// pending (0-1 responses) -> active (both responded) -> completed (explicit).
type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateGameRequest) (*domain.GameSession, error)
	ListForMatch(ctx context.Context, userID, matchID string) ([]domain.GameSessionView, error)
	Get(ctx context.Context, userID, sessionID string) (*domain.GameSessionDetail, error)
	SubmitResponse(ctx context.Context, userID, sessionID string, req domain.SubmitResponseRequest) (*domain.GameResponse, error)
	Complete(ctx context.Context, userID, sessionID string) (*domain.GameCompletion, error)
}

type sessionStore interface {
	Put(ctx context.Context, g *domain.GameSession) error
	Get(ctx context.Context, sessionID string) (*domain.GameSession, error)
	ListByMatch(ctx context.Context, matchID string) ([]domain.GameSession, error)
	Transition(ctx context.Context, sessionID string, from []string, to string, at time.Time) (bool, error)
}

type responseStore interface {
	Create(ctx context.Context, r *domain.GameResponse) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.GameResponse, error)
	CountBySession(ctx context.Context, sessionID string) (int, error)
}

type matchChecker interface {
	Participant(ctx context.Context, userID, matchID string) (*domain.Match, error)
}

type profileStore interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, e domain.Event) error
}

type service struct {
	repo         sessionStore
	responseRepo responseStore
	matches      matchChecker
	profileRepo  profileStore
	events       eventPublisher
}

type ServiceDeps struct {
	SessionRepo  sessionStore
	ResponseRepo responseStore
	Matches      matchChecker
	ProfileRepo  profileStore
	Events       eventPublisher
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:         deps.SessionRepo,
		responseRepo: deps.ResponseRepo,
		matches:      deps.Matches,
		profileRepo:  deps.ProfileRepo,
		events:       deps.Events,
	}
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateGameRequest) (*domain.GameSession, error) {
	req.MatchID = strings.TrimSpace(req.MatchID)
	req.GameType = strings.TrimSpace(req.GameType)
	if req.MatchID == "" {
		return nil, fmt.Errorf("match_id required: %w", domain.ErrBadRequest)
	}
	if req.GameType == "" {
		return nil, fmt.Errorf("game_type required: %w", domain.ErrBadRequest)
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	m, err := s.matches.Participant(ctx, userID, req.MatchID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	g := &domain.GameSession{
		SessionID:   id.NewAt(now),
		MatchID:     m.MatchID,
		GameType:    req.GameType,
		Status:      domain.GameStatusPending,
		InitiatorID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, g); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventGameCreated, []string{m.OtherUser(userID)}, g)
	return g, nil
}

func (s *service) ListForMatch(ctx context.Context, userID, matchID string) ([]domain.GameSessionView, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("match ID required: %w", domain.ErrBadRequest)
	}
	if _, err := s.matches.Participant(ctx, userID, matchID); err != nil {
		return nil, err
	}
	sessions, err := s.repo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	out := make([]domain.GameSessionView, 0, len(sessions))
	for _, g := range sessions {
		name, err := s.name(ctx, g.InitiatorID, names)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.GameSessionView{GameSession: g, InitiatorName: name})
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, userID, sessionID string) (*domain.GameSessionDetail, error) {
	g, _, err := s.access(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	resps, err := s.responseRepo.ListBySession(ctx, g.SessionID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	for i := range resps {
		if resps[i].UserName, err = s.name(ctx, resps[i].UserID, names); err != nil {
			return nil, err
		}
	}
	if resps == nil {
		resps = []domain.GameResponse{}
	}
	d := &domain.GameSessionDetail{GameSession: *g, Responses: resps}
	if g.Status != domain.GameStatusCompleted {
		d.PollIntervalMS = domain.GamePollInterval.Milliseconds()
	}
	return d, nil
}

func (s *service) SubmitResponse(ctx context.Context, userID, sessionID string, req domain.SubmitResponseRequest) (*domain.GameResponse, error) {
	payload := bytes.TrimSpace(req.ResponseData)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return nil, fmt.Errorf("response_data required: %w", domain.ErrBadRequest)
	}
	g, m, err := s.access(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if g.Status == domain.GameStatusCompleted {
		return nil, domain.ErrSessionCompleted
	}

	now := time.Now().UTC()
	resp := &domain.GameResponse{
		ResponseID:   id.NewAt(now),
		SessionID:    g.SessionID,
		UserID:       userID,
		ResponseData: payload,
		CreatedAt:    now,
	}
	if err := s.responseRepo.Create(ctx, resp); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventGameResponseSubmitted, []string{m.OtherUser(userID)}, resp)

	n, err := s.responseRepo.CountBySession(ctx, g.SessionID)
	if err != nil {
		return nil, err
	}
	if n == 2 && g.Status == domain.GameStatusPending {
		moved, err := s.repo.Transition(ctx, g.SessionID, []string{domain.GameStatusPending}, domain.GameStatusActive, now)
		if err != nil {
			return nil, err
		}
		if moved {
			g.Status = domain.GameStatusActive
			g.UpdatedAt = now
			s.publish(ctx, domain.EventGameActivated, []string{m.User1ID, m.User2ID}, g)
		}
	}
	return resp, nil
}

// Complete ends a session whatever its response count. Completing twice keeps the first completion time.
func (s *service) Complete(ctx context.Context, userID, sessionID string) (*domain.GameCompletion, error) {
	g, m, err := s.access(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	moved, err := s.repo.Transition(ctx, g.SessionID,
		[]string{domain.GameStatusPending, domain.GameStatusActive}, domain.GameStatusCompleted, now)
	if err != nil {
		return nil, err
	}
	if !moved {
		if g, err = s.repo.Get(ctx, g.SessionID); err != nil {
			return nil, err
		}
		return &domain.GameCompletion{ID: g.SessionID, Status: g.Status, CompletedAt: g.CompletedAt}, nil
	}
	c := &domain.GameCompletion{ID: g.SessionID, Status: domain.GameStatusCompleted, CompletedAt: &now}
	s.publish(ctx, domain.EventGameCompleted, []string{m.User1ID, m.User2ID}, c)
	return c, nil
}

// access loads a session and its match, hiding sessions the caller may not see.
func (s *service) access(ctx context.Context, userID, sessionID string) (*domain.GameSession, *domain.Match, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil, fmt.Errorf("session ID required: %w", domain.ErrBadRequest)
	}
	denied := fmt.Errorf("you do not have access to this game session: %w", domain.ErrForbidden)
	g, err := s.repo.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, denied
	}
	if err != nil {
		return nil, nil, err
	}
	m, err := s.matches.Participant(ctx, userID, g.MatchID)
	if errors.Is(err, domain.ErrForbidden) {
		return nil, nil, denied
	}
	if err != nil {
		return nil, nil, err
	}
	return g, m, nil
}

func (s *service) name(ctx context.Context, userID string, names map[string]string) (string, error) {
	if n, ok := names[userID]; ok {
		return n, nil
	}
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		names[userID] = p.Name
	case errors.Is(err, domain.ErrNotFound):
		names[userID] = ""
	default:
		return "", err
	}
	return names[userID], nil
}

func (s *service) publish(ctx context.Context, eventType string, recipients []string, payload any) {
	if s.events == nil {
		return
	}
	e := domain.Event{Type: eventType, Recipients: recipients, Payload: payload, OccurredAt: time.Now().UTC()}
	if err := s.events.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish event", "type", eventType, "err", err)
	}
}
