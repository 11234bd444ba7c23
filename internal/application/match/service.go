package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nitinder-api/internal/domain"
	"github.com/nitinder-api/internal/pkg/id"
)

type Service interface {
	// Form records a match for the unordered pair. An existing match is returned unchanged
	// with created=false.
	Form(ctx context.Context, userA, userB string) (m *domain.Match, created bool, err error)
	List(ctx context.Context, userID string) ([]domain.MatchView, error)
	Get(ctx context.Context, callerID, matchID string) (*domain.MatchView, error)
	Create(ctx context.Context, callerID string, req domain.CreateMatchRequest) (*domain.MatchView, error)
	// Participant loads a match and checks that userID is one of its two users.
	Participant(ctx context.Context, userID, matchID string) (*domain.Match, error)
}

type matchStore interface {
	Create(ctx context.Context, m *domain.Match) error
	GetByPair(ctx context.Context, userA, userB string) (*domain.Match, error)
	Get(ctx context.Context, matchID string) (*domain.Match, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Match, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type profileStore interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, e domain.Event) error
}

type service struct {
	repo        matchStore
	userRepo    userStore
	profileRepo profileStore
	events      eventPublisher
}

type ServiceDeps struct {
	MatchRepo   matchStore
	UserRepo    userStore
	ProfileRepo profileStore
	Events      eventPublisher
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.MatchRepo,
		userRepo:    deps.UserRepo,
		profileRepo: deps.ProfileRepo,
		events:      deps.Events,
	}
}

func (s *service) Form(ctx context.Context, userA, userB string) (*domain.Match, bool, error) {
	if userA == userB {
		return nil, false, fmt.Errorf("cannot match a user with themselves: %w", domain.ErrBadRequest)
	}
	u1, u2 := domain.CanonicalPair(userA, userB)
	m := &domain.Match{
		MatchID:   id.New(),
		User1ID:   u1,
		User2ID:   u2,
		CreatedAt: time.Now().UTC(),
	}
	err := s.repo.Create(ctx, m)
	if errors.Is(err, domain.ErrConflict) {
		existing, gerr := s.repo.GetByPair(ctx, u1, u2)
		if gerr != nil {
			return nil, false, gerr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	s.publish(ctx, domain.Event{
		Type:       domain.EventMatchCreated,
		Recipients: []string{u1, u2},
		Payload:    m,
		OccurredAt: m.CreatedAt,
	})
	return m, true, nil
}

func (s *service) List(ctx context.Context, userID string) ([]domain.MatchView, error) {
	matches, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	cards := map[string]domain.MatchUser{}
	views := make([]domain.MatchView, 0, len(matches))
	for i := range matches {
		v, err := s.view(ctx, &matches[i], cards)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *service) Get(ctx context.Context, callerID, matchID string) (*domain.MatchView, error) {
	m, err := s.repo.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasUser(callerID) {
		return nil, fmt.Errorf("you are not part of this match: %w", domain.ErrForbidden)
	}
	return s.view(ctx, m, map[string]domain.MatchUser{})
}

func (s *service) Create(ctx context.Context, callerID string, req domain.CreateMatchRequest) (*domain.MatchView, error) {
	a, b := strings.TrimSpace(req.User1ID), strings.TrimSpace(req.User2ID)
	if a == "" || b == "" {
		return nil, fmt.Errorf("user1_id and user2_id are required: %w", domain.ErrBadRequest)
	}
	if a == b {
		return nil, fmt.Errorf("user1_id and user2_id must differ: %w", domain.ErrBadRequest)
	}
	if callerID != a && callerID != b {
		return nil, fmt.Errorf("you can only create matches you are part of: %w", domain.ErrForbidden)
	}
	for _, uid := range []string{a, b} {
		if _, err := s.userRepo.Get(ctx, uid); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("one or both users not found: %w", domain.ErrNotFound)
			}
			return nil, err
		}
	}
	m, created, err := s.Form(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("match already exists: %w", domain.ErrConflict)
	}
	return s.view(ctx, m, map[string]domain.MatchUser{})
}

func (s *service) Participant(ctx context.Context, userID, matchID string) (*domain.Match, error) {
	m, err := s.repo.Get(ctx, matchID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("you are not part of this match: %w", domain.ErrForbidden)
	}
	if err != nil {
		return nil, err
	}
	if !m.HasUser(userID) {
		return nil, fmt.Errorf("you are not part of this match: %w", domain.ErrForbidden)
	}
	return m, nil
}

// view joins both users' email and profile onto the match. cards memoizes lookups within one call.
func (s *service) view(ctx context.Context, m *domain.Match, cards map[string]domain.MatchUser) (*domain.MatchView, error) {
	v := &domain.MatchView{ID: m.MatchID, CreatedAt: m.CreatedAt}
	for _, slot := range []struct {
		userID string
		dst    *domain.MatchUser
	}{{m.User1ID, &v.User1}, {m.User2ID, &v.User2}} {
		card, ok := cards[slot.userID]
		if !ok {
			var err error
			if card, err = s.card(ctx, slot.userID); err != nil {
				return nil, err
			}
			cards[slot.userID] = card
		}
		*slot.dst = card
	}
	return v, nil
}

func (s *service) card(ctx context.Context, userID string) (domain.MatchUser, error) {
	card := domain.MatchUser{ID: userID}
	u, err := s.userRepo.Get(ctx, userID)
	switch {
	case err == nil:
		card.Email = u.Email
	case !errors.Is(err, domain.ErrNotFound):
		return card, err
	}
	p, err := s.profileRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		card.Name, card.Age, card.Bio, card.Gender = p.Name, p.Age, p.Bio, p.Gender
	case !errors.Is(err, domain.ErrNotFound):
		return card, err
	}
	return card, nil
}

func (s *service) publish(ctx context.Context, e domain.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish event", "type", e.Type, "err", err)
	}
}
