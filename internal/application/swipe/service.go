package swipe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nitinder-api/internal/domain"
	"github.com/nitinder-api/internal/pkg/id"
)

type Service interface {
	// Record stores a swipe and, on a right swipe answered by a reciprocal right swipe,
	// returns the pair's match.
	Record(ctx context.Context, actorID string, req domain.CreateSwipeRequest) (*domain.SwipeResult, error)
	List(ctx context.Context, f domain.SwipeFilter) ([]domain.Swipe, error)
	Get(ctx context.Context, swipeID string) (*domain.Swipe, error)
	Delete(ctx context.Context, actorID, swipeID string) error
}

type swipeStore interface {
	Put(ctx context.Context, s *domain.Swipe) error
	Get(ctx context.Context, swipeID string) (*domain.Swipe, error)
	Delete(ctx context.Context, swipeID string) error
	List(ctx context.Context, f domain.SwipeFilter) ([]domain.Swipe, error)
	Exists(ctx context.Context, swiperID, swipeeID, direction string) (bool, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type profileStore interface {
	Get(ctx context.Context, profileID string) (*domain.Profile, error)
}

type matchFormer interface {
	Form(ctx context.Context, userA, userB string) (*domain.Match, bool, error)
}

type service struct {
	repo        swipeStore
	userRepo    userStore
	profileRepo profileStore
	matches     matchFormer
}

type ServiceDeps struct {
	SwipeRepo   swipeStore
	UserRepo    userStore
	ProfileRepo profileStore
	Matches     matchFormer
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.SwipeRepo,
		userRepo:    deps.UserRepo,
		profileRepo: deps.ProfileRepo,
		matches:     deps.Matches,
	}
}

func (s *service) Record(ctx context.Context, actorID string, req domain.CreateSwipeRequest) (*domain.SwipeResult, error) {
	targetID, err := s.resolveTarget(ctx, strings.TrimSpace(req.SwipeeID))
	if err != nil {
		return nil, err
	}
	direction, ok := domain.NormalizeDirection(req.Direction)
	if !ok {
		return nil, fmt.Errorf("direction must be L or R: %w", domain.ErrBadRequest)
	}
	if targetID == actorID {
		return nil, fmt.Errorf("cannot swipe on yourself: %w", domain.ErrBadRequest)
	}

	sw := &domain.Swipe{
		SwipeID:   id.New(),
		SwiperID:  actorID,
		SwipeeID:  targetID,
		Direction: direction,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, sw); err != nil {
		return nil, err
	}
	result := &domain.SwipeResult{Swipe: sw}
	if direction != domain.DirectionRight {
		return result, nil
	}

	reciprocal, err := s.repo.Exists(ctx, targetID, actorID, domain.DirectionRight)
	if err != nil {
		return nil, err
	}
	if !reciprocal {
		return result, nil
	}
	m, _, err := s.matches.Form(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	result.Match = m
	return result, nil
}

// resolveTarget accepts a user id or a profile id and returns the user id.
func (s *service) resolveTarget(ctx context.Context, target string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("swipee_id is required: %w", domain.ErrBadRequest)
	}
	u, err := s.userRepo.Get(ctx, target)
	if err == nil && u.Active() {
		return u.UserID, nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	p, err := s.profileRepo.Get(ctx, target)
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("swipee not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return p.UserID, nil
}

func (s *service) List(ctx context.Context, f domain.SwipeFilter) ([]domain.Swipe, error) {
	return s.repo.List(ctx, f)
}

func (s *service) Get(ctx context.Context, swipeID string) (*domain.Swipe, error) {
	return s.repo.Get(ctx, swipeID)
}

// Delete removes a swipe owned by actorID. A match it helped form is kept.
func (s *service) Delete(ctx context.Context, actorID, swipeID string) error {
	sw, err := s.repo.Get(ctx, swipeID)
	if err != nil {
		return err
	}
	if sw.SwiperID != actorID {
		return fmt.Errorf("you can only delete your own swipes: %w", domain.ErrForbidden)
	}
	return s.repo.Delete(ctx, swipeID)
}
