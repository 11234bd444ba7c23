package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nitinder-api/internal/domain"
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	// Delete soft-deletes the account, revokes its sessions and removes its profile.
	Delete(ctx context.Context, userID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	SoftDelete(ctx context.Context, userID string) error
}

type sessionStore interface {
	RevokeByUser(ctx context.Context, userID string) error
}

type profileRemover interface {
	DeleteForUser(ctx context.Context, userID string) error
}

type service struct {
	repo        userStore
	sessionRepo sessionStore
	profiles    profileRemover
}

type ServiceDeps struct {
	UserRepo    userStore
	SessionRepo sessionStore
	Profiles    profileRemover
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.UserRepo,
		sessionRepo: deps.SessionRepo,
		profiles:    deps.Profiles,
	}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.Active() {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, userID string) error {
	if err := s.repo.SoftDelete(ctx, userID); err != nil {
		return err
	}
	if err := s.sessionRepo.RevokeByUser(ctx, userID); err != nil {
		slog.Warn("failed to revoke sessions on account delete", "user_id", userID, "err", err)
	}
	return s.profiles.DeleteForUser(ctx, userID)
}
