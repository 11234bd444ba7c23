package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/nitinder-api/internal/domain"
)

type Service interface {
	Logout(ctx context.Context, sessionID string) error
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	// Validate reports an ErrUnauthorized when the session behind a bearer token
	// was revoked or belongs to a deleted account.
	Validate(ctx context.Context, sessionID, userID string) error
}

type sessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Revoke(ctx context.Context, sessionID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	sessionRepo sessionStore
	userRepo    userStore
}

type ServiceDeps struct {
	SessionRepo sessionStore
	UserRepo    userStore
}

func NewService(deps ServiceDeps) Service {
	return &service{sessionRepo: deps.SessionRepo, userRepo: deps.UserRepo}
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.Revoke(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
		}
		return err
	}
	return nil
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.active(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if !u.Active() {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	sess.User = u
	return sess, nil
}

func (s *service) Validate(ctx context.Context, sessionID, userID string) error {
	sess, err := s.active(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.UserID != userID {
		return fmt.Errorf("session does not belong to token subject: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return err
	}
	if !u.Active() {
		return fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	return nil
}

func (s *service) active(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !sess.Enable || sess.RevokedAt != nil {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	return sess, nil
}
