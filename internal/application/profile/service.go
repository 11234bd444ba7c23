package profile

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nitinder-api/internal/domain"
	"github.com/nitinder-api/internal/pkg/id"
	"github.com/nitinder-api/internal/pkg/validate"
)

type Service interface {
	// Feed returns candidate profiles for userID: everyone except the caller and the
	// users the caller already swiped, filtered by the caller's looking_for preference.
	Feed(ctx context.Context, userID string) ([]domain.Profile, error)
	List(ctx context.Context, callerID, userIDFilter string) ([]domain.Profile, error)
	Me(ctx context.Context, userID string) (*domain.Profile, error)
	Get(ctx context.Context, profileID string) (*domain.Profile, error)
	Image(ctx context.Context, profileOrUserID string) ([]byte, string, error)
	Create(ctx context.Context, userID string, req domain.CreateProfileRequest) (*domain.Profile, error)
	// CreateEmpty creates the placeholder profile written at registration.
	CreateEmpty(ctx context.Context, userID, name string) (*domain.Profile, error)
	Update(ctx context.Context, userID, profileID string, patch domain.ProfilePatch) (*domain.Profile, error)
	Delete(ctx context.Context, userID, profileID string) error
	DeleteForUser(ctx context.Context, userID string) error
}

type profileStore interface {
	Put(ctx context.Context, p *domain.Profile) error
	Get(ctx context.Context, profileID string) (*domain.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	ListCandidates(ctx context.Context, excludeUserID, gender string) ([]domain.Profile, error)
	Update(ctx context.Context, profileID string, updates map[string]interface{}) (*domain.Profile, error)
	Delete(ctx context.Context, profileID string) error
}

type swipeStore interface {
	SwipedUserIDs(ctx context.Context, swiperID string) (map[string]struct{}, error)
}

type imageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo   profileStore
	swipes swipeStore
	images imageStore
}

// ServiceDeps wires the profile service. Images may be nil, in which case
// uploaded pictures are kept inline on the profile record.
type ServiceDeps struct {
	ProfileRepo profileStore
	SwipeRepo   swipeStore
	Images      imageStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.ProfileRepo, swipes: deps.SwipeRepo, images: deps.Images}
}

func (s *service) Feed(ctx context.Context, userID string) ([]domain.Profile, error) {
	gender, err := s.preferredGender(ctx, userID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.repo.ListCandidates(ctx, userID, gender)
	if err != nil {
		return nil, err
	}
	swiped, err := s.swipes.SwipedUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	feed := make([]domain.Profile, 0, len(candidates))
	for _, p := range candidates {
		if _, ok := swiped[p.UserID]; ok {
			continue
		}
		feed = append(feed, withImageURL(p))
	}
	return feed, nil
}

func (s *service) List(ctx context.Context, callerID, userIDFilter string) ([]domain.Profile, error) {
	if userIDFilter != "" {
		p, err := s.repo.GetByUserID(ctx, userIDFilter)
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Profile{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []domain.Profile{withImageURL(*p)}, nil
	}
	gender, err := s.preferredGender(ctx, callerID)
	if err != nil {
		return nil, err
	}
	profiles, err := s.repo.ListCandidates(ctx, callerID, gender)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i] = withImageURL(profiles[i])
	}
	return profiles, nil
}

// preferredGender is "" when the caller has no profile yet.
func (s *service) preferredGender(ctx context.Context, userID string) (string, error) {
	me, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return me.PreferredGender(), nil
}

func (s *service) Me(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := withImageURL(*p)
	return &out, nil
}

func (s *service) Get(ctx context.Context, profileID string) (*domain.Profile, error) {
	p, err := s.repo.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	out := withImageURL(*p)
	return &out, nil
}

func (s *service) Image(ctx context.Context, profileOrUserID string) ([]byte, string, error) {
	p, err := s.repo.Get(ctx, profileOrUserID)
	if errors.Is(err, domain.ErrNotFound) {
		p, err = s.repo.GetByUserID(ctx, profileOrUserID)
	}
	if err != nil {
		return nil, "", err
	}
	if !p.HasImage() {
		return nil, "", fmt.Errorf("image not found: %w", domain.ErrNotFound)
	}
	if p.ImageKey != "" && s.images != nil {
		data, contentType, err := s.images.Get(ctx, p.ImageKey)
		if err != nil {
			return nil, "", err
		}
		if contentType == "" {
			contentType = mimetype.Detect(data).String()
		}
		return data, contentType, nil
	}
	if p.ImageData == "" {
		return nil, "", fmt.Errorf("image not found: %w", domain.ErrNotFound)
	}
	data, err := base64.StdEncoding.DecodeString(p.ImageData)
	if err != nil {
		return nil, "", fmt.Errorf("decode stored image: %w", err)
	}
	return data, mimetype.Detect(data).String(), nil
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateProfileRequest) (*domain.Profile, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	if _, err := s.repo.GetByUserID(ctx, userID); err == nil {
		return nil, fmt.Errorf("profile already exists for this user: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Profile{
		ProfileID:  id.New(),
		UserID:     userID,
		Name:       strings.TrimSpace(req.Name),
		Age:        req.Age,
		Bio:        req.Bio,
		Gender:     req.Gender,
		LookingFor: req.LookingFor,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.ProfileImage != nil && *req.ProfileImage != "" {
		key, inline, err := s.storeImage(ctx, p.ProfileID, *req.ProfileImage)
		if err != nil {
			return nil, err
		}
		p.ImageKey, p.ImageData = key, inline
	}
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}
	out := withImageURL(*p)
	return &out, nil
}

func (s *service) CreateEmpty(ctx context.Context, userID, name string) (*domain.Profile, error) {
	now := time.Now().UTC()
	p := &domain.Profile{
		ProfileID: id.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, userID, profileID string, patch domain.ProfilePatch) (*domain.Profile, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("name cannot be blank: %w", domain.ErrBadRequest)
		}
		patch.Name = &name
	}
	if err := validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	existing, err := s.repo.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, fmt.Errorf("you can only update your own profile: %w", domain.ErrForbidden)
	}

	updates := patchFields(patch)
	if patch.ProfileImage != nil {
		if *patch.ProfileImage == "" {
			s.dropImage(ctx, existing)
			updates["image_key"], updates["image_data"] = "", ""
		} else {
			key, inline, err := s.storeImage(ctx, profileID, *patch.ProfileImage)
			if err != nil {
				return nil, err
			}
			updates["image_key"], updates["image_data"] = key, inline
		}
	}
	p, err := s.repo.Update(ctx, profileID, updates)
	if err != nil {
		return nil, err
	}
	out := withImageURL(*p)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, userID, profileID string) error {
	p, err := s.repo.Get(ctx, profileID)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return fmt.Errorf("you can only delete your own profile: %w", domain.ErrForbidden)
	}
	s.dropImage(ctx, p)
	return s.repo.Delete(ctx, profileID)
}

// DeleteForUser removes userID's profile if there is one.
func (s *service) DeleteForUser(ctx context.Context, userID string) error {
	p, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.dropImage(ctx, p)
	return s.repo.Delete(ctx, p.ProfileID)
}

// storeImage decodes a base64 (optionally data-URL prefixed) picture and stores it.
// It returns either the object key or the inline payload.
func (s *service) storeImage(ctx context.Context, profileID, raw string) (string, string, error) {
	data, contentType, err := decodeImage(raw)
	if err != nil {
		return "", "", err
	}
	if s.images == nil {
		return "", base64.StdEncoding.EncodeToString(data), nil
	}
	key := imageKey(profileID)
	if err := s.images.Put(ctx, key, data, contentType); err != nil {
		return "", "", err
	}
	return key, "", nil
}

func (s *service) dropImage(ctx context.Context, p *domain.Profile) {
	if p.ImageKey == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, p.ImageKey); err != nil {
		slog.Warn("delete profile image", "profile_id", p.ProfileID, "err", err)
	}
}

func decodeImage(raw string) ([]byte, string, error) {
	payload := strings.TrimSpace(raw)
	if strings.HasPrefix(payload, "data:") {
		if i := strings.Index(payload, ","); i >= 0 {
			payload = payload[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("profile_image must be base64 encoded: %w", domain.ErrBadRequest)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, "", fmt.Errorf("profile_image must be an image: %w", domain.ErrBadRequest)
	}
	return data, mt.String(), nil
}

func patchFields(p domain.ProfilePatch) map[string]interface{} {
	updates := make(map[string]interface{})
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Age != nil {
		updates["age"] = *p.Age
	}
	if p.Bio != nil {
		updates["bio"] = *p.Bio
	}
	if p.Gender != nil {
		updates["gender"] = *p.Gender
	}
	if p.LookingFor != nil {
		updates["looking_for"] = *p.LookingFor
	}
	if p.Latitude != nil {
		updates["latitude"] = *p.Latitude
	}
	if p.Longitude != nil {
		updates["longitude"] = *p.Longitude
	}
	return updates
}

func imageKey(profileID string) string { return "profiles/" + profileID + "/image" }

func withImageURL(p domain.Profile) domain.Profile {
	if p.HasImage() {
		p.ImageURL = "/profiles/" + p.ProfileID + "/image"
	}
	return p
}
