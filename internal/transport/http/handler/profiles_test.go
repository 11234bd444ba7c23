package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/nitinder-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProfileSvc struct{ mock.Mock }

func (m *mockProfileSvc) profile(args mock.Arguments) (*domain.Profile, error) {
	if p, _ := args.Get(0).(*domain.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileSvc) Feed(ctx context.Context, userID string) ([]domain.Profile, error) {
	args := m.Called(ctx, userID)
	ps, _ := args.Get(0).([]domain.Profile)
	return ps, args.Error(1)
}

func (m *mockProfileSvc) List(ctx context.Context, callerID, userIDFilter string) ([]domain.Profile, error) {
	args := m.Called(ctx, callerID, userIDFilter)
	ps, _ := args.Get(0).([]domain.Profile)
	return ps, args.Error(1)
}

func (m *mockProfileSvc) Me(ctx context.Context, userID string) (*domain.Profile, error) {
	return m.profile(m.Called(ctx, userID))
}

func (m *mockProfileSvc) Get(ctx context.Context, profileID string) (*domain.Profile, error) {
	return m.profile(m.Called(ctx, profileID))
}

func (m *mockProfileSvc) Image(ctx context.Context, profileOrUserID string) ([]byte, string, error) {
	args := m.Called(ctx, profileOrUserID)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

func (m *mockProfileSvc) Create(ctx context.Context, userID string, req domain.CreateProfileRequest) (*domain.Profile, error) {
	return m.profile(m.Called(ctx, userID, req))
}

func (m *mockProfileSvc) CreateEmpty(ctx context.Context, userID, name string) (*domain.Profile, error) {
	return m.profile(m.Called(ctx, userID, name))
}

func (m *mockProfileSvc) Update(ctx context.Context, userID, profileID string, patch domain.ProfilePatch) (*domain.Profile, error) {
	return m.profile(m.Called(ctx, userID, profileID, patch))
}

func (m *mockProfileSvc) Delete(ctx context.Context, userID, profileID string) error {
	return m.Called(ctx, userID, profileID).Error(0)
}

func (m *mockProfileSvc) DeleteForUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func TestProfileList_EmptyIsArray(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProfileSvc{}
	svc.On("List", mock.Anything, "u1", "").Return(nil, nil)
	h := NewProfileHandler(svc)

	rr := serveAuthed(p, h.List, bearerReq(t, p, http.MethodGet, "/profiles", "u1", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"profiles":[]}`, rr.Body.String())
}

func TestProfileList_PassesUserFilter(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProfileSvc{}
	svc.On("List", mock.Anything, "u1", "u2").Return([]domain.Profile{{ProfileID: "p2", UserID: "u2", Name: "Bob"}}, nil)
	h := NewProfileHandler(svc)

	rr := serveAuthed(p, h.List, bearerReq(t, p, http.MethodGet, "/profiles?user_id=u2", "u1", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body ProfilesEnvelope
	decodeBody(t, rr, &body)
	require.Len(t, body.Profiles, 1)
	assert.Equal(t, "Bob", body.Profiles[0].Name)
	svc.AssertExpectations(t)
}

func TestProfileFeed(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProfileSvc{}
	svc.On("Feed", mock.Anything, "u1").Return([]domain.Profile{{ProfileID: "p2"}, {ProfileID: "p3"}}, nil)
	h := NewProfileHandler(svc)

	rr := serveAuthed(p, h.Feed, bearerReq(t, p, http.MethodGet, "/profiles/feed", "u1", nil))

	var body ProfilesEnvelope
	decodeBody(t, rr, &body)
	assert.Len(t, body.Profiles, 2)
}

func TestProfileMe_NotFound(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProfileSvc{}
	svc.On("Me", mock.Anything, "u1").Return(nil, fmt.Errorf("profile not found: %w", domain.ErrNotFound))
	h := NewProfileHandler(svc)

	rr := serveAuthed(p, h.Me, bearerReq(t, p, http.MethodGet, "/profiles/me", "u1", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"detail":"profile not found"}`, rr.Body.String())
}

func TestProfileCreate_Conflict(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProfileSvc{}
	svc.On("Create", mock.Anything, "u1", mock.Anything).
		Return(nil, fmt.Errorf("profile already exists for this user: %w", domain.ErrConflict))
	h := NewProfileHandler(svc)

	rr := serveAuthed(p, h.Create, bearerReq(t, p, http.MethodPost, "/profiles", "u1", map[string]string{"name": "Asha"}))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestProfileCreate_Created(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProfileSvc{}
	svc.On("Create", mock.Anything, "u1", domain.CreateProfileRequest{Name: "Asha", Gender: "F"}).
		Return(&domain.Profile{ProfileID: "p1", UserID: "u1", Name: "Asha", Gender: "F"}, nil)
	h := NewProfileHandler(svc)

	rr := serveAuthed(p, h.Create, bearerReq(t, p, http.MethodPost, "/profiles", "u1", map[string]string{"name": "Asha", "gender": "F"}))

	require.Equal(t, http.StatusCreated, rr.Code)
	var body ProfileEnvelope
	decodeBody(t, rr, &body)
	assert.Equal(t, "p1", body.Profile.ProfileID)
}

func TestProfileUpdate_NotOwner(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProfileSvc{}
	svc.On("Update", mock.Anything, "u2", "p1", mock.Anything).
		Return(nil, fmt.Errorf("you can only update your own profile: %w", domain.ErrForbidden))
	h := NewProfileHandler(svc)

	r := withParam(bearerReq(t, p, http.MethodPut, "/profiles/p1", "u2", map[string]string{"bio": "hi"}), "id", "p1")
	rr := serveAuthed(p, h.Update, r)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestProfileDelete_NoContent(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProfileSvc{}
	svc.On("Delete", mock.Anything, "u1", "p1").Return(nil)
	h := NewProfileHandler(svc)

	rr := serveAuthed(p, h.Delete, withParam(bearerReq(t, p, http.MethodDelete, "/profiles/p1", "u1", nil), "id", "p1"))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestProfileImage_StreamsBytes(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProfileSvc{}
	png := []byte("\x89PNG\r\n\x1a\nfake")
	svc.On("Image", mock.Anything, "p1").Return(png, "image/png", nil)
	h := NewProfileHandler(svc)

	rr := serveAuthed(p, h.Image, withParam(bearerReq(t, p, http.MethodGet, "/profiles/p1/image", "u1", nil), "id", "p1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, png, rr.Body.Bytes())
}

func TestProfileImage_Missing(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockProfileSvc{}
	svc.On("Image", mock.Anything, "p1").Return(nil, "", fmt.Errorf("image not found: %w", domain.ErrNotFound))
	h := NewProfileHandler(svc)

	rr := serveAuthed(p, h.Image, withParam(bearerReq(t, p, http.MethodGet, "/profiles/p1/image", "u1", nil), "id", "p1"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"detail":"image not found"}`, rr.Body.String())
}
