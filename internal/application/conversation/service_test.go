package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nitinder-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockConversationStore struct{ mock.Mock }

func (m *mockConversationStore) Create(ctx context.Context, c *domain.Conversation) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockConversationStore) Get(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if c, _ := args.Get(0).(*domain.Conversation); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockConversationStore) GetByMatch(ctx context.Context, matchID string) (*domain.Conversation, error) {
	args := m.Called(ctx, matchID)
	if c, _ := args.Get(0).(*domain.Conversation); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockConversationStore) ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Conversation), args.Error(1)
}
func (m *mockConversationStore) TouchLastMessage(ctx context.Context, conversationID, content string, at time.Time) error {
	return m.Called(ctx, conversationID, content, at).Error(0)
}

type mockMessageStore struct{ mock.Mock }

func (m *mockMessageStore) Put(ctx context.Context, msg *domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *mockMessageStore) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).([]domain.Message), args.Error(1)
}

type mockMatches struct{ mock.Mock }

func (m *mockMatches) Participant(ctx context.Context, userID, matchID string) (*domain.Match, error) {
	args := m.Called(ctx, userID, matchID)
	if mt, _ := args.Get(0).(*domain.Match); mt != nil {
		return mt, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProfileStore struct{ mock.Mock }

func (m *mockProfileStore) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if p, _ := args.Get(0).(*domain.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, e domain.Event) error {
	return m.Called(ctx, e).Error(0)
}

// --- builder ---

type fixture struct {
	convs    *mockConversationStore
	msgs     *mockMessageStore
	matches  *mockMatches
	profiles *mockProfileStore
	events   *mockPublisher
}

func newFixture() *fixture {
	f := &fixture{
		convs:    &mockConversationStore{},
		msgs:     &mockMessageStore{},
		matches:  &mockMatches{},
		profiles: &mockProfileStore{},
		events:   &mockPublisher{},
	}
	f.profiles.On("GetByUserID", mock.Anything, "alice").Return(&domain.Profile{Name: "Alice"}, nil)
	f.profiles.On("GetByUserID", mock.Anything, "bob").Return(&domain.Profile{Name: "Bob"}, nil)
	return f
}

func (f *fixture) service() Service {
	return NewService(ServiceDeps{
		ConversationRepo: f.convs,
		MessageRepo:      f.msgs,
		Matches:          f.matches,
		ProfileRepo:      f.profiles,
		Events:           f.events,
	})
}

func aliceBob() *domain.Conversation {
	return &domain.Conversation{ConversationID: "c1", MatchID: "m1", User1ID: "alice", User2ID: "bob"}
}

// --- Open ---

func TestOpen_CreatesOnFirstUse(t *testing.T) {
	f := newFixture()
	f.matches.On("Participant", mock.Anything, "alice", "m1").Return(&domain.Match{MatchID: "m1", User1ID: "alice", User2ID: "bob"}, nil)
	f.convs.On("GetByMatch", mock.Anything, "m1").Return(nil, domain.ErrNotFound)
	f.convs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Conversation")).Return(nil)

	sum, created, err := f.service().Open(context.Background(), "alice", "m1")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "m1", sum.ID)
	assert.Equal(t, "bob", sum.OtherUserID)
	assert.Equal(t, "Bob", sum.OtherUserName)
	f.convs.AssertExpectations(t)
}

func TestOpen_ReturnsExisting(t *testing.T) {
	f := newFixture()
	f.matches.On("Participant", mock.Anything, "bob", "m1").Return(&domain.Match{MatchID: "m1", User1ID: "alice", User2ID: "bob"}, nil)
	f.convs.On("GetByMatch", mock.Anything, "m1").Return(aliceBob(), nil)

	sum, created, err := f.service().Open(context.Background(), "bob", "m1")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "c1", sum.ID)
	assert.Equal(t, "Alice", sum.OtherUserName)
	f.convs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOpen_LostCreateRace_ReturnsWinner(t *testing.T) {
	f := newFixture()
	f.matches.On("Participant", mock.Anything, "alice", "m1").Return(&domain.Match{MatchID: "m1", User1ID: "alice", User2ID: "bob"}, nil)
	f.convs.On("GetByMatch", mock.Anything, "m1").Return(nil, domain.ErrNotFound)
	f.convs.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("conversation already exists: %w", domain.ErrConflict))
	winner := aliceBob()
	f.convs.On("Get", mock.Anything, "m1").Return(winner, nil)

	sum, created, err := f.service().Open(context.Background(), "alice", "m1")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner.ConversationID, sum.ID)
}

func TestOpen_NotParticipant_Forbidden(t *testing.T) {
	f := newFixture()
	f.matches.On("Participant", mock.Anything, "eve", "m1").Return(nil, domain.ErrForbidden)

	_, _, err := f.service().Open(context.Background(), "eve", "m1")

	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestOpen_MissingMatchID_BadRequest(t *testing.T) {
	_, _, err := newFixture().service().Open(context.Background(), "alice", " ")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- Get / List ---

func TestGet_IncludesMessagesWithSenderNames(t *testing.T) {
	f := newFixture()
	f.convs.On("Get", mock.Anything, "c1").Return(aliceBob(), nil)
	f.msgs.On("ListByConversation", mock.Anything, "c1").Return([]domain.Message{
		{MessageID: "1", SenderID: "alice", Content: "hi"},
		{MessageID: "2", SenderID: "bob", Content: "hey"},
	}, nil)

	d, err := f.service().Get(context.Background(), "alice", "c1")

	require.NoError(t, err)
	require.Len(t, d.Messages, 2)
	assert.Equal(t, "Alice", d.Messages[0].SenderName)
	assert.Equal(t, "Bob", d.Messages[1].SenderName)
	assert.Equal(t, "Bob", d.OtherUserName)
}

func TestGet_NotParticipant_Forbidden(t *testing.T) {
	f := newFixture()
	f.convs.On("Get", mock.Anything, "c1").Return(aliceBob(), nil)

	_, err := f.service().Get(context.Background(), "eve", "c1")

	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestListMessages_EmptyIsNotNil(t *testing.T) {
	f := newFixture()
	f.convs.On("Get", mock.Anything, "c1").Return(aliceBob(), nil)
	f.msgs.On("ListByConversation", mock.Anything, "c1").Return([]domain.Message(nil), nil)

	msgs, err := f.service().ListMessages(context.Background(), "bob", "c1")

	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestList_OtherUserFromEachSide(t *testing.T) {
	f := newFixture()
	f.profiles.On("GetByUserID", mock.Anything, "carol").Return(nil, domain.ErrNotFound)
	f.convs.On("ListByUser", mock.Anything, "alice").Return([]domain.Conversation{
		*aliceBob(),
		{ConversationID: "c2", MatchID: "m2", User1ID: "alice", User2ID: "carol"},
	}, nil)

	got, err := f.service().List(context.Background(), "alice")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bob", got[0].OtherUserName)
	assert.Equal(t, "carol", got[1].OtherUserID)
	assert.Empty(t, got[1].OtherUserName)
}

// --- Send ---

func TestSend_TrimsStoresAndPublishes(t *testing.T) {
	f := newFixture()
	f.convs.On("Get", mock.Anything, "c1").Return(aliceBob(), nil)
	f.msgs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil)
	f.convs.On("TouchLastMessage", mock.Anything, "c1", "hello", mock.AnythingOfType("time.Time")).Return(nil)
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventMessageSent && len(e.Recipients) == 1 && e.Recipients[0] == "bob"
	})).Return(nil)

	msg, err := f.service().Send(context.Background(), "alice", "c1", "  hello \n")

	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, "Alice", msg.SenderName)
	assert.Equal(t, "alice", msg.SenderID)
	f.events.AssertExpectations(t)
	f.convs.AssertExpectations(t)
}

func TestSend_Blank_BadRequest(t *testing.T) {
	f := newFixture()
	_, err := f.service().Send(context.Background(), "alice", "c1", "   ")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	f.msgs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSend_TooLong_BadRequest(t *testing.T) {
	f := newFixture()
	_, err := f.service().Send(context.Background(), "alice", "c1", strings.Repeat("é", MaxMessageLength+1))
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSend_ExactlyMaxLength(t *testing.T) {
	f := newFixture()
	body := strings.Repeat("é", MaxMessageLength)
	f.convs.On("Get", mock.Anything, "c1").Return(aliceBob(), nil)
	f.msgs.On("Put", mock.Anything, mock.Anything).Return(nil)
	f.convs.On("TouchLastMessage", mock.Anything, "c1", body, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service().Send(context.Background(), "alice", "c1", body)

	require.NoError(t, err)
}

func TestSend_NotParticipant_Forbidden(t *testing.T) {
	f := newFixture()
	f.convs.On("Get", mock.Anything, "c1").Return(aliceBob(), nil)

	_, err := f.service().Send(context.Background(), "eve", "c1", "hi")

	assert.True(t, errors.Is(err, domain.ErrForbidden))
	f.msgs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSend_PublishFailure_NotSurfaced(t *testing.T) {
	f := newFixture()
	f.convs.On("Get", mock.Anything, "c1").Return(aliceBob(), nil)
	f.msgs.On("Put", mock.Anything, mock.Anything).Return(nil)
	f.convs.On("TouchLastMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, mock.Anything).Return(errors.New("sns down"))

	_, err := f.service().Send(context.Background(), "bob", "c1", "yo")

	require.NoError(t, err)
}
