package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nitinder-api/internal/domain"
	"github.com/nitinder-api/internal/pkg/id"
)

// MaxMessageLength is the longest message body accepted, in characters.
const MaxMessageLength = 2000

type Service interface {
	List(ctx context.Context, userID string) ([]domain.ConversationSummary, error)
	// Open returns the conversation of a match, creating it on first use.
	Open(ctx context.Context, userID, matchID string) (c *domain.ConversationSummary, created bool, err error)
	Get(ctx context.Context, userID, conversationID string) (*domain.ConversationDetail, error)
	ListMessages(ctx context.Context, userID, conversationID string) ([]domain.Message, error)
	Send(ctx context.Context, userID, conversationID, content string) (*domain.Message, error)
}

type conversationStore interface {
	Create(ctx context.Context, c *domain.Conversation) error
	Get(ctx context.Context, conversationID string) (*domain.Conversation, error)
	GetByMatch(ctx context.Context, matchID string) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error)
	TouchLastMessage(ctx context.Context, conversationID, content string, at time.Time) error
}

type messageStore interface {
	Put(ctx context.Context, m *domain.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
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
	repo        conversationStore
	messageRepo messageStore
	matches     matchChecker
	profileRepo profileStore
	events      eventPublisher
}

type ServiceDeps struct {
	ConversationRepo conversationStore
	MessageRepo      messageStore
	Matches          matchChecker
	ProfileRepo      profileStore
	Events           eventPublisher
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.ConversationRepo,
		messageRepo: deps.MessageRepo,
		matches:     deps.Matches,
		profileRepo: deps.ProfileRepo,
		events:      deps.Events,
	}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	convs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	out := make([]domain.ConversationSummary, 0, len(convs))
	for i := range convs {
		sum, err := s.summary(ctx, &convs[i], userID, names)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *service) Open(ctx context.Context, userID, matchID string) (*domain.ConversationSummary, bool, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, false, fmt.Errorf("match_id is required: %w", domain.ErrBadRequest)
	}
	m, err := s.matches.Participant(ctx, userID, matchID)
	if err != nil {
		return nil, false, err
	}

	created := false
	c, err := s.repo.GetByMatch(ctx, matchID)
	if errors.Is(err, domain.ErrNotFound) {
		c, created, err = s.create(ctx, m)
	}
	if err != nil {
		return nil, false, err
	}

	sum, err := s.summary(ctx, c, userID, map[string]string{})
	if err != nil {
		return nil, false, err
	}
	return &sum, created, nil
}

// create writes the conversation of m. Its id is the match id, so a concurrent open loses the
// conditional write and returns the winner's record.
func (s *service) create(ctx context.Context, m *domain.Match) (*domain.Conversation, bool, error) {
	now := time.Now().UTC()
	c := &domain.Conversation{
		ConversationID: m.MatchID,
		MatchID:        m.MatchID,
		User1ID:        m.User1ID,
		User2ID:        m.User2ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := s.repo.Create(ctx, c)
	if errors.Is(err, domain.ErrConflict) {
		existing, gerr := s.repo.Get(ctx, m.MatchID)
		return existing, false, gerr
	}
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (s *service) Get(ctx context.Context, userID, conversationID string) (*domain.ConversationDetail, error) {
	c, err := s.participant(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	sum, err := s.summary(ctx, c, userID, names)
	if err != nil {
		return nil, err
	}
	msgs, err := s.messages(ctx, c, names)
	if err != nil {
		return nil, err
	}
	return &domain.ConversationDetail{ConversationSummary: sum, Messages: msgs}, nil
}

func (s *service) ListMessages(ctx context.Context, userID, conversationID string) ([]domain.Message, error) {
	c, err := s.participant(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	return s.messages(ctx, c, map[string]string{})
}

func (s *service) Send(ctx context.Context, userID, conversationID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("message content is required: %w", domain.ErrBadRequest)
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, fmt.Errorf("message must be at most %d characters: %w", MaxMessageLength, domain.ErrBadRequest)
	}
	c, err := s.participant(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		MessageID:      id.NewAt(now),
		ConversationID: c.ConversationID,
		SenderID:       userID,
		Content:        content,
		CreatedAt:      now,
	}
	if err := s.messageRepo.Put(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.repo.TouchLastMessage(ctx, c.ConversationID, content, now); err != nil {
		slog.Warn("failed to update conversation preview", "conversation_id", c.ConversationID, "err", err)
	}
	name, err := s.name(ctx, userID, map[string]string{})
	if err != nil {
		return nil, err
	}
	msg.SenderName = name

	s.publish(ctx, domain.Event{
		Type:       domain.EventMessageSent,
		Recipients: []string{c.OtherUser(userID)},
		Payload:    msg,
		OccurredAt: now,
	})
	return msg, nil
}

func (s *service) participant(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	c, err := s.repo.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !c.HasUser(userID) {
		return nil, fmt.Errorf("you are not part of this conversation: %w", domain.ErrForbidden)
	}
	return c, nil
}

func (s *service) summary(ctx context.Context, c *domain.Conversation, userID string, names map[string]string) (domain.ConversationSummary, error) {
	other := c.OtherUser(userID)
	name, err := s.name(ctx, other, names)
	if err != nil {
		return domain.ConversationSummary{}, err
	}
	return domain.ConversationSummary{
		ID:            c.ConversationID,
		MatchID:       c.MatchID,
		OtherUserID:   other,
		OtherUserName: name,
		LastMessage:   c.LastMessage,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
	}, nil
}

func (s *service) messages(ctx context.Context, c *domain.Conversation, names map[string]string) ([]domain.Message, error) {
	msgs, err := s.messageRepo.ListByConversation(ctx, c.ConversationID)
	if err != nil {
		return nil, err
	}
	for i := range msgs {
		if msgs[i].SenderName, err = s.name(ctx, msgs[i].SenderID, names); err != nil {
			return nil, err
		}
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// name resolves a user's display name from their profile, caching it in names.
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

func (s *service) publish(ctx context.Context, e domain.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish event", "type", e.Type, "err", err)
	}
}
