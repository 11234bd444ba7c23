package domain

import "time"

// Conversation is the message thread of a match. Participants are copied from the match.
type Conversation struct {
	ConversationID string     `json:"id" dynamodbav:"conversation_id"`
	MatchID        string     `json:"match_id" dynamodbav:"match_id"`
	User1ID        string     `json:"user1_id" dynamodbav:"user1_id"`
	User2ID        string     `json:"user2_id" dynamodbav:"user2_id"`
	LastMessage    *string    `json:"last_message" dynamodbav:"last_message,omitempty"`
	LastMessageAt  *time.Time `json:"last_message_at" dynamodbav:"last_message_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

func (c *Conversation) HasUser(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

func (c *Conversation) OtherUser(userID string) string {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// Message is append-only. PK: conversation_id, SK: message_id.
type Message struct {
	MessageID      string    `json:"id" dynamodbav:"message_id"`
	ConversationID string    `json:"conversation_id" dynamodbav:"conversation_id"`
	SenderID       string    `json:"sender_id" dynamodbav:"sender_id"`
	SenderName     string    `json:"sender_name" dynamodbav:"-"`
	Content        string    `json:"content" dynamodbav:"content"`
	CreatedAt      time.Time `json:"created_at" dynamodbav:"created_at"`
}

// ConversationSummary is a conversation as seen by one participant.
type ConversationSummary struct {
	ID            string     `json:"id"`
	MatchID       string     `json:"match_id"`
	OtherUserID   string     `json:"other_user_id"`
	OtherUserName string     `json:"other_user_name"`
	LastMessage   *string    `json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

type ConversationDetail struct {
	ConversationSummary
	Messages []Message `json:"messages"`
}

type OpenConversationRequest struct {
	MatchID string `json:"match_id" validate:"required"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
}
