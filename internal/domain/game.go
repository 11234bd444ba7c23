package domain

import (
	"encoding/json"
	"time"
)

const (
	GameStatusPending   = "pending"
	GameStatusActive    = "active"
	GameStatusCompleted = "completed"
)

// GameTypeTwoTruthsLie payloads are {"statements": [3]string, "lie_index": int}. The server stores them opaquely.
const GameTypeTwoTruthsLie = "two_truths_lie"

// GamePollInterval is how often the browser client re-reads a session while waiting for the counterpart.
const GamePollInterval = 3 * time.Second

type GameSession struct {
	SessionID   string     `json:"id" dynamodbav:"session_id"`
	MatchID     string     `json:"match_id" dynamodbav:"match_id"`
	GameType    string     `json:"game_type" dynamodbav:"game_type"`
	Status      string     `json:"status" dynamodbav:"status"`
	InitiatorID string     `json:"initiator_id" dynamodbav:"initiator_id"`
	CreatedAt   time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" dynamodbav:"updated_at"`
	CompletedAt *time.Time `json:"completed_at" dynamodbav:"completed_at,omitempty"`
}

// GameResponse is unique per (session, user). PK: session_id, SK: user_id.
type GameResponse struct {
	ResponseID   string          `json:"id" dynamodbav:"response_id"`
	SessionID    string          `json:"session_id" dynamodbav:"session_id"`
	UserID       string          `json:"user_id" dynamodbav:"user_id"`
	UserName     string          `json:"user_name" dynamodbav:"-"`
	ResponseData json.RawMessage `json:"response_data" dynamodbav:"response_data"`
	CreatedAt    time.Time       `json:"created_at" dynamodbav:"created_at"`
}

type GameSessionView struct {
	GameSession
	InitiatorName string `json:"initiator_name"`
}

type GameSessionDetail struct {
	GameSession
	Responses      []GameResponse `json:"responses"`
	PollIntervalMS int64          `json:"poll_interval_ms,omitempty"`
}

type CreateGameRequest struct {
	MatchID  string `json:"match_id" validate:"required"`
	GameType string `json:"game_type" validate:"required,max=50"`
}

type SubmitResponseRequest struct {
	ResponseData json.RawMessage `json:"response_data"`
}

type GameCompletion struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
}
