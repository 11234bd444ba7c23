package domain

import "time"

const (
	EventMatchCreated          = "match.created"
	EventMessageSent           = "message.sent"
	EventGameCreated           = "game.created"
	EventGameResponseSubmitted = "game.response_submitted"
	EventGameActivated         = "game.activated"
	EventGameCompleted         = "game.completed"
)

// Event is a domain notification fanned out to subscribers of the notification topic.
type Event struct {
	Type       string    `json:"type"`
	Recipients []string  `json:"recipients"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}
