package domain

import "time"

type Session struct {
	SessionID string     `json:"id" dynamodbav:"session_id"`
	UserID    string     `json:"user_id" dynamodbav:"user_id"`
	Enable    bool       `json:"enable" dynamodbav:"enable"`
	RevokedAt *time.Time `json:"revoked_at,omitempty" dynamodbav:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" dynamodbav:"updated_at"`
	User      *User      `json:"user,omitempty" dynamodbav:"-"`
}
