package domain

import "time"

type User struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Email        string     `json:"email" dynamodbav:"email"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

// Active reports whether the account has not been soft-deleted.
func (u *User) Active() bool { return u.DeletedAt == nil }
