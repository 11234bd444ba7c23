package domain

import "time"

// EmailOTP is a one-time registration code sent to an email address.
// PK: email, SK: otp_id (ULID, so the newest record sorts last).
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type EmailOTP struct {
	Email      string     `json:"email" dynamodbav:"email"`
	OTPID      string     `json:"id" dynamodbav:"otp_id"`
	Code       string     `json:"-" dynamodbav:"otp_code"`
	Attempts   int        `json:"attempts" dynamodbav:"attempts"`
	ExpiresAt  int64      `json:"expires_at" dynamodbav:"expires_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty" dynamodbav:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at" dynamodbav:"created_at"`
}

func (o *EmailOTP) Expired(now time.Time) bool { return now.Unix() > o.ExpiresAt }

func (o *EmailOTP) Exhausted(maxAttempts int) bool { return o.Attempts >= maxAttempts }

type SendOTPRequest struct {
	Email string `json:"email" validate:"required"`
}

type VerifyOTPRequest struct {
	Email     string `json:"email" validate:"required"`
	OTP       string `json:"otp" validate:"required"`
	Password  string `json:"password" validate:"required,max=72"`
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by registration and login.
type AuthResult struct {
	Token   string
	Name    string
	Session *Session
}
