package http

import (
	"context"
	"regexp"

	"github.com/nitinder-api/internal/domain"
	"github.com/nitinder-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/nitinder-api/internal/infrastructure/jwt"
)

// ImageStore keeps profile pictures outside DynamoDB.
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}

// OTPThrottle limits how often a registration code can be requested per email.
type OTPThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, e domain.Event) error
}

type Mailer interface {
	SendEmail(to, subject, body string) error
}

// Deps holds all infrastructure dependencies for the router.
// Images and Throttle are optional: nil keeps images inline and disables the resend cooldown.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	OTPRepo          *dynamo.OTPRepo
	ProfileRepo      *dynamo.ProfileRepo
	SwipeRepo        *dynamo.SwipeRepo
	MatchRepo        *dynamo.MatchRepo
	ConversationRepo *dynamo.ConversationRepo
	MessageRepo      *dynamo.MessageRepo
	GameSessionRepo  *dynamo.GameSessionRepo
	GameResponseRepo *dynamo.GameResponseRepo

	Images       ImageStore
	Throttle     OTPThrottle
	Events       EventPublisher
	Mailer       Mailer
	JWTProvider  *jwtinfra.Provider
	EmailPattern *regexp.Regexp
}
