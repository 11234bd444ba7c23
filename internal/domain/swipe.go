package domain

import (
	"strings"
	"time"
)

const (
	DirectionLeft  = "L"
	DirectionRight = "R"
)

// Swipe is a directed, append-only preference edge from swiper to swipee.
type Swipe struct {
	SwipeID   string    `json:"id" dynamodbav:"swipe_id"`
	SwiperID  string    `json:"swiper_id" dynamodbav:"swiper_id"`
	SwipeeID  string    `json:"swipee_id" dynamodbav:"swipee_id"`
	Direction string    `json:"direction" dynamodbav:"direction"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// NormalizeDirection trims and upper-cases d and reports whether it is L or R.
func NormalizeDirection(d string) (string, bool) {
	d = strings.ToUpper(strings.TrimSpace(d))
	return d, d == DirectionLeft || d == DirectionRight
}

type CreateSwipeRequest struct {
	SwipeeID  string `json:"swipee_id" validate:"required"`
	Direction string `json:"direction" validate:"required"`
}

type SwipeFilter struct {
	SwiperID string
	SwipeeID string
}

type SwipeResult struct {
	Swipe *Swipe `json:"swipe"`
	Match *Match `json:"match,omitempty"`
}
