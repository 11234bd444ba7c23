package domain

import "time"

// Match is an undirected pairing stored with User1ID < User2ID.
type Match struct {
	MatchID   string    `json:"id" dynamodbav:"match_id"`
	PairKey   string    `json:"-" dynamodbav:"pair_key"`
	User1ID   string    `json:"user1_id" dynamodbav:"user1_id"`
	User2ID   string    `json:"user2_id" dynamodbav:"user2_id"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// CanonicalPair orders two user ids lexicographically.
func CanonicalPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// PairKey is the uniqueness key for an unordered user pair.
func PairKey(a, b string) string {
	u1, u2 := CanonicalPair(a, b)
	return u1 + "#" + u2
}

func (m *Match) HasUser(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// OtherUser returns the counterpart of userID. The result is meaningless if HasUser is false.
func (m *Match) OtherUser(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// MatchUser is the public card of a matched user.
type MatchUser struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Age    *int   `json:"age"`
	Bio    string `json:"bio"`
	Gender string `json:"gender"`
}

type MatchView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	User1     MatchUser `json:"user1"`
	User2     MatchUser `json:"user2"`
}

type CreateMatchRequest struct {
	User1ID string `json:"user1_id"`
	User2ID string `json:"user2_id"`
}
