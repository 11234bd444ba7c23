package dynamo

import (
	"sort"

	"github.com/nitinder-api/internal/domain"
)

// created_at is stored as RFC3339Nano, which trims trailing zeros and so does not
// sort as a string within a second. Index order is only a hint; results are
// re-sorted on the parsed time, with the ULID id breaking ties.

func sortSwipesNewestFirst(s []domain.Swipe) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].CreatedAt.Equal(s[j].CreatedAt) {
			return s[i].CreatedAt.After(s[j].CreatedAt)
		}
		return s[i].SwipeID > s[j].SwipeID
	})
}

func sortMatchesNewestFirst(m []domain.Match) {
	sort.SliceStable(m, func(i, j int) bool {
		if !m[i].CreatedAt.Equal(m[j].CreatedAt) {
			return m[i].CreatedAt.After(m[j].CreatedAt)
		}
		return m[i].MatchID > m[j].MatchID
	})
}

func sortSessionsNewestFirst(g []domain.GameSession) {
	sort.SliceStable(g, func(i, j int) bool {
		if !g[i].CreatedAt.Equal(g[j].CreatedAt) {
			return g[i].CreatedAt.After(g[j].CreatedAt)
		}
		return g[i].SessionID > g[j].SessionID
	})
}

func sortResponsesOldestFirst(r []domain.GameResponse) {
	sort.SliceStable(r, func(i, j int) bool { return r[i].CreatedAt.Before(r[j].CreatedAt) })
}
