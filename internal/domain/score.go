package domain

import "sort"

// FinalScores computes end-of-game scores: the winner scores 0, every other
// player scores the sum of point values of their remaining hand.
func FinalScores(winnerID string, players map[string]*Player, hands map[string][]Card) map[string]int {
	scores := make(map[string]int, len(players))
	for id := range players {
		if id == winnerID {
			scores[id] = 0
			continue
		}
		scores[id] = Points(hands[id])
	}
	return scores
}

// Ranking pairs a player with their score and ordinal finish position.
type Ranking struct {
	PlayerID string `json:"uid"`
	Score    int    `json:"score"`
	Position int    `json:"position"`
}

// Rankings orders scores ascending (lower is strictly better, 0 is best) and
// assigns positions 1..N. Entries are seeded in player-id order before the
// stable sort, so equal scores tie-break by id deterministically.
func Rankings(scores map[string]int) []Ranking {
	out := make([]Ranking, 0, len(scores))
	for id, score := range scores {
		out = append(out, Ranking{PlayerID: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}
