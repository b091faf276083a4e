package domain

import "math/rand"

// NewDeck returns the full 52-card deck in build order. No randomness here.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, suit := range Suits {
		for r := RankAce; r <= RankKing; r++ {
			deck = append(deck, Card{Rank: r, Suit: suit})
		}
	}
	return deck
}

// Shuffle returns a shuffled copy of the deck using the provided rng.
// rand.Shuffle runs a Fisher-Yates permutation, unbiased given an unbiased rng.
func Shuffle(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
