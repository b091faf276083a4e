package domain

import (
	"errors"
	"math/rand"
)

var (
	// ErrPlayerCount is returned when a deal is requested outside 2-4 players.
	ErrPlayerCount = errors.New("need 2-4 players to deal")
	// ErrRemoveOpener is returned when the explicit 3-player removal names the opener.
	ErrRemoveOpener = errors.New("the opening card cannot be removed from the deck")
)

// DealOptions controls a fair deal.
type DealOptions struct {
	// Opener is the designated opening card (conventionally 7H).
	Opener Card
	// RemoveCard optionally names the card removed in 3-player games.
	// Nil picks a random card. The opener is never removable.
	RemoveCard *Card
	// MaxAttempts bounds the reshuffle loop. Values below 1 mean one attempt.
	MaxAttempts int
}

// DealResult is the outcome of a fair-deal loop.
type DealResult struct {
	// Hands maps player ids to their dealt, display-sorted hands.
	Hands map[string][]Card
	// RemovedCard is set for 3-player games.
	RemovedCard *Card
	// Attempts is the number of shuffles performed.
	Attempts int
	// Fair reports whether the final distribution passed the fairness check.
	// False means the attempt bound was exhausted and the last deal was kept.
	Fair bool
}

// Deal splits a shuffled deck into len(playerIDs) contiguous chunks of
// floor(len(deck)/players) cards each, in deck order. Remainder cards are left
// unassigned; in 3-player games this loses one extra card beyond the explicit
// removal, which is accepted.
func Deal(deck []Card, playerIDs []string) map[string][]Card {
	perPlayer := len(deck) / len(playerIDs)
	hands := make(map[string][]Card, len(playerIDs))
	for i, id := range playerIDs {
		hand := append([]Card(nil), deck[i*perPlayer:(i+1)*perPlayer]...)
		SortCards(hand)
		hands[id] = hand
	}
	return hands
}

// FairDistribution applies the deal fairness heuristics: no hand may hold
// three or more kings, three or more aces, or nine or more face cards, and
// some hand must hold the opener. Fairness is a UX nicety, not a correctness
// requirement.
func FairDistribution(hands map[string][]Card, opener Card) bool {
	openerDealt := false
	for _, hand := range hands {
		kings, aces, faces := 0, 0, 0
		for _, card := range hand {
			if card.Rank == RankKing {
				kings++
			}
			if card.Rank == RankAce {
				aces++
			}
			if card.IsFace() {
				faces++
			}
			if card == opener {
				openerDealt = true
			}
		}
		if kings >= 3 || aces >= 3 || faces >= 9 {
			return false
		}
	}
	return openerDealt
}

// DealFair shuffles and deals until FairDistribution accepts the result or the
// attempt bound is exhausted, in which case the last deal is kept rather than
// failing the start.
func DealFair(rng *rand.Rand, playerIDs []string, opts DealOptions) (*DealResult, error) {
	if len(playerIDs) < 2 || len(playerIDs) > 4 {
		return nil, ErrPlayerCount
	}
	if opts.RemoveCard != nil && *opts.RemoveCard == opts.Opener {
		return nil, ErrRemoveOpener
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	result := &DealResult{}
	for result.Attempts < maxAttempts {
		deck := Shuffle(NewDeck(), rng)

		result.RemovedCard = nil
		if len(playerIDs) == 3 {
			removed := removeOne(deck, opts, rng)
			deck = RemoveCard(deck, removed)
			result.RemovedCard = &removed
		}

		result.Hands = Deal(deck, playerIDs)
		result.Attempts++

		if FairDistribution(result.Hands, opts.Opener) {
			result.Fair = true
			break
		}
	}

	return result, nil
}

// removeOne picks the card removed in a 3-player game, never the opener.
func removeOne(deck []Card, opts DealOptions, rng *rand.Rand) Card {
	if opts.RemoveCard != nil {
		return *opts.RemoveCard
	}
	for {
		card := deck[rng.Intn(len(deck))]
		if card != opts.Opener {
			return card
		}
	}
}

// OpenerHolder returns the id of the player dealt the opener, or "" if no hand
// holds it.
func OpenerHolder(hands map[string][]Card, playerIDs []string, opener Card) string {
	for _, id := range playerIDs {
		if ContainsCard(hands[id], opener) {
			return id
		}
	}
	return ""
}
