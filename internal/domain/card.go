package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Suit is the single-letter suit code used in card tokens.
type Suit string

const (
	Hearts   Suit = "H"
	Spades   Suit = "S"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
)

// Suits lists the four suits in deck build order.
var Suits = [4]Suit{Hearts, Spades, Diamonds, Clubs}

// suitNames maps suit codes to the long names used as board keys.
var suitNames = map[Suit]string{
	Hearts:   "hearts",
	Spades:   "spades",
	Diamonds: "diamonds",
	Clubs:    "clubs",
}

// suitOrder is the display sort order: hearts, diamonds, spades, clubs.
var suitOrder = map[Suit]int{
	Hearts:   0,
	Diamonds: 1,
	Spades:   2,
	Clubs:    3,
}

// Name returns the long suit name ("hearts", "spades", ...).
func (s Suit) Name() string {
	return suitNames[s]
}

// Rank is a card rank as a sequence index: A=0 up to K=12.
type Rank int

const (
	RankAce   Rank = 0
	RankSix   Rank = 5
	RankSeven Rank = 6
	RankEight Rank = 7
	RankJack  Rank = 10
	RankQueen Rank = 11
	RankKing  Rank = 12
)

var rankNames = [13]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// String returns the rank letter(s) used in card tokens.
func (r Rank) String() string {
	if r < 0 || int(r) >= len(rankNames) {
		return "?"
	}
	return rankNames[r]
}

// Card is an immutable playing card value.
type Card struct {
	Rank Rank
	Suit Suit
}

// Token returns the two-to-three character wire encoding, e.g. "7H" or "10D".
func (c Card) Token() string {
	return c.Rank.String() + string(c.Suit)
}

// String implements fmt.Stringer with the token form.
func (c Card) String() string {
	return c.Token()
}

// PointValue returns the scoring value of the card: A=1 up to K=13.
// Used only when tallying unplayed cards at game end.
func (c Card) PointValue() int {
	return int(c.Rank) + 1
}

// SequenceIndex returns the adjacency index of the card: A=0 up to K=12.
// Used only for sequence checks on the board.
func (c Card) SequenceIndex() int {
	return int(c.Rank)
}

// IsFace reports whether the card is a jack, queen or king.
func (c Card) IsFace() bool {
	return c.Rank == RankJack || c.Rank == RankQueen || c.Rank == RankKing
}

// ParseCard decodes a card token such as "7H" or "10D".
func ParseCard(token string) (Card, error) {
	if len(token) < 2 || len(token) > 3 {
		return Card{}, fmt.Errorf("invalid card token %q", token)
	}

	suit := Suit(token[len(token)-1:])
	if _, ok := suitNames[suit]; !ok {
		return Card{}, fmt.Errorf("invalid suit in card token %q", token)
	}

	rankName := token[:len(token)-1]
	for i, name := range rankNames {
		if name == rankName {
			return Card{Rank: Rank(i), Suit: suit}, nil
		}
	}
	return Card{}, fmt.Errorf("invalid rank in card token %q", token)
}

// MustParseCard is ParseCard for trusted literals; it panics on bad input.
func MustParseCard(token string) Card {
	card, err := ParseCard(token)
	if err != nil {
		panic(err)
	}
	return card
}

// MarshalJSON encodes the card as its token string.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Token())
}

// UnmarshalJSON decodes a card from its token string.
func (c *Card) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	card, err := ParseCard(token)
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// SortCards orders a hand by suit (hearts, diamonds, spades, clubs) then rank.
// Sort order is a presentation convention, not a rules concern.
func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		if suitOrder[cards[i].Suit] != suitOrder[cards[j].Suit] {
			return suitOrder[cards[i].Suit] < suitOrder[cards[j].Suit]
		}
		return cards[i].Rank < cards[j].Rank
	})
}

// Points sums the point values of the given cards.
func Points(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.PointValue()
	}
	return total
}

// ContainsCard reports whether the hand holds the given card.
func ContainsCard(hand []Card, card Card) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}

// RemoveCard returns a copy of the hand with one occurrence of card removed.
func RemoveCard(hand []Card, card Card) []Card {
	out := make([]Card, 0, len(hand))
	removed := false
	for _, c := range hand {
		if !removed && c == card {
			removed = true
			continue
		}
		out = append(out, c)
	}
	return out
}
