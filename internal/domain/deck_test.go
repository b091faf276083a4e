package domain

import (
	"math/rand"
	"testing"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != 52 {
		t.Fatalf("deck size = %d, want 52", len(deck))
	}

	seen := make(map[Card]bool, 52)
	for _, card := range deck {
		if seen[card] {
			t.Fatalf("duplicate card %s in deck", card)
		}
		seen[card] = true
	}
}

func TestShufflePreservesCards(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	deck := NewDeck()
	shuffled := Shuffle(deck, rng)

	if len(shuffled) != 52 {
		t.Fatalf("shuffled size = %d, want 52", len(shuffled))
	}

	seen := make(map[Card]bool, 52)
	for _, card := range shuffled {
		seen[card] = true
	}
	for _, card := range deck {
		if !seen[card] {
			t.Fatalf("card %s lost in shuffle", card)
		}
	}

	// The input deck must be untouched.
	if deck[0].Token() != "AH" {
		t.Fatalf("shuffle mutated input deck: first card %s", deck[0])
	}
}

func TestDealCoversDeck(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	deck := Shuffle(NewDeck(), rng)
	hands := Deal(deck, []string{"p1", "p2", "p3", "p4"})

	seen := make(map[Card]bool)
	total := 0
	for id, hand := range hands {
		if len(hand) != 13 {
			t.Fatalf("hand %s size = %d, want 13", id, len(hand))
		}
		for _, card := range hand {
			if seen[card] {
				t.Fatalf("card %s dealt twice", card)
			}
			seen[card] = true
			total++
		}
	}
	if total != 52 {
		t.Fatalf("dealt %d cards, want all 52", total)
	}
}

func TestDealDropsRemainder(t *testing.T) {
	deck := NewDeck()
	hands := Deal(deck, []string{"p1", "p2", "p3"})
	for id, hand := range hands {
		if len(hand) != 17 {
			t.Fatalf("hand %s size = %d, want 17", id, len(hand))
		}
	}
}
