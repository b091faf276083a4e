package domain

// SuitBoard is the play state of a single suit: whether its 7 is down, the
// ascending run above it, the descending run below it, and the full play order.
type SuitBoard struct {
	Opened   bool   `json:"seven"`
	Sequence []Card `json:"sequence"`
	Up       []Card `json:"up"`
	Down     []Card `json:"down"`
}

// Complete reports whether all 13 cards of the suit have been placed.
func (sb *SuitBoard) Complete() bool {
	return sb != nil && sb.Opened && len(sb.Up) == 6 && len(sb.Down) == 6
}

// Board maps the four suits to their play state. Keys follow the long suit
// names used on the wire.
type Board struct {
	Hearts   *SuitBoard `json:"hearts"`
	Spades   *SuitBoard `json:"spades"`
	Diamonds *SuitBoard `json:"diamonds"`
	Clubs    *SuitBoard `json:"clubs"`
}

// NewBoard returns an empty board with all four suits closed.
func NewBoard() *Board {
	return &Board{
		Hearts:   &SuitBoard{},
		Spades:   &SuitBoard{},
		Diamonds: &SuitBoard{},
		Clubs:    &SuitBoard{},
	}
}

// SuitBoard returns the play state for the given suit, or nil if unknown.
func (b *Board) SuitBoard(s Suit) *SuitBoard {
	if b == nil {
		return nil
	}
	switch s {
	case Hearts:
		return b.Hearts
	case Spades:
		return b.Spades
	case Diamonds:
		return b.Diamonds
	case Clubs:
		return b.Clubs
	}
	return nil
}

// Normalize fills in nil suit boards and nil runs so snapshot readers never
// see absent collections. Stores may drop empty arrays on the wire.
func (b *Board) Normalize() {
	if b.Hearts == nil {
		b.Hearts = &SuitBoard{}
	}
	if b.Spades == nil {
		b.Spades = &SuitBoard{}
	}
	if b.Diamonds == nil {
		b.Diamonds = &SuitBoard{}
	}
	if b.Clubs == nil {
		b.Clubs = &SuitBoard{}
	}
}

// Started reports whether any card has been played yet. The game has started
// once at least one suit is opened.
func (b *Board) Started() bool {
	if b == nil {
		return false
	}
	for _, suit := range Suits {
		if sb := b.SuitBoard(suit); sb != nil && (sb.Opened || len(sb.Sequence) > 0) {
			return true
		}
	}
	return false
}

// CanPlay reports whether card may legally be played. Before the first card,
// only the designated opener is legal. A 7 opens its suit; other cards require
// their suit open and must extend the ascending or descending run by exactly
// one step.
func (b *Board) CanPlay(card Card, opener Card) bool {
	sb := b.SuitBoard(card.Suit)
	if sb == nil {
		return false
	}

	if !b.Started() {
		return card == opener
	}

	if card.Rank == RankSeven {
		return !sb.Opened
	}

	if !sb.Opened {
		return false
	}

	idx := card.SequenceIndex()
	if idx > int(RankSeven) {
		want := int(RankEight)
		if n := len(sb.Up); n > 0 {
			want = sb.Up[n-1].SequenceIndex() + 1
		}
		return idx == want
	}

	// Below the seven: the run grows downward, ending at the ace.
	want := int(RankSix)
	if n := len(sb.Down); n > 0 {
		want = sb.Down[n-1].SequenceIndex() - 1
	}
	return idx == want
}

// Play places the card on the board. Callers must have accepted the card via
// CanPlay first; applying an illegal or duplicate card is undefined.
func (b *Board) Play(card Card) {
	sb := b.SuitBoard(card.Suit)
	if sb == nil {
		return
	}

	if card.Rank == RankSeven {
		sb.Opened = true
		sb.Sequence = append(sb.Sequence, card)
		return
	}

	if card.SequenceIndex() > int(RankSeven) {
		sb.Up = append(sb.Up, card)
	} else {
		sb.Down = append(sb.Down, card)
	}
	sb.Sequence = append(sb.Sequence, card)
}

// PlayableCards returns the subset of hand that CanPlay accepts. An empty
// result means the player must pass.
func (b *Board) PlayableCards(hand []Card, opener Card) []Card {
	playable := make([]Card, 0, len(hand))
	for _, card := range hand {
		if b.CanPlay(card, opener) {
			playable = append(playable, card)
		}
	}
	return playable
}

// CanMakeAnyMove reports whether at least one card in hand is playable.
func (b *Board) CanMakeAnyMove(hand []Card, opener Card) bool {
	for _, card := range hand {
		if b.CanPlay(card, opener) {
			return true
		}
	}
	return false
}

// BoardStats summarizes board progress for display.
type BoardStats struct {
	CardsPlayed    int `json:"cardsPlayed"`
	OpenedSuits    int `json:"openedSuits"`
	CompletedSuits int `json:"completedSuits"`
}

// Stats counts played cards, opened suits and completed suits.
func (b *Board) Stats() BoardStats {
	var stats BoardStats
	if b == nil {
		return stats
	}
	for _, suit := range Suits {
		sb := b.SuitBoard(suit)
		if sb == nil {
			continue
		}
		if sb.Opened {
			stats.OpenedSuits++
			stats.CardsPlayed++ // the 7 itself
		}
		stats.CardsPlayed += len(sb.Up) + len(sb.Down)
		if sb.Complete() {
			stats.CompletedSuits++
		}
	}
	return stats
}

// MoveHint is a playability summary with a suggested card for the UI.
type MoveHint struct {
	HasPlayable bool
	Suggestion  *Card
	Message     string
}

// SuggestMove recommends a card: the opener first, then sevens that open new
// suits, then any playable card. An empty suggestion means the player is stuck.
func (b *Board) SuggestMove(hand []Card, opener Card) MoveHint {
	playable := b.PlayableCards(hand, opener)
	if len(playable) == 0 {
		return MoveHint{Message: "No playable cards. You must pass."}
	}

	for i := range playable {
		if playable[i] == opener {
			return MoveHint{HasPlayable: true, Suggestion: &playable[i], Message: opener.Token() + " starts the game!"}
		}
	}

	for i := range playable {
		if playable[i].Rank == RankSeven {
			return MoveHint{HasPlayable: true, Suggestion: &playable[i], Message: "Play " + playable[i].Token() + " to open a new suit"}
		}
	}

	return MoveHint{HasPlayable: true, Suggestion: &playable[0], Message: "You have a playable card"}
}
