package domain

import (
	"errors"
	"sort"
)

// Phase represents the lifecycle stage of a game.
type Phase string

const (
	// PhaseNotStarted is the pre-deal state.
	PhaseNotStarted Phase = "not_started"
	// PhaseInProgress is the active turn-taking state. It is re-entrant
	// across turns, not a new state per turn.
	PhaseInProgress Phase = "in_progress"
	// PhaseFinished is the terminal state after a player empties their hand.
	PhaseFinished Phase = "finished"
)

// Validation errors surfaced to the submitting caller. No state mutation
// occurs on rejection.
var (
	ErrMissingData     = errors.New("game data not loaded")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrNotStarted      = errors.New("game not started")
	ErrFinished        = errors.New("game already finished")
	ErrHandNotFound    = errors.New("player hand not found")
	ErrCardNotInHand   = errors.New("you do not have this card")
	ErrCardNotPlayable = errors.New("this card cannot be played")
	ErrHavePlayable    = errors.New("you have playable cards")
)

// Player holds per-player game state.
type Player struct {
	Username       string `json:"username"`
	Seat           int    `json:"seat"`
	CardsCount     int    `json:"cardsCount"`
	FinalScore     int    `json:"finalScore"`
	FinishPosition int    `json:"finishPosition,omitempty"`
	Connected      bool   `json:"connected"`
}

// MoveType distinguishes plays from passes.
type MoveType string

const (
	MovePlay MoveType = "play"
	MovePass MoveType = "pass"
)

// Move is a play or a pass, attributed to the player whose turn it is at
// submission time.
type Move struct {
	Type MoveType
	Card Card // set for MovePlay
}

// PlayMove builds a play move for the given card.
func PlayMove(card Card) Move {
	return Move{Type: MovePlay, Card: card}
}

// PassMove builds a pass move.
func PassMove() Move {
	return Move{Type: MovePass}
}

// Action records the last accepted move for the activity feed.
type Action struct {
	Type      MoveType `json:"type"`
	Player    string   `json:"player"`
	Card      string   `json:"card,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// GameState is the turn and phase record for a game instance.
type GameState struct {
	Started     bool           `json:"started"`
	CurrentTurn string         `json:"currentTurn"`
	TurnNumber  int            `json:"turnNumber"`
	Finished    bool           `json:"finished"`
	Winner      string         `json:"winner,omitempty"`
	FinalScores map[string]int `json:"finalScores,omitempty"`
	LastAction  *Action        `json:"lastAction,omitempty"`
}

// Phase derives the state-machine phase from the started/finished flags.
func (gs *GameState) Phase() Phase {
	switch {
	case gs == nil || !gs.Started:
		return PhaseNotStarted
	case gs.Finished:
		return PhaseFinished
	default:
		return PhaseInProgress
	}
}

// Game bundles the authoritative state of one room's match: phase record,
// board, players and hands. One Game belongs to exactly one room.
type Game struct {
	State   GameState
	Board   *Board
	Players map[string]*Player
	Hands   map[string][]Card
	Opener  Card
}

// ActivePlayers returns ids of players still holding cards, in seat order.
func ActivePlayers(players map[string]*Player) []string {
	ids := make([]string, 0, len(players))
	for id, p := range players {
		if p != nil && p.CardsCount > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return players[ids[i]].Seat < players[ids[j]].Seat
	})
	return ids
}

// NextPlayer returns the id following current in the cyclic seat order,
// skipping players with no cards left. The current player's seat is looked up
// in the full roster, so a player whose move just emptied their hand still
// anchors the rotation. The second return is false only when current is not
// in the roster at all and the first active player was used as a fallback;
// callers should log a warning in that case, it is not a normal-path outcome.
func NextPlayer(current string, players map[string]*Player) (string, bool) {
	ids := ActivePlayers(players)
	if len(ids) == 0 {
		return "", false
	}

	cur, ok := players[current]
	if !ok || cur == nil {
		return ids[0], false
	}

	for _, id := range ids {
		if players[id].Seat > cur.Seat {
			return id, true
		}
	}
	return ids[0], true
}

// ValidateMove checks a proposed move against the game snapshot, in order:
// data present, caller holds the turn, game in progress, then move legality.
// A play requires the card in hand and CanPlay to accept it; a pass requires
// no playable card. Rejections carry the reason and leave state untouched.
func ValidateMove(playerID string, move Move, g *Game) error {
	if g == nil || g.Board == nil || g.Players == nil || g.Hands == nil {
		return ErrMissingData
	}
	if g.State.CurrentTurn != playerID {
		return ErrNotYourTurn
	}
	if !g.State.Started {
		return ErrNotStarted
	}
	if g.State.Finished {
		return ErrFinished
	}

	hand, ok := g.Hands[playerID]
	if !ok {
		return ErrHandNotFound
	}

	switch move.Type {
	case MovePlay:
		if !ContainsCard(hand, move.Card) {
			return ErrCardNotInHand
		}
		if !g.Board.CanPlay(move.Card, g.Opener) {
			return ErrCardNotPlayable
		}
	case MovePass:
		if g.Board.CanMakeAnyMove(hand, g.Opener) {
			return ErrHavePlayable
		}
	}
	return nil
}

// MoveOutcome describes the effects of an accepted move.
type MoveOutcome struct {
	// Finished is true when the acting player emptied their hand.
	Finished bool
	// NextTurn is the id now holding the turn.
	NextTurn string
	// TurnFallback is true when the acting player was missing from the
	// active set and turn advancement fell back to the first active player.
	TurnFallback bool
	// Action is the recorded last action.
	Action Action
}

// ApplyMove applies a validated move as a single combined transition: board
// update, hand and count update, turn advancement, turn-number increment and
// last-action record. Callers must have accepted the move via ValidateMove.
func ApplyMove(g *Game, playerID string, move Move, now int64) MoveOutcome {
	outcome := MoveOutcome{
		Action: Action{Type: move.Type, Player: playerID, Timestamp: now},
	}

	if move.Type == MovePlay {
		g.Board.Play(move.Card)
		g.Hands[playerID] = RemoveCard(g.Hands[playerID], move.Card)
		if p := g.Players[playerID]; p != nil {
			p.CardsCount = len(g.Hands[playerID])
		}
		outcome.Action.Card = move.Card.Token()
	}

	next, found := NextPlayer(playerID, g.Players)
	outcome.NextTurn = next
	outcome.TurnFallback = !found

	g.State.CurrentTurn = next
	g.State.TurnNumber++
	g.State.LastAction = &outcome.Action

	if move.Type == MovePlay && len(g.Hands[playerID]) == 0 {
		g.State.Finished = true
		g.State.Winner = playerID
		outcome.Finished = true
	}

	return outcome
}
