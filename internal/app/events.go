package app

import "sevens/internal/domain"

// EventKind identifies emitted game events for adapter dispatch.
type EventKind string

const (
	EventGameStarted    EventKind = "game_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventBoardChanged   EventKind = "board_changed"
	EventTurnChanged    EventKind = "turn_changed"
	EventPlayersChanged EventKind = "players_changed"
	EventGameFinished   EventKind = "game_finished"
)

// Event is a game event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type GameStartedPayload struct {
	FirstTurnUserID string       `json:"firstTurn"`
	RemovedCard     *domain.Card `json:"removedCard,omitempty"`
}

type HandDealtPayload struct {
	UserID string        `json:"userId"`
	Hand   []domain.Card `json:"hand"`
}

type BoardChangedPayload struct {
	Board *domain.Board `json:"board"`
}

type TurnChangedPayload struct {
	State domain.GameState `json:"state"`
}

type PlayersChangedPayload struct {
	Players map[string]*domain.Player `json:"players"`
}

type GameFinishedPayload struct {
	WinnerID string           `json:"winner"`
	Rankings []domain.Ranking `json:"rankings"`
}
