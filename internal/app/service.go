package app

import (
	"errors"
	"math/rand"
	"time"

	"sevens/internal/domain"
)

var (
	ErrTooFewPlayers  = errors.New("not enough players to start")
	ErrTooManyPlayers = errors.New("too many players to start")
	ErrAlreadyStarted = errors.New("game already started")
	ErrNotFinished    = errors.New("game not finished")
)

// Member is one active room member at game-start time.
type Member struct {
	UserID   string
	Username string
}

// Service contains the Sevens use-cases operating on domain state.
type Service struct {
	rng           *rand.Rand
	opener        domain.Card
	maxReshuffles int
}

// NewService constructs a Service with the provided rng or a time-seeded
// default. A zero opener falls back to the conventional 7H.
func NewService(rng *rand.Rand, opener domain.Card, maxReshuffles int) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opener == (domain.Card{}) {
		opener = domain.MustParseCard(DefaultOpenerToken)
	}
	if maxReshuffles < 1 {
		maxReshuffles = DefaultMaxReshuffles
	}
	return &Service{rng: rng, opener: opener, maxReshuffles: maxReshuffles}
}

// Opener returns the designated opening card.
func (s *Service) Opener() domain.Card {
	return s.opener
}

// StartGame deals fair hands to the given members and produces the initial
// game. The first turn goes to whoever holds the opener; if the fairness
// fallback left it undealt, the first member leads.
func (s *Service) StartGame(members []Member, removeCard *domain.Card) (*domain.Game, []Event, error) {
	if len(members) < MinPlayers {
		return nil, nil, ErrTooFewPlayers
	}
	if len(members) > MaxPlayers {
		return nil, nil, ErrTooManyPlayers
	}

	playerIDs := make([]string, len(members))
	for i, m := range members {
		playerIDs[i] = m.UserID
	}

	deal, err := domain.DealFair(s.rng, playerIDs, domain.DealOptions{
		Opener:      s.opener,
		RemoveCard:  removeCard,
		MaxAttempts: s.maxReshuffles,
	})
	if err != nil {
		return nil, nil, err
	}

	firstTurn := domain.OpenerHolder(deal.Hands, playerIDs, s.opener)
	if firstTurn == "" {
		firstTurn = playerIDs[0]
	}

	players := make(map[string]*domain.Player, len(members))
	for i, m := range members {
		players[m.UserID] = &domain.Player{
			Username:   m.Username,
			Seat:       i,
			CardsCount: len(deal.Hands[m.UserID]),
			Connected:  true,
		}
	}

	game := &domain.Game{
		State: domain.GameState{
			Started:     true,
			CurrentTurn: firstTurn,
		},
		Board:   domain.NewBoard(),
		Players: players,
		Hands:   deal.Hands,
		Opener:  s.opener,
	}

	events := make([]Event, 0, len(members)+2)
	for _, m := range members {
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: m.UserID, Hand: deal.Hands[m.UserID]},
			Recipients: []string{m.UserID},
		})
	}
	events = append(events,
		Event{Kind: EventPlayersChanged, Payload: PlayersChangedPayload{Players: players}},
		Event{Kind: EventGameStarted, Payload: GameStartedPayload{FirstTurnUserID: firstTurn, RemovedCard: deal.RemovedCard}},
	)

	return game, events, nil
}

// PlayCard validates and applies a play move, emitting the resulting events.
// On a finishing move the scores are finalized in the same call.
func (s *Service) PlayCard(game *domain.Game, playerID string, card domain.Card) ([]Event, error) {
	return s.applyMove(game, playerID, domain.PlayMove(card))
}

// PassTurn validates and applies a pass, emitting the resulting events.
func (s *Service) PassTurn(game *domain.Game, playerID string) ([]Event, error) {
	return s.applyMove(game, playerID, domain.PassMove())
}

func (s *Service) applyMove(game *domain.Game, playerID string, move domain.Move) ([]Event, error) {
	if err := domain.ValidateMove(playerID, move, game); err != nil {
		return nil, err
	}

	outcome := domain.ApplyMove(game, playerID, move, time.Now().UnixMilli())

	events := make([]Event, 0, 4)
	if move.Type == domain.MovePlay {
		events = append(events,
			Event{Kind: EventBoardChanged, Payload: BoardChangedPayload{Board: game.Board}},
			Event{Kind: EventHandDealt, Payload: HandDealtPayload{UserID: playerID, Hand: game.Hands[playerID]}, Recipients: []string{playerID}},
			Event{Kind: EventPlayersChanged, Payload: PlayersChangedPayload{Players: game.Players}},
		)
	}
	events = append(events, Event{Kind: EventTurnChanged, Payload: TurnChangedPayload{State: game.State}})

	if outcome.Finished {
		finishEvents, err := s.FinalizeScores(game)
		if err != nil {
			return events, err
		}
		events = append(events, finishEvents...)
	}

	return events, nil
}

// FinalizeScores computes final scores and rankings exactly once. Calling it
// again after scores exist is a no-op with no events.
func (s *Service) FinalizeScores(game *domain.Game) ([]Event, error) {
	if game == nil || !game.State.Finished {
		return nil, ErrNotFinished
	}
	if game.State.FinalScores != nil {
		return nil, nil
	}

	scores := domain.FinalScores(game.State.Winner, game.Players, game.Hands)
	rankings := domain.Rankings(scores)

	game.State.FinalScores = scores
	for _, r := range rankings {
		if p := game.Players[r.PlayerID]; p != nil {
			p.FinalScore = r.Score
			p.FinishPosition = r.Position
		}
	}

	return []Event{
		{Kind: EventPlayersChanged, Payload: PlayersChangedPayload{Players: game.Players}},
		{Kind: EventGameFinished, Payload: GameFinishedPayload{WinnerID: game.State.Winner, Rankings: rankings}},
	}, nil
}

// Reset clears a finished game back to the pre-start state for a rematch,
// keeping the player roster.
func (s *Service) Reset(game *domain.Game) []Event {
	game.State = domain.GameState{}
	game.Board = domain.NewBoard()
	game.Hands = make(map[string][]domain.Card, len(game.Players))
	for id, p := range game.Players {
		p.CardsCount = 0
		p.FinalScore = 0
		p.FinishPosition = 0
		game.Hands[id] = nil
	}

	return []Event{
		{Kind: EventBoardChanged, Payload: BoardChangedPayload{Board: game.Board}},
		{Kind: EventTurnChanged, Payload: TurnChangedPayload{State: game.State}},
	}
}
