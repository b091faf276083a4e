package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"sevens/internal/domain"
	"sevens/internal/ports"
)

// Metadata is the room's bookkeeping record. GameID rotates on every rematch
// so each game's activity feed lives under its own subtree.
type Metadata struct {
	Host   string `json:"host"`
	GameID string `json:"gameId"`
	Opener string `json:"opener,omitempty"`
}

// readJSON decodes the value at path into out. A missing path leaves out
// untouched and reports false.
func readJSON(ctx context.Context, store ports.StateStore, path string, out any) (bool, error) {
	raw, err := store.Read(ctx, path)
	if errors.Is(err, ports.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// ReadMetadata loads the room metadata, or a zero record if none exists.
func ReadMetadata(ctx context.Context, store ports.StateStore, room string) (Metadata, error) {
	var meta Metadata
	if _, err := readJSON(ctx, store, metadataPath(room), &meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// ReadGame assembles a game snapshot from the room's paths. Missing paths
// decode to their zero values, so a never-started room comes back as a game
// in the not-started phase rather than an error. Hands are loaded only for
// players present in the roster.
func ReadGame(ctx context.Context, store ports.StateStore, room string, opener domain.Card) (*domain.Game, error) {
	g := &domain.Game{
		Board:   domain.NewBoard(),
		Players: make(map[string]*domain.Player),
		Hands:   make(map[string][]domain.Card),
		Opener:  opener,
	}

	if _, err := readJSON(ctx, store, boardPath(room), g.Board); err != nil {
		return nil, err
	}
	g.Board.Normalize()

	if _, err := readJSON(ctx, store, playersPath(room), &g.Players); err != nil {
		return nil, err
	}

	for id := range g.Players {
		var hand []domain.Card
		ok, err := readJSON(ctx, store, handPath(room, id), &hand)
		if err != nil {
			return nil, err
		}
		if ok {
			g.Hands[id] = hand
		}
	}

	st, err := ReadGameState(ctx, store, room)
	if err != nil {
		return nil, err
	}
	g.State = st
	return g, nil
}

// ReadGameState loads the per-field state record.
func ReadGameState(ctx context.Context, store ports.StateStore, room string) (domain.GameState, error) {
	var st domain.GameState
	fields := []struct {
		path string
		out  any
	}{
		{startedPath(room), &st.Started},
		{currentTurnPath(room), &st.CurrentTurn},
		{turnNumberPath(room), &st.TurnNumber},
		{finishedPath(room), &st.Finished},
		{winnerPath(room), &st.Winner},
		{finalScoresPath(room), &st.FinalScores},
		{lastActionPath(room), &st.LastAction},
	}
	for _, f := range fields {
		if _, err := readJSON(ctx, store, f.path, f.out); err != nil {
			return domain.GameState{}, err
		}
	}
	return st, nil
}

// buildMoveUpdates turns an applied move into the single batch that commits
// it: board, the mover's hand and the roster only when cards moved, the turn
// record on every move, and an activity entry keyed so concurrent writers
// never collide. The turn number rides as an increment so interleaved batches
// still count every accepted move.
func buildMoveUpdates(room, gameID, playerID string, g *domain.Game, move domain.Move, outcome domain.MoveOutcome) map[string]any {
	updates := map[string]any{
		currentTurnPath(room): g.State.CurrentTurn,
		turnNumberPath(room):  ports.Delta(1),
		lastActionPath(room):  g.State.LastAction,
	}
	if move.Type == domain.MovePlay {
		updates[boardPath(room)] = g.Board
		updates[handPath(room, playerID)] = g.Hands[playerID]
		updates[playersPath(room)] = g.Players
	}
	if outcome.Finished {
		updates[finishedPath(room)] = true
		updates[winnerPath(room)] = playerID
	}
	if gameID == "" {
		gameID = "g0"
	}
	updates[activityPath(room, gameID, uuid.NewString())] = outcome.Action
	return updates
}
