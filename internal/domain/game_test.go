package domain

import (
	"errors"
	"testing"
)

func twoPlayerGame() *Game {
	return &Game{
		State: GameState{Started: true, CurrentTurn: "p1"},
		Board: NewBoard(),
		Players: map[string]*Player{
			"p1": {Username: "one", Seat: 0, CardsCount: 2},
			"p2": {Username: "two", Seat: 1, CardsCount: 2},
		},
		Hands: map[string][]Card{
			"p1": handOf("7H", "KC"),
			"p2": handOf("8H", "2D"),
		},
		Opener: MustParseCard("7H"),
	}
}

func TestPhase(t *testing.T) {
	gs := &GameState{}
	if gs.Phase() != PhaseNotStarted {
		t.Fatalf("phase = %s, want not_started", gs.Phase())
	}
	gs.Started = true
	if gs.Phase() != PhaseInProgress {
		t.Fatalf("phase = %s, want in_progress", gs.Phase())
	}
	gs.Finished = true
	if gs.Phase() != PhaseFinished {
		t.Fatalf("phase = %s, want finished", gs.Phase())
	}
}

func TestValidateMoveOrder(t *testing.T) {
	tests := []struct {
		name   string
		player string
		move   Move
		mutate func(*Game)
		want   error
	}{
		{
			name:   "not your turn",
			player: "p2",
			move:   PlayMove(MustParseCard("8H")),
			want:   ErrNotYourTurn,
		},
		{
			name:   "not started",
			player: "p1",
			move:   PlayMove(MustParseCard("7H")),
			mutate: func(g *Game) { g.State.Started = false },
			want:   ErrNotStarted,
		},
		{
			name:   "finished",
			player: "p1",
			move:   PlayMove(MustParseCard("7H")),
			mutate: func(g *Game) { g.State.Finished = true },
			want:   ErrFinished,
		},
		{
			name:   "card not in hand",
			player: "p1",
			move:   PlayMove(MustParseCard("9S")),
			want:   ErrCardNotInHand,
		},
		{
			name:   "card not playable",
			player: "p1",
			move:   PlayMove(MustParseCard("KC")),
			want:   ErrCardNotPlayable,
		},
		{
			name:   "pass while holding the opener",
			player: "p1",
			move:   PassMove(),
			want:   ErrHavePlayable,
		},
		{
			name:   "legal opener",
			player: "p1",
			move:   PlayMove(MustParseCard("7H")),
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := twoPlayerGame()
			if tt.mutate != nil {
				tt.mutate(game)
			}
			if err := ValidateMove(tt.player, tt.move, game); !errors.Is(err, tt.want) {
				t.Fatalf("ValidateMove = %v, want %v", err, tt.want)
			}
		})
	}

	if err := ValidateMove("p1", PassMove(), &Game{}); !errors.Is(err, ErrMissingData) {
		t.Fatalf("empty game: err = %v, want ErrMissingData", err)
	}
}

func TestValidPassWhenStuck(t *testing.T) {
	g := twoPlayerGame()
	g.Board.Play(MustParseCard("7H"))
	g.Hands["p1"] = handOf("KC", "2D") // nothing playable: clubs and diamonds closed
	g.Players["p1"].CardsCount = 2

	if err := ValidateMove("p1", PassMove(), g); err != nil {
		t.Fatalf("pass while stuck rejected: %v", err)
	}
}

func TestApplyMovePlay(t *testing.T) {
	g := twoPlayerGame()
	outcome := ApplyMove(g, "p1", PlayMove(MustParseCard("7H")), 1000)

	if !g.Board.Hearts.Opened {
		t.Fatalf("board not updated")
	}
	if len(g.Hands["p1"]) != 1 || g.Players["p1"].CardsCount != 1 {
		t.Fatalf("hand/count not updated: hand=%v count=%d", g.Hands["p1"], g.Players["p1"].CardsCount)
	}
	if g.State.CurrentTurn != "p2" || outcome.NextTurn != "p2" {
		t.Fatalf("turn = %s, want p2", g.State.CurrentTurn)
	}
	if g.State.TurnNumber != 1 {
		t.Fatalf("turnNumber = %d, want 1", g.State.TurnNumber)
	}
	if g.State.LastAction == nil || g.State.LastAction.Card != "7H" || g.State.LastAction.Type != MovePlay {
		t.Fatalf("lastAction = %+v", g.State.LastAction)
	}
	if outcome.Finished {
		t.Fatalf("game should not finish with cards remaining")
	}
}

func TestApplyMovePassAdvancesTurnOnly(t *testing.T) {
	g := twoPlayerGame()
	before := len(g.Hands["p1"])

	outcome := ApplyMove(g, "p1", PassMove(), 1000)
	if len(g.Hands["p1"]) != before {
		t.Fatalf("pass mutated the hand")
	}
	if g.State.CurrentTurn != "p2" || g.State.TurnNumber != 1 {
		t.Fatalf("turn=%s turnNumber=%d after pass", g.State.CurrentTurn, g.State.TurnNumber)
	}
	if outcome.Action.Type != MovePass || outcome.Action.Card != "" {
		t.Fatalf("action = %+v", outcome.Action)
	}
}

func TestApplyMoveFinish(t *testing.T) {
	g := twoPlayerGame()
	g.Hands["p1"] = handOf("7H")
	g.Players["p1"].CardsCount = 1

	outcome := ApplyMove(g, "p1", PlayMove(MustParseCard("7H")), 1000)
	if !outcome.Finished || !g.State.Finished {
		t.Fatalf("emptying the hand must finish the game")
	}
	if g.State.Winner != "p1" {
		t.Fatalf("winner = %s, want p1", g.State.Winner)
	}
}

func TestNextPlayerSkipsFinished(t *testing.T) {
	players := map[string]*Player{
		"a": {Seat: 0, CardsCount: 3},
		"b": {Seat: 1, CardsCount: 0}, // finished, skipped
		"c": {Seat: 2, CardsCount: 5},
	}

	next, ok := NextPlayer("a", players)
	if !ok || next != "c" {
		t.Fatalf("NextPlayer(a) = %s ok=%v, want c", next, ok)
	}

	next, ok = NextPlayer("c", players)
	if !ok || next != "a" {
		t.Fatalf("NextPlayer(c) = %s ok=%v, want a (wrap)", next, ok)
	}
}

func TestNextPlayerSingleRemaining(t *testing.T) {
	players := map[string]*Player{
		"a": {Seat: 0, CardsCount: 0},
		"b": {Seat: 1, CardsCount: 4},
	}
	next, ok := NextPlayer("a", players)
	if !ok || next != "b" {
		t.Fatalf("NextPlayer = %s ok=%v, want b", next, ok)
	}
}

func TestNextPlayerAfterCurrentFinishes(t *testing.T) {
	// The current player just went out; their seat still anchors rotation.
	players := map[string]*Player{
		"a": {Seat: 0, CardsCount: 2},
		"b": {Seat: 1, CardsCount: 0},
		"c": {Seat: 2, CardsCount: 3},
	}
	next, ok := NextPlayer("b", players)
	if !ok || next != "c" {
		t.Fatalf("NextPlayer(b) = %s ok=%v, want c with no fallback", next, ok)
	}
}

func TestApplyMoveFinishAdvancesTurnCyclically(t *testing.T) {
	g := &Game{
		State: GameState{Started: true, CurrentTurn: "p2"},
		Board: NewBoard(),
		Players: map[string]*Player{
			"p1": {Seat: 0, CardsCount: 1},
			"p2": {Seat: 1, CardsCount: 1},
			"p3": {Seat: 2, CardsCount: 1},
		},
		Hands: map[string][]Card{
			"p1": handOf("KC"),
			"p2": handOf("7H"),
			"p3": handOf("2S"),
		},
		Opener: MustParseCard("7H"),
	}

	outcome := ApplyMove(g, "p2", PlayMove(MustParseCard("7H")), 1000)
	if !outcome.Finished {
		t.Fatalf("emptying the hand must finish the game")
	}
	if outcome.TurnFallback {
		t.Fatalf("finishing move must not trip the stale-current fallback")
	}
	if outcome.NextTurn != "p3" {
		t.Fatalf("next turn = %s, want cyclic successor p3", outcome.NextTurn)
	}
}

func TestNextPlayerStaleCurrentFallsBack(t *testing.T) {
	players := map[string]*Player{
		"a": {Seat: 0, CardsCount: 3},
		"b": {Seat: 1, CardsCount: 3},
	}
	next, ok := NextPlayer("ghost", players)
	if ok {
		t.Fatalf("stale current must report the fallback")
	}
	if next != "a" {
		t.Fatalf("fallback = %s, want first active player a", next)
	}
}
