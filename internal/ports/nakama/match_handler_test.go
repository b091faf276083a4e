package nakama

import (
	"encoding/json"
	"testing"

	"sevens/internal/app"
	"sevens/internal/domain"
)

func TestLowestAvailableSeat(t *testing.T) {
	tests := []struct {
		name  string
		seats [4]string
		want  int
	}{
		{name: "all empty", seats: [4]string{"", "", "", ""}, want: 0},
		{name: "first taken", seats: [4]string{"u1", "", "", ""}, want: 1},
		{name: "gap reused", seats: [4]string{"u1", "", "u3", ""}, want: 1},
		{name: "full returns zero index fallback", seats: [4]string{"u1", "u2", "u3", "u4"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lowestAvailableSeat(&tt.seats)
			if got != tt.want {
				t.Fatalf("lowestAvailableSeat() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildLabel(t *testing.T) {
	state := &MatchState{
		Seats: [4]string{"a", "b", "", ""},
		App:   app.NewService(nil, domain.Card{}, 0),
	}

	var label Label
	if err := json.Unmarshal([]byte(buildLabel(state)), &label); err != nil {
		t.Fatalf("label unmarshal failed: %v", err)
	}

	if !label.Open || label.Game != "sevens" || label.Phase != string(domain.PhaseNotStarted) {
		t.Fatalf("label unexpected: %+v", label)
	}

	// A full lobby closes the label.
	state.Seats = [4]string{"a", "b", "c", "d"}
	if err := json.Unmarshal([]byte(buildLabel(state)), &label); err != nil {
		t.Fatalf("label unmarshal failed: %v", err)
	}
	if label.Open {
		t.Fatalf("expected label.Open=false when lobby is full, got true")
	}

	// A live game closes it regardless of seats.
	state.Seats = [4]string{"a", "b", "", ""}
	state.Game = &domain.Game{State: domain.GameState{Started: true}}
	if err := json.Unmarshal([]byte(buildLabel(state)), &label); err != nil {
		t.Fatalf("label unmarshal failed: %v", err)
	}
	if label.Open || label.Phase != string(domain.PhaseInProgress) {
		t.Fatalf("label unexpected for live game: %+v", label)
	}
}

func TestSeatHelpers(t *testing.T) {
	seats := [4]string{"", "u2", "", "u4"}

	if got := seatOf(&seats, "u2"); got != 1 {
		t.Fatalf("seatOf(u2) = %d, want 1", got)
	}
	if got := seatOf(&seats, "missing"); got != -1 {
		t.Fatalf("seatOf(missing) = %d, want -1", got)
	}
	if got := firstOccupiedSeat(&seats); got != 1 {
		t.Fatalf("firstOccupiedSeat() = %d, want 1", got)
	}

	empty := [4]string{}
	if got := firstOccupiedSeat(&empty); got != 0 {
		t.Fatalf("firstOccupiedSeat(empty) = %d, want 0", got)
	}
}

func TestEventOpCodesCoverAllKinds(t *testing.T) {
	kinds := []app.EventKind{
		app.EventGameStarted,
		app.EventHandDealt,
		app.EventBoardChanged,
		app.EventTurnChanged,
		app.EventPlayersChanged,
		app.EventGameFinished,
	}
	for _, kind := range kinds {
		if _, ok := eventOpCodes[kind]; !ok {
			t.Fatalf("no opcode mapped for event kind %q", kind)
		}
	}
}

func TestMatchStatePhase(t *testing.T) {
	s := &MatchState{}
	if got := s.phase(); got != domain.PhaseNotStarted {
		t.Fatalf("phase() = %q, want %q", got, domain.PhaseNotStarted)
	}

	s.Game = &domain.Game{State: domain.GameState{Started: true}}
	if got := s.phase(); got != domain.PhaseInProgress {
		t.Fatalf("phase() = %q, want %q", got, domain.PhaseInProgress)
	}

	s.Game.State.Finished = true
	if got := s.phase(); got != domain.PhaseFinished {
		t.Fatalf("phase() = %q, want %q", got, domain.PhaseFinished)
	}
}
