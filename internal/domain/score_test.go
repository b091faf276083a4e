package domain

import "testing"

func TestFinalScores(t *testing.T) {
	players := map[string]*Player{
		"winner": {Seat: 0},
		"p2":     {Seat: 1},
		"p3":     {Seat: 2},
	}
	hands := map[string][]Card{
		"winner": {},
		"p2":     handOf("KH", "2D"), // 13 + 2
		"p3":     handOf("AS", "6C"), // 1 + 6
	}

	scores := FinalScores("winner", players, hands)
	if scores["winner"] != 0 {
		t.Fatalf("winner score = %d, want 0", scores["winner"])
	}
	if scores["p2"] != 15 || scores["p3"] != 7 {
		t.Fatalf("scores = %v, want p2=15 p3=7", scores)
	}

	// Non-winner scores must account for every unplayed point.
	total := 0
	for id, hand := range hands {
		if id != "winner" {
			total += Points(hand)
		}
	}
	if scores["p2"]+scores["p3"] != total {
		t.Fatalf("score sum %d != unplayed points %d", scores["p2"]+scores["p3"], total)
	}
}

func TestRankings(t *testing.T) {
	rankings := Rankings(map[string]int{"A": 0, "B": 15, "C": 7})

	want := []Ranking{
		{PlayerID: "A", Score: 0, Position: 1},
		{PlayerID: "C", Score: 7, Position: 2},
		{PlayerID: "B", Score: 15, Position: 3},
	}
	if len(rankings) != len(want) {
		t.Fatalf("rankings size = %d, want %d", len(rankings), len(want))
	}
	for i := range want {
		if rankings[i] != want[i] {
			t.Fatalf("rankings[%d] = %+v, want %+v", i, rankings[i], want[i])
		}
	}
}

func TestRankingsTiesAreDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		rankings := Rankings(map[string]int{"z": 5, "a": 5, "m": 5})
		if rankings[0].PlayerID != "a" || rankings[1].PlayerID != "m" || rankings[2].PlayerID != "z" {
			t.Fatalf("tie order not deterministic: %+v", rankings)
		}
	}
}
