package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"sevens/internal/app"
	"sevens/internal/domain"
)

// quickMatchResponse tells the client which match to join and whether it was
// created on their behalf.
type quickMatchResponse struct {
	MatchID string `json:"matchId"`
	Created bool   `json:"created"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch)
}

// openLobbyQuery matches Sevens lobbies that advertise an open seat.
func openLobbyQuery() string {
	return fmt.Sprintf("+label.open:T +label.game:sevens +label.phase:%s", domain.PhaseNotStarted)
}

// rpcQuickMatch joins the caller to an open Sevens lobby, creating one when
// none exists. Seat and owner assignment happen in MatchJoin.
func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	minSize := 1
	maxSize := app.MaxPlayers - 1 // a seat must remain for the caller

	matches, err := nk.MatchList(ctx, 1, true, "", &minSize, &maxSize, openLobbyQuery())
	if err != nil {
		logger.Error("rpcQuickMatch: list matches: %v", err)
		return "", err
	}
	if len(matches) > 0 {
		return quickMatchReply(matches[0].MatchId, false)
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameSevens, nil)
	if err != nil {
		logger.Error("rpcQuickMatch: create match: %v", err)
		return "", err
	}
	return quickMatchReply(matchID, true)
}

func quickMatchReply(matchID string, created bool) (string, error) {
	b, err := json.Marshal(quickMatchResponse{MatchID: matchID, Created: created})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
