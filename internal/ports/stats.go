package ports

import (
	"context"

	"sevens/internal/domain"
)

// StatsRecorder receives final rankings for leaderboard and session-statistics
// bookkeeping. Implementations live with the lobby/profile layer outside this
// core; a nil recorder is skipped.
type StatsRecorder interface {
	// RecordGameResult stores the outcome of one finished game.
	RecordGameResult(ctx context.Context, roomCode string, rankings []domain.Ranking) error
}
