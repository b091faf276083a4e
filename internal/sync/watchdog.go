package sync

import (
	"context"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"sevens/internal/domain"
	"sevens/internal/ports"
)

// Watchdog enforces an advisory per-turn timeout for one room. It observes
// turn changes through the store and, when the holder of the turn sits past
// the deadline, submits a move on their behalf through the ordinary
// validate-and-submit path: the suggested card if one is playable, a pass
// otherwise. Because it goes through SubmitMove like any client, a player
// move landing first simply wins and the auto move is rejected.
type Watchdog struct {
	store   ports.StateStore
	log     *zap.Logger
	room    string
	opener  domain.Card
	timeout time.Duration

	mu       stdsync.Mutex
	turnSeen int
	deadline time.Time
	active   bool
}

// NewWatchdog builds a watchdog for room. A nil logger is replaced with a
// no-op one.
func NewWatchdog(store ports.StateStore, log *zap.Logger, room string, opener domain.Card, timeout time.Duration) *Watchdog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watchdog{
		store:   store,
		log:     log.With(zap.String("room", room)),
		room:    room,
		opener:  opener,
		timeout: timeout,
	}
}

// Run watches the room until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) error {
	sub, err := w.store.Subscribe(ctx, turnNumberPath(w.room), func([]byte) {
		w.observe(ctx)
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	w.observe(ctx)

	poll := w.timeout / 4
	if poll > time.Second {
		poll = time.Second
	}
	if poll <= 0 {
		poll = time.Second
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// observe refreshes the deadline from the freshest state record. The clock
// restarts when the turn number moves and on every transition into the
// in-progress phase, so the first turn of a game (or of a freshly attached
// watchdog) always gets the full timeout.
func (w *Watchdog) observe(ctx context.Context) {
	st, err := ReadGameState(ctx, w.store, w.room)
	if err != nil {
		w.log.Warn("read game state", zap.Error(err))
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	wasActive := w.active
	w.active = st.Phase() == domain.PhaseInProgress
	if st.TurnNumber != w.turnSeen || !wasActive || !w.active {
		w.turnSeen = st.TurnNumber
		w.deadline = time.Now().Add(w.timeout)
	}
}

func (w *Watchdog) tick(ctx context.Context) {
	w.mu.Lock()
	expired := w.active && time.Now().After(w.deadline)
	turnSeen := w.turnSeen
	w.mu.Unlock()
	if !expired {
		return
	}

	game, err := ReadGame(ctx, w.store, w.room, w.opener)
	if err != nil {
		w.log.Warn("read game", zap.Error(err))
		return
	}
	if game.State.Phase() != domain.PhaseInProgress {
		return
	}
	if game.State.TurnNumber != turnSeen {
		// A move landed since the last signal; restart the clock.
		w.observe(ctx)
		return
	}

	player := game.State.CurrentTurn
	move := domain.PassMove()
	hint := game.Board.SuggestMove(game.Hands[player], w.opener)
	if hint.HasPlayable && hint.Suggestion != nil {
		move = domain.PlayMove(*hint.Suggestion)
	}

	finished, err := SubmitMove(ctx, w.store, w.log, w.room, player, move, w.opener)
	if err != nil {
		w.log.Warn("auto move rejected",
			zap.String("player", player),
			zap.Error(err))
		w.observe(ctx)
		return
	}

	w.log.Info("turn timed out, moved on player's behalf",
		zap.String("player", player),
		zap.String("move", string(move.Type)),
		zap.Int("turnNumber", turnSeen))

	if finished {
		if err := FinalizeScores(ctx, w.store, w.log, w.room, w.opener, nil); err != nil {
			w.log.Warn("finalize scores", zap.Error(err))
		}
	}
	w.observe(ctx)
}
