// Package sync keeps a client's view of a Sevens room coherent over a shared
// last-writer-wins state store. Any participant may submit moves: each submit
// re-reads the freshest state, validates against it and commits the whole
// transition as one multi-path batch. The first writer to flip the
// finalization counter owns score finalization, so every game finishes
// exactly once no matter how many observers race.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sevens/internal/app"
	"sevens/internal/domain"
	"sevens/internal/ports"
)

var (
	ErrNotHost = errors.New("only the host may do this")
)

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// Session is one participant's live attachment to a room. Callbacks fire on
// the subscriber goroutine; set them before Start.
type Session struct {
	store  ports.StateStore
	log    *zap.Logger
	svc    *app.Service
	room   string
	userID string
	opener domain.Card
	stats  ports.StatsRecorder

	mu   stdsync.Mutex
	subs []ports.Subscription

	OnBoardChange   func(*domain.Board)
	OnHandChange    func([]domain.Card)
	OnPlayersChange func(map[string]*domain.Player)
	OnTurnChange    func(domain.GameState)
	OnGameFinished  func(winner string, rankings []domain.Ranking)
}

// Options carries optional session collaborators.
type Options struct {
	// Stats, when set, receives the final rankings of games this session
	// finalizes.
	Stats ports.StatsRecorder
}

// NewSession attaches userID to room over store. The service supplies the
// deal and opener rules; a nil logger is replaced with a no-op one.
func NewSession(store ports.StateStore, log *zap.Logger, svc *app.Service, room, userID string, opts Options) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		store:  store,
		log:    log.With(zap.String("room", room), zap.String("user", userID)),
		svc:    svc,
		room:   room,
		userID: userID,
		opener: svc.Opener(),
		stats:  opts.Stats,
	}
}

// Start subscribes to the room's change channels. The turn number is the
// change signal for game state: it moves on every accepted move, and the
// handler re-reads the full state so stale intermediate values are never
// surfaced.
func (s *Session) Start(ctx context.Context) error {
	type watch struct {
		path string
		fn   func(context.Context, []byte)
	}
	watches := []watch{
		{boardPath(s.room), s.onBoard},
		{playersPath(s.room), s.onPlayers},
		{handPath(s.room, s.userID), s.onHand},
		{turnNumberPath(s.room), s.onTurnSignal},
		{finalScoresPath(s.room), s.onFinalScores},
	}

	for _, w := range watches {
		fn := w.fn
		sub, err := s.store.Subscribe(ctx, w.path, func(raw []byte) {
			fn(ctx, raw)
		})
		if err != nil {
			s.Close()
			return fmt.Errorf("watch %s: %w", w.path, err)
		}
		s.mu.Lock()
		s.subs = append(s.subs, sub)
		s.mu.Unlock()
	}
	return nil
}

// Close detaches all subscriptions.
func (s *Session) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

func (s *Session) onBoard(_ context.Context, raw []byte) {
	if s.OnBoardChange == nil {
		return
	}
	board := domain.NewBoard()
	if err := json.Unmarshal(raw, board); err != nil {
		s.log.Warn("bad board update", zap.Error(err))
		return
	}
	board.Normalize()
	s.OnBoardChange(board)
}

func (s *Session) onPlayers(_ context.Context, raw []byte) {
	if s.OnPlayersChange == nil {
		return
	}
	players := make(map[string]*domain.Player)
	if err := json.Unmarshal(raw, &players); err != nil {
		s.log.Warn("bad players update", zap.Error(err))
		return
	}
	s.OnPlayersChange(players)
}

func (s *Session) onHand(_ context.Context, raw []byte) {
	if s.OnHandChange == nil {
		return
	}
	var hand []domain.Card
	if err := json.Unmarshal(raw, &hand); err != nil {
		s.log.Warn("bad hand update", zap.Error(err))
		return
	}
	s.OnHandChange(hand)
}

// onTurnSignal fires whenever the turn number moves. The payload is just the
// counter; the handler re-reads the full state record so callbacks always see
// a coherent snapshot of the batch that moved it.
func (s *Session) onTurnSignal(ctx context.Context, _ []byte) {
	if s.OnTurnChange == nil {
		return
	}
	st, err := ReadGameState(ctx, s.store, s.room)
	if err != nil {
		s.log.Warn("read game state", zap.Error(err))
		return
	}
	s.OnTurnChange(st)
}

// onFinalScores fires once per game, when the finalizing writer lands the
// score record.
func (s *Session) onFinalScores(ctx context.Context, raw []byte) {
	if s.OnGameFinished == nil {
		return
	}
	var scores map[string]int
	if err := json.Unmarshal(raw, &scores); err != nil {
		s.log.Warn("bad final scores", zap.Error(err))
		return
	}
	if len(scores) == 0 {
		return
	}
	st, err := ReadGameState(ctx, s.store, s.room)
	if err != nil {
		s.log.Warn("read final state", zap.Error(err))
		return
	}
	s.OnGameFinished(st.Winner, domain.Rankings(scores))
}

// StartGame deals and commits the initial state for the given members. The
// caller must be the room host. RemoveCard pre-removes one card for an odd
// table size; it may not be the opener.
func (s *Session) StartGame(ctx context.Context, members []app.Member, removeCard *domain.Card) error {
	meta, err := ReadMetadata(ctx, s.store, s.room)
	if err != nil {
		return err
	}
	if meta.Host != "" && meta.Host != s.userID {
		return ErrNotHost
	}

	st, err := ReadGameState(ctx, s.store, s.room)
	if err != nil {
		return err
	}
	if st.Started && !st.Finished {
		return app.ErrAlreadyStarted
	}

	game, _, err := s.svc.StartGame(members, removeCard)
	if err != nil {
		return err
	}

	if meta.Host == "" {
		meta.Host = s.userID
	}
	meta.GameID = uuid.NewString()
	meta.Opener = s.opener.Token()

	updates := map[string]any{
		metadataPath(s.room):        meta,
		boardPath(s.room):           game.Board,
		playersPath(s.room):         game.Players,
		startedPath(s.room):         true,
		currentTurnPath(s.room):     game.State.CurrentTurn,
		turnNumberPath(s.room):      0,
		finishedPath(s.room):        false,
		winnerPath(s.room):          nil,
		finalScoresPath(s.room):     nil,
		lastActionPath(s.room):      nil,
		gameOverHandledPath(s.room): nil,
	}
	for id, hand := range game.Hands {
		updates[handPath(s.room, id)] = hand
	}

	if err := s.store.MultiPathUpdate(ctx, updates); err != nil {
		return err
	}
	s.log.Info("game started",
		zap.String("gameId", meta.GameID),
		zap.String("firstTurn", game.State.CurrentTurn),
		zap.Int("players", len(members)))
	return nil
}

// PlayCard submits a play for this session's user. A finishing play also
// settles the scores, racing any other observer behind the finalization
// counter.
func (s *Session) PlayCard(ctx context.Context, card domain.Card) error {
	return s.submit(ctx, domain.PlayMove(card))
}

// Pass submits a pass for this session's user.
func (s *Session) Pass(ctx context.Context) error {
	return s.submit(ctx, domain.PassMove())
}

func (s *Session) submit(ctx context.Context, move domain.Move) error {
	finished, err := SubmitMove(ctx, s.store, s.log, s.room, s.userID, move, s.opener)
	if err != nil {
		return err
	}
	if finished {
		return FinalizeScores(ctx, s.store, s.log, s.room, s.opener, s.stats)
	}
	return nil
}

// Hint suggests a move from the freshest snapshot, for UI assistance only.
func (s *Session) Hint(ctx context.Context) (domain.MoveHint, error) {
	game, err := ReadGame(ctx, s.store, s.room, s.opener)
	if err != nil {
		return domain.MoveHint{}, err
	}
	return game.Board.SuggestMove(game.Hands[s.userID], s.opener), nil
}

// PlayAgain resets a finished game back to the pre-start state, keeping the
// roster. Host only. The game id rotates, so the previous game's activity
// feed stays intact under its old subtree.
func (s *Session) PlayAgain(ctx context.Context) error {
	meta, err := ReadMetadata(ctx, s.store, s.room)
	if err != nil {
		return err
	}
	if meta.Host != s.userID {
		return ErrNotHost
	}

	game, err := ReadGame(ctx, s.store, s.room, s.opener)
	if err != nil {
		return err
	}
	if !game.State.Finished {
		return app.ErrNotFinished
	}

	s.svc.Reset(game)
	meta.GameID = uuid.NewString()

	updates := map[string]any{
		metadataPath(s.room):        meta,
		boardPath(s.room):           game.Board,
		playersPath(s.room):         game.Players,
		startedPath(s.room):         nil,
		currentTurnPath(s.room):     nil,
		turnNumberPath(s.room):      0,
		finishedPath(s.room):        nil,
		winnerPath(s.room):          nil,
		finalScoresPath(s.room):     nil,
		lastActionPath(s.room):      nil,
		gameOverHandledPath(s.room): nil,
	}
	for id := range game.Players {
		updates[handPath(s.room, id)] = nil
	}
	return s.store.MultiPathUpdate(ctx, updates)
}

// SubmitMove validates move for playerID against the freshest readable state
// and, if accepted, commits the combined transition as one batch. It returns
// whether the move finished the game. Under concurrent submits the store's
// last-writer-wins rule arbitrates; a move validated against stale state is
// simply rejected here before any write happens.
func SubmitMove(ctx context.Context, store ports.StateStore, log *zap.Logger, room, playerID string, move domain.Move, opener domain.Card) (bool, error) {
	if log == nil {
		log = zap.NewNop()
	}

	game, err := ReadGame(ctx, store, room, opener)
	if err != nil {
		return false, err
	}
	if err := domain.ValidateMove(playerID, move, game); err != nil {
		return false, err
	}

	meta, err := ReadMetadata(ctx, store, room)
	if err != nil {
		return false, err
	}

	outcome := domain.ApplyMove(game, playerID, move, nowMillis())
	if outcome.TurnFallback {
		log.Warn("current turn holder not in active set, falling back",
			zap.String("room", room),
			zap.String("player", playerID),
			zap.String("nextTurn", outcome.NextTurn))
	}

	updates := buildMoveUpdates(room, meta.GameID, playerID, game, move, outcome)
	if err := store.MultiPathUpdate(ctx, updates); err != nil {
		return false, err
	}
	return outcome.Finished, nil
}

// FinalizeScores settles a finished game exactly once across all observers:
// the caller whose increment lands first computes and writes the scores,
// everyone else returns immediately. Missing hands degrade to best-available
// scoring with a warning instead of failing the summary.
func FinalizeScores(ctx context.Context, store ports.StateStore, log *zap.Logger, room string, opener domain.Card, stats ports.StatsRecorder) error {
	if log == nil {
		log = zap.NewNop()
	}

	n, err := store.AtomicIncrement(ctx, gameOverHandledPath(room), 1)
	if err != nil {
		return err
	}
	if n != 1 {
		return nil
	}

	game, err := ReadGame(ctx, store, room, opener)
	if err != nil {
		return err
	}
	if !game.State.Finished {
		return app.ErrNotFinished
	}

	for id, p := range game.Players {
		if id == game.State.Winner || p == nil {
			continue
		}
		if _, ok := game.Hands[id]; !ok && p.CardsCount > 0 {
			log.Warn("hand missing at finalization, scoring best available",
				zap.String("room", room), zap.String("player", id))
		}
	}

	scores := domain.FinalScores(game.State.Winner, game.Players, game.Hands)
	rankings := domain.Rankings(scores)
	for _, r := range rankings {
		if p := game.Players[r.PlayerID]; p != nil {
			p.FinalScore = r.Score
			p.FinishPosition = r.Position
		}
	}

	err = store.MultiPathUpdate(ctx, map[string]any{
		finalScoresPath(room): scores,
		playersPath(room):     game.Players,
	})
	if err != nil {
		return err
	}

	log.Info("game finalized",
		zap.String("room", room),
		zap.String("winner", game.State.Winner))

	if stats != nil {
		if err := stats.RecordGameResult(ctx, room, rankings); err != nil {
			log.Warn("record game result", zap.Error(err))
		}
	}
	return nil
}
