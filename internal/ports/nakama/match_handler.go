package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"sevens/internal/app"
	"sevens/internal/domain"
)

// Label is the match label advertised for quick-match queries.
type Label struct {
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// MatchState holds the authoritative runtime state for one Sevens match.
// Nakama is the single arbiter here: every move is validated against this
// state before anything is broadcast, so stale or malicious submissions
// never reach the other players.
type MatchState struct {
	Seats     [4]string                   // seat index -> userId, "" means empty
	OwnerSeat int                         // seat index of the match owner
	Presences map[string]runtime.Presence // userId -> presence for targeted messaging
	Usernames map[string]string           // userId -> display username
	App       *app.Service                // rules engine
	Game      *domain.Game                // nil while in the lobby
}

func (ms *MatchState) phase() domain.Phase {
	if ms.Game == nil {
		return domain.PhaseNotStarted
	}
	return ms.Game.State.Phase()
}

func (ms *MatchState) occupiedSeats() int {
	count := 0
	for _, uid := range ms.Seats {
		if uid != "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) ownerUserID() string {
	return ms.Seats[ms.OwnerSeat]
}

func lowestAvailableSeat(seats *[4]string) int {
	for i := 0; i < len(seats); i++ {
		if seats[i] == "" {
			return i
		}
	}
	return 0
}

func buildLabel(ms *MatchState) string {
	open := ms.phase() == domain.PhaseNotStarted && ms.occupiedSeats() < app.MaxPlayers
	b, _ := json.Marshal(Label{Open: open, Game: "sevens", Phase: string(ms.phase())})
	return string(b)
}

// Client payloads.

type startGameRequest struct {
	RemoveCard string `json:"removeCard,omitempty"`
}

type playCardRequest struct {
	Card string `json:"card"`
}

type moveRejected struct {
	Op     int64  `json:"op"`
	Reason string `json:"reason"`
}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit boots a new Sevens match in the lobby phase. An "opener" param
// may designate a different opening seven.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	opener := domain.Card{}
	if tok, ok := params["opener"].(string); ok && tok != "" {
		card, err := domain.ParseCard(tok)
		if err != nil || card.Rank != domain.RankSeven {
			logger.Warn("MatchInit: ignoring invalid opener param %q", tok)
		} else {
			opener = card
		}
	}

	state := &MatchState{
		Presences: map[string]runtime.Presence{},
		Usernames: map[string]string{},
		App:       app.NewService(nil, opener, 0),
	}
	return state, 10, buildLabel(state)
}

// MatchJoinAttempt admits rejoining players at any phase and new players
// only while the lobby is open.
func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule,
	dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {

	s := state.(*MatchState)
	uid := presence.GetUserId()

	for _, seated := range s.Seats {
		if seated == uid {
			return state, true, ""
		}
	}
	if s.phase() != domain.PhaseNotStarted {
		return state, false, "match_in_progress"
	}
	if s.occupiedSeats() >= app.MaxPlayers {
		return state, false, "match_full"
	}
	return state, true, ""
}

// MatchJoin seats joining presences and resyncs rejoining players.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule,
	dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {

	s := state.(*MatchState)

	for _, p := range presences {
		uid := p.GetUserId()
		s.Presences[uid] = p
		s.Usernames[uid] = p.GetUsername()

		if seat := seatOf(&s.Seats, uid); seat >= 0 {
			// Rejoin: mark connected and resync this player's view.
			if s.Game != nil {
				if pl := s.Game.Players[uid]; pl != nil {
					pl.Connected = true
				}
				mh.resync(dispatcher, s, uid)
			}
			continue
		}

		seat := lowestAvailableSeat(&s.Seats)
		s.Seats[seat] = uid

		evt, _ := json.Marshal(map[string]any{
			"userId": uid,
			"seat":   seat,
			"owner":  seat == s.OwnerSeat,
		})
		_ = dispatcher.BroadcastMessage(OpPlayerJoined, evt, nil, nil, true)
	}

	_ = dispatcher.MatchLabelUpdate(buildLabel(s))
	return state
}

// MatchLeave frees lobby seats; mid-game leavers keep their seat and hand so
// they can rejoin, but are flagged disconnected.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule,
	dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {

	s := state.(*MatchState)

	for _, p := range presences {
		uid := p.GetUserId()
		delete(s.Presences, uid)

		if s.phase() == domain.PhaseNotStarted {
			if seat := seatOf(&s.Seats, uid); seat >= 0 {
				s.Seats[seat] = ""
				if seat == s.OwnerSeat {
					s.OwnerSeat = firstOccupiedSeat(&s.Seats)
				}
			}
		} else if s.Game != nil {
			if pl := s.Game.Players[uid]; pl != nil {
				pl.Connected = false
			}
		}

		evt, _ := json.Marshal(map[string]any{"userId": uid})
		_ = dispatcher.BroadcastMessage(OpPlayerLeft, evt, nil, nil, true)
	}

	_ = dispatcher.MatchLabelUpdate(buildLabel(s))
	return state
}

// MatchLoop processes client messages for game flow.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule,
	dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {

	s := state.(*MatchState)

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(logger, dispatcher, s, msg)
		case OpPlayCard:
			mh.handlePlayCard(logger, dispatcher, s, msg)
		case OpPassTurn:
			mh.handlePassTurn(logger, dispatcher, s, msg)
		case OpRequestNewGame:
			mh.handleRequestNewGame(logger, dispatcher, s, msg)
		case OpRequestHint:
			mh.handleRequestHint(dispatcher, s, msg)
		}
	}

	return state
}

// MatchTerminate runs on match shutdown; nothing to persist.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule,
	dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	return state
}

// MatchSignal handles out-of-band signals; unused.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule,
	dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

/* ---- message handlers ---- */

func (mh *matchHandler) handleStartGame(logger runtime.Logger, dispatcher runtime.MatchDispatcher, s *MatchState, msg runtime.MatchData) {
	if s.phase() != domain.PhaseNotStarted {
		return
	}
	uid := msg.GetUserId()
	if uid != s.ownerUserID() {
		mh.reject(dispatcher, s, uid, OpStartGame, "only the owner may start")
		return
	}

	var req startGameRequest
	_ = json.Unmarshal(msg.GetData(), &req)
	var removeCard *domain.Card
	if req.RemoveCard != "" {
		card, err := domain.ParseCard(req.RemoveCard)
		if err != nil {
			mh.reject(dispatcher, s, uid, OpStartGame, "invalid removeCard")
			return
		}
		removeCard = &card
	}

	members := make([]app.Member, 0, app.MaxPlayers)
	for _, seated := range s.Seats {
		if seated != "" {
			members = append(members, app.Member{UserID: seated, Username: s.Usernames[seated]})
		}
	}

	game, events, err := s.App.StartGame(members, removeCard)
	if err != nil {
		mh.reject(dispatcher, s, uid, OpStartGame, err.Error())
		return
	}

	s.Game = game
	mh.dispatchEvents(logger, dispatcher, s, events)
	_ = dispatcher.MatchLabelUpdate(buildLabel(s))
}

func (mh *matchHandler) handlePlayCard(logger runtime.Logger, dispatcher runtime.MatchDispatcher, s *MatchState, msg runtime.MatchData) {
	uid := msg.GetUserId()

	var req playCardRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		mh.reject(dispatcher, s, uid, OpPlayCard, "invalid payload")
		return
	}
	card, err := domain.ParseCard(req.Card)
	if err != nil {
		mh.reject(dispatcher, s, uid, OpPlayCard, "invalid card")
		return
	}

	events, err := s.App.PlayCard(s.Game, uid, card)
	if err != nil {
		mh.reject(dispatcher, s, uid, OpPlayCard, err.Error())
		return
	}

	mh.dispatchEvents(logger, dispatcher, s, events)
	if s.Game.State.Finished {
		_ = dispatcher.MatchLabelUpdate(buildLabel(s))
	}
}

func (mh *matchHandler) handlePassTurn(logger runtime.Logger, dispatcher runtime.MatchDispatcher, s *MatchState, msg runtime.MatchData) {
	uid := msg.GetUserId()

	events, err := s.App.PassTurn(s.Game, uid)
	if err != nil {
		mh.reject(dispatcher, s, uid, OpPassTurn, err.Error())
		return
	}

	mh.dispatchEvents(logger, dispatcher, s, events)
}

func (mh *matchHandler) handleRequestNewGame(logger runtime.Logger, dispatcher runtime.MatchDispatcher, s *MatchState, msg runtime.MatchData) {
	if s.phase() != domain.PhaseFinished {
		return
	}
	uid := msg.GetUserId()
	if uid != s.ownerUserID() {
		mh.reject(dispatcher, s, uid, OpRequestNewGame, "only the owner may reset")
		return
	}

	events := s.App.Reset(s.Game)
	s.Game = nil
	mh.dispatchEvents(logger, dispatcher, s, events)
	_ = dispatcher.MatchLabelUpdate(buildLabel(s))
}

func (mh *matchHandler) handleRequestHint(dispatcher runtime.MatchDispatcher, s *MatchState, msg runtime.MatchData) {
	uid := msg.GetUserId()
	if s.Game == nil {
		mh.reject(dispatcher, s, uid, OpRequestHint, "game not started")
		return
	}

	hint := s.Game.Board.SuggestMove(s.Game.Hands[uid], s.Game.Opener)
	payload, _ := json.Marshal(map[string]any{
		"hasPlayable": hint.HasPlayable,
		"suggestion":  hint.Suggestion,
		"message":     hint.Message,
	})
	mh.sendTo(dispatcher, s, uid, OpHint, payload)
}

/* ---- dispatch helpers ---- */

var eventOpCodes = map[app.EventKind]int64{
	app.EventGameStarted:    OpGameStarted,
	app.EventHandDealt:      OpHandDealt,
	app.EventBoardChanged:   OpBoardChanged,
	app.EventTurnChanged:    OpTurnChanged,
	app.EventPlayersChanged: OpPlayersChanged,
	app.EventGameFinished:   OpGameEnded,
}

func (mh *matchHandler) dispatchEvents(logger runtime.Logger, dispatcher runtime.MatchDispatcher, s *MatchState, events []app.Event) {
	for _, ev := range events {
		op, ok := eventOpCodes[ev.Kind]
		if !ok {
			logger.Warn("dispatchEvents: no opcode for event kind %q", ev.Kind)
			continue
		}
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Error("dispatchEvents: marshal %q: %v", ev.Kind, err)
			continue
		}

		if len(ev.Recipients) == 0 {
			_ = dispatcher.BroadcastMessage(op, payload, nil, nil, true)
			continue
		}
		for _, uid := range ev.Recipients {
			mh.sendTo(dispatcher, s, uid, op, payload)
		}
	}
}

// resync replays the full game view to one rejoining player, including their
// private hand.
func (mh *matchHandler) resync(dispatcher runtime.MatchDispatcher, s *MatchState, uid string) {
	board, _ := json.Marshal(app.BoardChangedPayload{Board: s.Game.Board})
	mh.sendTo(dispatcher, s, uid, OpBoardChanged, board)

	players, _ := json.Marshal(app.PlayersChangedPayload{Players: s.Game.Players})
	mh.sendTo(dispatcher, s, uid, OpPlayersChanged, players)

	turn, _ := json.Marshal(app.TurnChangedPayload{State: s.Game.State})
	mh.sendTo(dispatcher, s, uid, OpTurnChanged, turn)

	hand, _ := json.Marshal(app.HandDealtPayload{UserID: uid, Hand: s.Game.Hands[uid]})
	mh.sendTo(dispatcher, s, uid, OpHandDealt, hand)
}

func (mh *matchHandler) reject(dispatcher runtime.MatchDispatcher, s *MatchState, uid string, op int64, reason string) {
	payload, _ := json.Marshal(moveRejected{Op: op, Reason: reason})
	mh.sendTo(dispatcher, s, uid, OpMoveRejected, payload)
}

func (mh *matchHandler) sendTo(dispatcher runtime.MatchDispatcher, s *MatchState, uid string, op int64, payload []byte) {
	p, ok := s.Presences[uid]
	if !ok {
		return
	}
	_ = dispatcher.BroadcastMessage(op, payload, []runtime.Presence{p}, nil, true)
}

func seatOf(seats *[4]string, uid string) int {
	for i, seated := range seats {
		if seated == uid {
			return i
		}
	}
	return -1
}

func firstOccupiedSeat(seats *[4]string) int {
	for i, seated := range seats {
		if seated != "" {
			return i
		}
	}
	return 0
}
