package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameSevens is the authoritative match handler name registered with Nakama.
	MatchNameSevens = "sevens_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame      int64 = 1
	OpPlayCard       int64 = 2
	OpPassTurn       int64 = 3
	OpRequestNewGame int64 = 4
	OpRequestHint    int64 = 5

	// Server -> Client events
	OpPlayerJoined   int64 = 101
	OpPlayerLeft     int64 = 102
	OpGameStarted    int64 = 103
	OpHandDealt      int64 = 104 // send privately
	OpBoardChanged   int64 = 105
	OpTurnChanged    int64 = 106
	OpPlayersChanged int64 = 107
	OpGameEnded      int64 = 108
	OpMoveRejected   int64 = 109 // send privately
	OpHint           int64 = 110 // send privately
)
