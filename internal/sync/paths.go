package sync

// Store path layout for one room. Every path holds a single JSON value and is
// written last-writer-wins; a move touches several of them in one batch.
//
//	rooms/<code>/board
//	rooms/<code>/players
//	rooms/<code>/hands/<uid>/cards
//	rooms/<code>/gameState/<field>
//	rooms/<code>/activity/<gameId>/<key>
//	rooms/<code>/metadata

func roomPath(code string) string { return "rooms/" + code }

func boardPath(code string) string    { return roomPath(code) + "/board" }
func playersPath(code string) string  { return roomPath(code) + "/players" }
func metadataPath(code string) string { return roomPath(code) + "/metadata" }

func handPath(code, userID string) string {
	return roomPath(code) + "/hands/" + userID + "/cards"
}

func statePath(code, field string) string {
	return roomPath(code) + "/gameState/" + field
}

func startedPath(code string) string     { return statePath(code, "started") }
func currentTurnPath(code string) string { return statePath(code, "currentTurn") }
func turnNumberPath(code string) string  { return statePath(code, "turnNumber") }
func finishedPath(code string) string    { return statePath(code, "finished") }
func winnerPath(code string) string      { return statePath(code, "winner") }
func finalScoresPath(code string) string { return statePath(code, "finalScores") }
func lastActionPath(code string) string  { return statePath(code, "lastAction") }

// gameOverHandledPath holds the finalization counter. The writer that
// increments it from zero to one owns score finalization.
func gameOverHandledPath(code string) string { return statePath(code, "gameOverHandled") }

func activityPath(code, gameID, key string) string {
	return roomPath(code) + "/activity/" + gameID + "/" + key
}
