package repository

const (
	// waitingQueueKey - FIFO list of game ids waiting for an opponent.
	waitingQueueKey = "games:waiting"
	// leaderboardKey - sorted set of player ids scored by rating.
	leaderboardKey = "leaderboard"
)

func gameKey(id string) string {
	return "game:" + id
}

func movesKey(gameID string) string {
	return "game:" + gameID + ":moves"
}

func playerKey(id string) string {
	return "player:" + id
}

// activeGameKey holds the id of the player's single waiting or in_progress game.
func activeGameKey(playerID string) string {
	return "player:" + playerID + ":active"
}

func playerGamesKey(playerID string) string {
	return "player:" + playerID + ":games"
}
