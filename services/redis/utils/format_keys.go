package utils

/**
 * This file contains utility functions to format the keys for Redis
 * (key, value) pairs. It avoids having to call "fmt.Sprintf(...)"
 * with the same format spec every time, potentially confusing the key format.
 */

import "fmt"

func FormatPlayerStateKey(sessionId string, playerId string) string {
	return fmt.Sprintf("session:%s:player:%s", sessionId, playerId)
}

func FormatSessionKey(sessionId string) string {
	return fmt.Sprintf("session:%s", sessionId)
}

func FormatSessionPlayersKey(sessionId string) string {
	return fmt.Sprintf("session:%s:players", sessionId)
}

func FormatStartClaimKey(lobbyId string) string {
	return fmt.Sprintf("lobby:%s:start_claim", lobbyId)
}
