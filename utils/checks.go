package utils

import (
	"errors"
	"fmt"

	models "noodleio/models/postgres"

	"gorm.io/gorm"
)

// Function to check if a lobby exists
func CheckLobbyExists(db *gorm.DB, lobbyID string) (*models.Lobby, error) {
	var lobby models.Lobby
	result := db.Where("id = ?", lobbyID).First(&lobby)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lobby not found")
		}
		return nil, result.Error
	}

	return &lobby, nil
}

// Check if a player belongs to a lobby
func IsPlayerInLobby(db *gorm.DB, lobbyID string, playerID string) (*models.LobbyPlayer, error) {
	var player models.LobbyPlayer
	result := db.Where("lobby_id = ? AND id = ?", lobbyID, playerID).First(&player)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("player is not in the lobby")
		}
		return nil, result.Error
	}

	return &player, nil
}
