package directory

import (
	"errors"
	"fmt"
	"log"

	"noodleio/models/postgres"

	"gorm.io/gorm"
)

// Service implements the session directory: lobbies, lobby players and the
// queries the rest of the backend needs about them. Game session start lives
// in session.go because it also touches Redis.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// DefaultMaxPlayers is used when a lobby is created without an explicit cap.
const DefaultMaxPlayers = 4

// CreateLobby creates an empty lobby with no owner assigned yet.
func (s *Service) CreateLobby(maxPlayers int) (*postgres.Lobby, error) {
	if maxPlayers == 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if maxPlayers < 1 {
		return nil, ErrBadMaxPlayers
	}

	lobby := postgres.Lobby{MaxPlayers: maxPlayers}
	if err := s.DB.Create(&lobby).Error; err != nil {
		return nil, fmt.Errorf("error creating lobby: %v", err)
	}
	return &lobby, nil
}

// CreateLobbyWithOwner creates a lobby and registers playerName as its owner
// in one transaction. Fails with ErrNameTaken if the name already exists
// anywhere in the player namespace.
func (s *Service) CreateLobbyWithOwner(playerName string, maxPlayers int) (*postgres.Lobby, *postgres.LobbyPlayer, error) {
	if maxPlayers == 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if maxPlayers < 1 {
		return nil, nil, ErrBadMaxPlayers
	}

	var lobby postgres.Lobby
	var player postgres.LobbyPlayer

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&postgres.LobbyPlayer{}).
			Where("player_name = ?", playerName).Count(&count).Error; err != nil {
			return fmt.Errorf("error checking player name: %v", err)
		}
		if count > 0 {
			return ErrNameTaken
		}

		lobby = postgres.Lobby{MaxPlayers: maxPlayers}
		if err := tx.Create(&lobby).Error; err != nil {
			return fmt.Errorf("error creating lobby: %v", err)
		}

		player = postgres.LobbyPlayer{PlayerName: playerName, LobbyID: lobby.ID}
		if err := tx.Create(&player).Error; err != nil {
			return fmt.Errorf("error creating owner player: %v", err)
		}

		// Ownership is exactly the creator, assigned once, never handed off.
		lobby.OwnerPlayerID = &player.ID
		if err := tx.Model(&postgres.Lobby{}).Where("id = ?", lobby.ID).
			Update("owner_player_id", player.ID).Error; err != nil {
			return fmt.Errorf("error assigning lobby owner: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log.Printf("Created lobby %s (share code %s) owned by %s", lobby.ID, lobby.ShortCode(), playerName)
	return &lobby, &player, nil
}

// ResolveLobbyID turns a possibly-truncated lobby id (the 5-character share
// code) into a full id. Full ids pass through after an existence check.
func (s *Service) ResolveLobbyID(idOrPrefix string) (string, error) {
	if idOrPrefix == "" {
		return "", ErrLobbyNotFound
	}

	var lobby postgres.Lobby
	err := s.DB.Where("id = ?", idOrPrefix).First(&lobby).Error
	if err == nil {
		return lobby.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("error resolving lobby id: %v", err)
	}

	// Prefix lookup. First match wins; share codes are long enough that
	// collisions are not worth defending against here.
	err = s.DB.Where("id LIKE ?", idOrPrefix+"%").First(&lobby).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrLobbyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("error resolving lobby prefix: %v", err)
	}
	return lobby.ID, nil
}

// GetLobbyByID fetches a lobby by full id or share-code prefix.
func (s *Service) GetLobbyByID(idOrPrefix string) (*postgres.Lobby, error) {
	id, err := s.ResolveLobbyID(idOrPrefix)
	if err != nil {
		return nil, err
	}

	var lobby postgres.Lobby
	if err := s.DB.Where("id = ?", id).First(&lobby).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLobbyNotFound
		}
		return nil, fmt.Errorf("error fetching lobby: %v", err)
	}
	return &lobby, nil
}

// DeleteLobby removes a lobby and, through the FK cascade, its players.
// Returns false when no such lobby existed.
func (s *Service) DeleteLobby(idOrPrefix string) (bool, error) {
	id, err := s.ResolveLobbyID(idOrPrefix)
	if errors.Is(err, ErrLobbyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	res := s.DB.Where("id = ?", id).Delete(&postgres.Lobby{})
	if res.Error != nil {
		return false, fmt.Errorf("error deleting lobby: %v", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// JoinLobby registers a new player in a lobby. Fails with ErrNameTaken,
// ErrLobbyNotFound or ErrLobbyFull; the caller stays out of the lobby on
// any failure.
func (s *Service) JoinLobby(playerName, idOrPrefix string) (*postgres.LobbyPlayer, error) {
	lobbyID, err := s.ResolveLobbyID(idOrPrefix)
	if err != nil {
		return nil, err
	}

	var player postgres.LobbyPlayer
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&postgres.LobbyPlayer{}).
			Where("player_name = ?", playerName).Count(&count).Error; err != nil {
			return fmt.Errorf("error checking player name: %v", err)
		}
		if count > 0 {
			return ErrNameTaken
		}

		var lobby postgres.Lobby
		if err := tx.Where("id = ?", lobbyID).First(&lobby).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLobbyNotFound
			}
			return fmt.Errorf("error fetching lobby: %v", err)
		}

		var members int64
		if err := tx.Model(&postgres.LobbyPlayer{}).
			Where("lobby_id = ?", lobbyID).Count(&members).Error; err != nil {
			return fmt.Errorf("error counting lobby players: %v", err)
		}
		if members >= int64(lobby.MaxPlayers) {
			return ErrLobbyFull
		}

		player = postgres.LobbyPlayer{PlayerName: playerName, LobbyID: lobbyID}
		if err := tx.Create(&player).Error; err != nil {
			return fmt.Errorf("error inserting player: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Player '%s' joined lobby %s", playerName, lobbyID)
	return &player, nil
}

// GetPlayersInLobby lists the players currently registered in a lobby.
func (s *Service) GetPlayersInLobby(idOrPrefix string) ([]postgres.LobbyPlayer, error) {
	lobbyID, err := s.ResolveLobbyID(idOrPrefix)
	if err != nil {
		return nil, err
	}

	var players []postgres.LobbyPlayer
	if err := s.DB.Where("lobby_id = ?", lobbyID).Order("joined_at").Find(&players).Error; err != nil {
		return nil, fmt.Errorf("error listing lobby players: %v", err)
	}
	return players, nil
}

// LeaveLobby removes a player. If the leaving player owns the lobby, the
// whole lobby is deleted as a side effect: an owner leaving ends the lobby
// for everyone, there is no ownership hand-off.
func (s *Service) LeaveLobby(playerID string) (left bool, wasOwner bool, err error) {
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var player postgres.LobbyPlayer
		if err := tx.Where("id = ?", playerID).First(&player).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlayerNotFound
			}
			return fmt.Errorf("error fetching player: %v", err)
		}

		var lobby postgres.Lobby
		if err := tx.Where("id = ?", player.LobbyID).First(&lobby).Error; err != nil &&
			!errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("error fetching lobby: %v", err)
		}

		wasOwner = lobby.OwnerPlayerID != nil && *lobby.OwnerPlayerID == playerID

		if wasOwner {
			// Cascade takes the remaining players with it.
			if err := tx.Where("id = ?", lobby.ID).Delete(&postgres.Lobby{}).Error; err != nil {
				return fmt.Errorf("error deleting owned lobby: %v", err)
			}
		}
		if err := tx.Where("id = ?", playerID).Delete(&postgres.LobbyPlayer{}).Error; err != nil {
			return fmt.Errorf("error deleting player: %v", err)
		}

		left = true
		return nil
	})
	if errors.Is(err, ErrPlayerNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return left, wasOwner, nil
}

// GetPlayerByID fetches a lobby player by id.
func (s *Service) GetPlayerByID(playerID string) (*postgres.LobbyPlayer, error) {
	var player postgres.LobbyPlayer
	if err := s.DB.Where("id = ?", playerID).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("error fetching player: %v", err)
	}
	return &player, nil
}

// GetPlayerIDFromName looks up a player id by display name.
func (s *Service) GetPlayerIDFromName(playerName string) (string, error) {
	var player postgres.LobbyPlayer
	if err := s.DB.Where("player_name = ?", playerName).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrPlayerNotFound
		}
		return "", fmt.Errorf("error fetching player by name: %v", err)
	}
	return player.ID, nil
}

// IsLobbyOwner checks ownership by identity comparison against the lobby's
// owner field.
func (s *Service) IsLobbyOwner(playerID, idOrPrefix string) (bool, error) {
	lobby, err := s.GetLobbyByID(idOrPrefix)
	if err != nil {
		return false, err
	}
	return lobby.OwnerPlayerID != nil && *lobby.OwnerPlayerID == playerID, nil
}
