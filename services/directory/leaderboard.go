package directory

import (
	"fmt"
	"log"

	"noodleio/models/postgres"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LeaderboardService records finished runs and serves the top-N query.
type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// AddEntry inserts one leaderboard row. Stats may be nil.
func (ls *LeaderboardService) AddEntry(playerName string, score int,
	durationSeconds float64, stats datatypes.JSON) (*postgres.LeaderboardEntry, error) {

	if playerName == "" {
		return nil, ErrPlayerNotFound
	}

	entry := postgres.LeaderboardEntry{
		PlayerName:      playerName,
		Score:           score,
		DurationSeconds: durationSeconds,
		Stats:           stats,
	}
	if err := ls.DB.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("error inserting leaderboard entry: %v", err)
	}

	log.Printf("Leaderboard entry added for %s with score %d", playerName, score)
	return &entry, nil
}

// GetTop returns the limit highest-scoring entries, descending. The order is
// total: ties fall back to oldest-first so the ranking is stable run to run.
func (ls *LeaderboardService) GetTop(limit int) ([]postgres.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	var entries []postgres.LeaderboardEntry
	if err := ls.DB.Order("score DESC, created_at ASC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("error fetching leaderboard: %v", err)
	}
	return entries, nil
}
