package sync

import (
	"fmt"
	"log"
	"sync"
	"time"

	"noodleio/models/postgres"
	"noodleio/services/redis"

	"gorm.io/gorm"
)

// SyncManager reconciles the volatile Redis game state with PostgreSQL. It
// owns session finishing: flipping ended_at exactly once and flushing the
// final scores so the session row and the leaderboard agree with what the
// realtime layer last served.
type SyncManager struct {
	redisClient *redis.RedisClient
	db          *gorm.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-lobby operation locks
}

// NewSyncManager creates a new instance of the synchronization manager
func NewSyncManager(redisClient *redis.RedisClient, db *gorm.DB) *SyncManager {
	return &SyncManager{
		redisClient: redisClient,
		db:          db,
		locks:       make(map[string]*sync.Mutex),
	}
}

// LockLobby serializes store operations for one lobby. Returns the unlock
// function; callers defer it.
func (sm *SyncManager) LockLobby(lobbyID string) func() {
	sm.mu.Lock()
	l, ok := sm.locks[lobbyID]
	if !ok {
		l = &sync.Mutex{}
		sm.locks[lobbyID] = l
	}
	sm.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// FinishSession ends a session: sets ended_at in PostgreSQL and marks the
// Redis mirror ended. Returns true only for the caller that actually did
// the flip; a session transitions to ended exactly once and is never
// reopened.
func (sm *SyncManager) FinishSession(sessionID string) (bool, error) {
	now := time.Now().UTC()
	res := sm.db.Model(&postgres.GameSession{}).
		Where("id = ? AND ended_at IS NULL", sessionID).
		Update("ended_at", now)
	if res.Error != nil {
		return false, fmt.Errorf("error ending session in PostgreSQL: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	if _, err := sm.redisClient.MarkSessionEnded(sessionID); err != nil {
		// The row is already flipped; the realtime layer stops serving the
		// session regardless, so log and move on.
		log.Printf("Error marking session %s ended in Redis: %v", sessionID, err)
	}

	log.Printf("Game session %s ended", sessionID)
	return true, nil
}

// CleanupSession drops the volatile keys of a finished session. Safe to call
// more than once.
func (sm *SyncManager) CleanupSession(sessionID string) error {
	if err := sm.redisClient.CleanupSessionData(sessionID); err != nil {
		return fmt.Errorf("error cleaning session data: %v", err)
	}
	return nil
}
