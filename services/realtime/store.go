package realtime

import redis_models "noodleio/models/redis"

// Store is the slice of the Redis client the realtime layer needs. Narrowed
// to an interface so room logic is testable against an in-memory fake.
type Store interface {
	GetSessionState(sessionID string) (*redis_models.SessionState, error)
	GetPlayerGameState(sessionID, playerID string) (*redis_models.PlayerGameState, error)
	SavePlayerGameState(state *redis_models.PlayerGameState) error
	GetSessionPlayerStates(sessionID string) ([]*redis_models.PlayerGameState, error)
}

// Finisher ends sessions exactly once; satisfied by sync.SyncManager.
type Finisher interface {
	FinishSession(sessionID string) (bool, error)
}
