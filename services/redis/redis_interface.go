package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	redis_models "noodleio/models/redis"
	redis_utils "noodleio/services/redis/utils"

	"github.com/redis/go-redis/v9"
)

// Volatile game state lives at most a day; sessions are much shorter, the
// TTL just keeps abandoned games from accumulating.
const stateTTL = 24 * time.Hour

// ErrNotFound is returned when a requested key does not exist.
var ErrNotFound = redis.Nil

// RedisClient handles Redis operations
type RedisClient struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		Client: client,
		Ctx:    context.Background(),
	}
}

// SavePlayerGameState stores a player's authoritative state.
// Key format: "session:{sessionId}:player:{playerId}"
// Also registers the player id in the session's membership set.
func (rc *RedisClient) SavePlayerGameState(state *redis_models.PlayerGameState) error {
	key := redis_utils.FormatPlayerStateKey(state.SessionID, state.PlayerID)
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("error marshaling player state: %v", err)
	}

	pipe := rc.Client.Pipeline()
	pipe.Set(rc.Ctx, key, data, stateTTL)
	pipe.SAdd(rc.Ctx, redis_utils.FormatSessionPlayersKey(state.SessionID), state.PlayerID)
	pipe.Expire(rc.Ctx, redis_utils.FormatSessionPlayersKey(state.SessionID), stateTTL)
	if _, err := pipe.Exec(rc.Ctx); err != nil {
		return fmt.Errorf("error saving player state: %v", err)
	}
	return nil
}

// GetPlayerGameState retrieves a player's authoritative state.
func (rc *RedisClient) GetPlayerGameState(sessionId, playerId string) (*redis_models.PlayerGameState, error) {
	key := redis_utils.FormatPlayerStateKey(sessionId, playerId)
	data, err := rc.Client.Get(rc.Ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var state redis_models.PlayerGameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("error unmarshaling player state: %v", err)
	}
	return &state, nil
}

// DeletePlayerGameState removes a player's state and membership entry.
func (rc *RedisClient) DeletePlayerGameState(sessionId, playerId string) error {
	pipe := rc.Client.Pipeline()
	pipe.Del(rc.Ctx, redis_utils.FormatPlayerStateKey(sessionId, playerId))
	pipe.SRem(rc.Ctx, redis_utils.FormatSessionPlayersKey(sessionId), playerId)
	if _, err := pipe.Exec(rc.Ctx); err != nil {
		return fmt.Errorf("error deleting player state: %v", err)
	}
	return nil
}

// GetSessionPlayerStates returns the full batch of player states for a
// session, one entry per member of the session's membership set. Players
// whose state key expired are silently skipped.
func (rc *RedisClient) GetSessionPlayerStates(sessionId string) ([]*redis_models.PlayerGameState, error) {
	ids, err := rc.Client.SMembers(rc.Ctx, redis_utils.FormatSessionPlayersKey(sessionId)).Result()
	if err != nil {
		return nil, fmt.Errorf("error reading session membership: %v", err)
	}

	states := make([]*redis_models.PlayerGameState, 0, len(ids))
	for _, id := range ids {
		state, err := rc.GetPlayerGameState(sessionId, id)
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

// SaveSessionState stores the live session mirror.
// Key format: "session:{sessionId}"
func (rc *RedisClient) SaveSessionState(session *redis_models.SessionState) error {
	key := redis_utils.FormatSessionKey(session.SessionID)
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error marshaling session state: %v", err)
	}
	return rc.Client.Set(rc.Ctx, key, data, stateTTL).Err()
}

// GetSessionState retrieves the live session mirror.
func (rc *RedisClient) GetSessionState(sessionId string) (*redis_models.SessionState, error) {
	key := redis_utils.FormatSessionKey(sessionId)
	data, err := rc.Client.Get(rc.Ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var session redis_models.SessionState
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("error unmarshaling session state: %v", err)
	}
	return &session, nil
}

// MarkSessionEnded flips the session mirror to ended. Returns true if this
// call did the flip, false if the session was already ended (the flip must
// happen exactly once, whoever loses the race does nothing).
func (rc *RedisClient) MarkSessionEnded(sessionId string) (bool, error) {
	session, err := rc.GetSessionState(sessionId)
	if err != nil {
		return false, fmt.Errorf("error getting session for ending: %v", err)
	}
	if session.Ended {
		return false, nil
	}

	session.Ended = true
	if err := rc.SaveSessionState(session); err != nil {
		return false, fmt.Errorf("error saving ended session: %v", err)
	}
	return true, nil
}

// ClaimSessionStart takes the per-lobby start claim (SETNX). Only the caller
// that wins the claim may create a GameSession row; everyone else gets the
// "already being started" answer. The claim expires on its own so a crashed
// starter cannot wedge the lobby.
func (rc *RedisClient) ClaimSessionStart(lobbyId string) (bool, error) {
	key := redis_utils.FormatStartClaimKey(lobbyId)
	ok, err := rc.Client.SetNX(rc.Ctx, key, "1", 30*time.Second).Result()
	if err != nil {
		return false, fmt.Errorf("error claiming session start: %v", err)
	}
	return ok, nil
}

// ReleaseSessionStart drops the start claim after the session row exists
// (or after a failed attempt).
func (rc *RedisClient) ReleaseSessionStart(lobbyId string) error {
	return rc.Client.Del(rc.Ctx, redis_utils.FormatStartClaimKey(lobbyId)).Err()
}

// CleanupSessionData removes every volatile key belonging to a session.
func (rc *RedisClient) CleanupSessionData(sessionId string) error {
	ids, err := rc.Client.SMembers(rc.Ctx, redis_utils.FormatSessionPlayersKey(sessionId)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("error reading session membership: %v", err)
	}

	keys := make([]string, 0, len(ids)+2)
	for _, id := range ids {
		keys = append(keys, redis_utils.FormatPlayerStateKey(sessionId, id))
	}
	keys = append(keys,
		redis_utils.FormatSessionPlayersKey(sessionId),
		redis_utils.FormatSessionKey(sessionId))
	return rc.CleanupKeys(keys)
}
