package chat

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/pochi-app/pochi-web/internal/database"
	"github.com/pochi-app/pochi-web/internal/models"
)

const (
	recentKeyPrefix = "chat:session:"
	recentKeySuffix = ":recent"
	recentMaxLen    = 50
	recentTTL       = 1 * time.Hour
)

func recentKey(sessionID string) string {
	return recentKeyPrefix + sessionID + recentKeySuffix
}

// pushTurnToRecentCache adds a turn to the Redis recent list (newest at
// head). LPUSH + LTRIM keeps the last 50.
func pushTurnToRecentCache(turn models.ChatTurn) {
	if database.RedisClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := json.Marshal(turn)
	if err != nil {
		return
	}

	key := recentKey(turn.SessionID)
	pipe := database.RedisClient.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, recentMaxLen-1)
	pipe.Expire(ctx, key, recentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("⚠️ chat cache push failed for session %s: %v", turn.SessionID, err)
	}
}

// recentTurnsFromCache returns the cached recent turns oldest-first.
// (nil, false) means miss.
func recentTurnsFromCache(ctx context.Context, sessionID string) ([]models.ChatTurn, bool) {
	if database.RedisClient == nil {
		return nil, false
	}

	raw, err := database.RedisClient.LRange(ctx, recentKey(sessionID), 0, -1).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}

	var turns []models.ChatTurn
	for i := len(raw) - 1; i >= 0; i-- {
		var t models.ChatTurn
		if json.Unmarshal([]byte(raw[i]), &t) != nil {
			continue
		}
		turns = append(turns, t)
	}
	return turns, true
}

// warmRecentCache stores turns in Redis, oldest at tail.
func warmRecentCache(ctx context.Context, sessionID string, turns []models.ChatTurn) {
	if database.RedisClient == nil || len(turns) == 0 {
		return
	}

	key := recentKey(sessionID)
	pipe := database.RedisClient.Pipeline()
	pipe.Del(ctx, key)
	for i := len(turns) - 1; i >= 0; i-- {
		data, err := json.Marshal(turns[i])
		if err != nil {
			continue
		}
		pipe.RPush(ctx, key, data)
	}
	pipe.LTrim(ctx, key, 0, recentMaxLen-1)
	pipe.Expire(ctx, key, recentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("⚠️ chat cache warm failed for session %s: %v", sessionID, err)
	}
}
