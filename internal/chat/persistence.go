// Package chat keeps per-session transcripts and generates suggested
// follow-up questions. Transcripts live in MongoDB with a Redis recent
// cache in front; when Mongo is down, chat still works and only history is
// unavailable.
package chat

import (
	"context"
	"time"

	"github.com/pochi-app/pochi-web/internal/database"
	"github.com/pochi-app/pochi-web/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const turnsCollection = "chat_turns"

// EnsureIndexes configures indexes for the transcript collection. Called on
// startup after Mongo has connected.
func EnsureIndexes(ctx context.Context) error {
	col := database.DB.Collection(turnsCollection)

	// Compound index on (session_id, created_at) for pagination.
	model := mongo.IndexModel{
		Keys: bson.D{
			{Key: "session_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("idx_session_created"),
	}
	_, err := col.Indexes().CreateOne(ctx, model)
	return err
}

// SaveTurnAsync persists one transcript entry without blocking the caller.
// The chat path must not stall on storage.
func SaveTurnAsync(turn models.ChatTurn) {
	if database.DB == nil {
		return
	}
	go func(t models.ChatTurn) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now().UTC()
		}
		col := database.DB.Collection(turnsCollection)
		_, _ = col.InsertOne(ctx, t)

		pushTurnToRecentCache(t)
	}(turn)
}

// LoadTranscript returns paginated history for a session, oldest-first.
// before limits to turns strictly older than the given time.
func LoadTranscript(ctx context.Context, sessionID string, before *time.Time, limit int64) ([]models.ChatTurn, bool, error) {
	if database.DB == nil {
		return nil, false, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	col := database.DB.Collection(turnsCollection)
	filter := bson.M{"session_id": sessionID}
	if before != nil {
		filter["created_at"] = bson.M{"$lt": before.UTC()}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit + 1)

	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cur.Close(ctx)

	var turns []models.ChatTurn
	for cur.Next(ctx) {
		var t models.ChatTurn
		if err := cur.Decode(&t); err != nil {
			continue
		}
		turns = append(turns, t)
	}
	if err := cur.Err(); err != nil {
		return nil, false, err
	}

	hasMore := int64(len(turns)) > limit
	if hasMore {
		turns = turns[:len(turns)-1]
	}

	// Reverse to oldest-first for the UI.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, hasMore, nil
}

// LoadTranscriptWithCache serves the initial page from Redis when possible
// and falls back to Mongo, warming the cache on the way back.
func LoadTranscriptWithCache(ctx context.Context, sessionID string, before *time.Time, limit int64) ([]models.ChatTurn, bool, error) {
	if before == nil && limit > 0 && limit <= recentMaxLen {
		if cached, ok := recentTurnsFromCache(ctx, sessionID); ok {
			out := cached
			if int64(len(cached)) > limit {
				out = cached[int64(len(cached))-limit:]
			}
			hasMore := int64(len(cached)) >= limit
			return out, hasMore, nil
		}
	}

	turns, hasMore, err := LoadTranscript(ctx, sessionID, before, limit)
	if err != nil {
		return nil, false, err
	}
	if before == nil && len(turns) > 0 {
		warmRecentCache(ctx, sessionID, turns)
	}
	return turns, hasMore, nil
}
