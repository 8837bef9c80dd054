package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eldtechnologies/lostfound/internal/crypto"
	"github.com/eldtechnologies/lostfound/internal/metrics"
	"github.com/eldtechnologies/lostfound/internal/models"
)

// Conversations outlive the claim review window; every new message extends it.
const messageTTL = 30 * 24 * time.Hour

// RedisStore keeps claim conversations in per-claim sorted sets.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// claimMessagesKey returns the key for a claim's message sorted set.
func claimMessagesKey(claimID string) string {
	return fmt.Sprintf("claim:%s:messages", claimID)
}

// AddMessage stores a message in Redis.
func (s *RedisStore) AddMessage(ctx context.Context, msg *models.ChatMessage) error {
	start := time.Now()
	defer func() { metrics.RedisLatency.Observe(time.Since(start).Seconds()) }()

	if msg.ID == "" {
		msg.ID = crypto.NewMessageID()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := claimMessagesKey(msg.ClaimID)

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(msg.Timestamp),
		Member: string(data),
	})
	pipe.Expire(ctx, key, messageTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// GetClaimMessages retrieves the newest limit messages of a claim, oldest first.
func (s *RedisStore) GetClaimMessages(ctx context.Context, claimID string, limit int) ([]models.ChatMessage, error) {
	start := time.Now()
	defer func() { metrics.RedisLatency.Observe(time.Since(start).Seconds()) }()

	if limit <= 0 {
		limit = 200
	}

	// Newest first, then reversed below.
	results, err := s.client.ZRevRange(ctx, claimMessagesKey(claimID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]models.ChatMessage, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(results[i]), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}
