package agentd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisHistory stores each session as a capped list of JSON exchanges plus
// an order key, both expiring after the TTL.
type RedisHistory struct {
	client *redis.Client
	ttl    time.Duration
	max    int64
}

// NewRedisHistory connects to redisURL and verifies the connection.
func NewRedisHistory(ctx context.Context, redisURL string, ttl time.Duration, max int) (*RedisHistory, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: redis url: %v", ErrInvalidConfig, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrHistory, err)
	}

	return NewRedisHistoryFromClient(client, ttl, max), nil
}

// NewRedisHistoryFromClient wraps an existing client.
func NewRedisHistoryFromClient(client *redis.Client, ttl time.Duration, max int) *RedisHistory {
	return &RedisHistory{client: client, ttl: ttl, max: int64(max)}
}

// HistoryKey returns the list key of a session.
func HistoryKey(sessionID string) string {
	return fmt.Sprintf("agentd:session:%s:history", sessionID)
}

// OrderKey returns the tracked-order key of a session.
func OrderKey(sessionID string) string {
	return fmt.Sprintf("agentd:session:%s:order", sessionID)
}

func (h *RedisHistory) Load(ctx context.Context, sessionID string, limit int) (Conversation, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	pipe := h.client.Pipeline()
	listCmd := pipe.LRange(ctx, HistoryKey(sessionID), start, -1)
	orderCmd := pipe.Get(ctx, OrderKey(sessionID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Conversation{}, fmt.Errorf("%w: %v", ErrHistory, err)
	}

	conv := Conversation{}
	if order, err := orderCmd.Result(); err == nil {
		conv.OrderID = order
	}

	for _, raw := range listCmd.Val() {
		var ex Exchange
		if err := json.Unmarshal([]byte(raw), &ex); err != nil {
			return Conversation{}, fmt.Errorf("%w: decode exchange: %v", ErrHistory, err)
		}
		conv.History = append(conv.History, ex)
	}
	return conv, nil
}

func (h *RedisHistory) SetOrder(ctx context.Context, sessionID, orderID string) error {
	if err := h.client.Set(ctx, OrderKey(sessionID), orderID, h.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrHistory, err)
	}
	return nil
}

func (h *RedisHistory) Append(ctx context.Context, sessionID string, ex Exchange) error {
	data, err := json.Marshal(stamp(ex))
	if err != nil {
		return fmt.Errorf("%w: encode exchange: %v", ErrHistory, err)
	}

	key := HistoryKey(sessionID)
	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	if h.max > 0 {
		pipe.LTrim(ctx, key, -h.max, -1)
	}
	if h.ttl > 0 {
		pipe.Expire(ctx, key, h.ttl)
		pipe.Expire(ctx, OrderKey(sessionID), h.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrHistory, err)
	}
	return nil
}

func (h *RedisHistory) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

func (h *RedisHistory) Close() error {
	return h.client.Close()
}
