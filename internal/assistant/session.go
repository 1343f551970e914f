package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"shopsmart/internal/model"
)

const (
	defaultSessionTTL = 30 * time.Minute
	historyLimit      = 6
	sessionPrefix     = "session:"
)

// History keeps the recent turns of a conversation.
type History interface {
	Get(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	Append(ctx context.Context, sessionID string, msgs ...model.ChatMessage) error
}

// SessionStore keeps conversation history in Redis, trimmed to the last
// historyLimit messages and expiring after TTL of inactivity.
type SessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	val, err := s.Client.Get(ctx, sessionPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var msgs []model.ChatMessage
	if err := json.Unmarshal(val, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *SessionStore) Append(ctx context.Context, sessionID string, msgs ...model.ChatMessage) error {
	history, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	history = trimHistory(append(history, msgs...))

	b, err := json.Marshal(history)
	if err != nil {
		return err
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return s.Client.Set(ctx, sessionPrefix+sessionID, b, ttl).Err()
}

func trimHistory(history []model.ChatMessage) []model.ChatMessage {
	if len(history) > historyLimit {
		return history[len(history)-historyLimit:]
	}
	return history
}
