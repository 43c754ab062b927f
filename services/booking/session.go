package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"appointly/models"

	"github.com/go-redis/redis/v8"
)

// SessionStore keeps booking sessions in redis with a sliding TTL.
type SessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func sessionKey(id string) string {
	return "booking:session:" + id
}

func (s *SessionStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 15 * time.Minute
	}
	return s.TTL
}

func (s *SessionStore) Save(ctx context.Context, session *models.BookingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}
	if err := s.Client.Set(ctx, sessionKey(session.SessionID), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("failed to cache booking session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*models.BookingSession, error) {
	data, err := s.Client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}
	var session models.BookingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse booking session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.Client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete booking session: %w", err)
	}
	return nil
}
