package cancellation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"appointly/models"

	"github.com/go-redis/redis/v8"
)

var errQuoteNotFound = errors.New("cancellation quote not found")

// QuoteStore holds fees that are waiting for the client's confirmation.
type QuoteStore interface {
	Save(ctx context.Context, q models.CancellationQuote) error
	Get(ctx context.Context, appointmentID string) (*models.CancellationQuote, error)
	Delete(ctx context.Context, appointmentID string) error
}

// RedisQuoteStore keeps quotes without expiry; a quote lives until the
// client confirms or a new dry run replaces it.
type RedisQuoteStore struct {
	Client *redis.Client
}

func quoteKey(appointmentID string) string {
	return "cancellation:quote:" + appointmentID
}

func (s *RedisQuoteStore) Save(ctx context.Context, q models.CancellationQuote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal cancellation quote: %w", err)
	}
	if err := s.Client.Set(ctx, quoteKey(q.AppointmentID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store cancellation quote: %w", err)
	}
	return nil
}

func (s *RedisQuoteStore) Get(ctx context.Context, appointmentID string) (*models.CancellationQuote, error) {
	data, err := s.Client.Get(ctx, quoteKey(appointmentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errQuoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cancellation quote: %w", err)
	}
	var q models.CancellationQuote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to parse cancellation quote: %w", err)
	}
	return &q, nil
}

func (s *RedisQuoteStore) Delete(ctx context.Context, appointmentID string) error {
	if err := s.Client.Del(ctx, quoteKey(appointmentID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cancellation quote: %w", err)
	}
	return nil
}
