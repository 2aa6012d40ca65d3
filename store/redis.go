package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pulseroom/meeting-pipeline/analysis"
)

const keyPrefix = "meeting-analysis:"

// Redis persists analyses as JSON values in Redis.
type Redis struct {
	client *redis.Client
}

// RedisOptions are the connection settings.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

func NewRedis(opts RedisOptions) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})}
}

// Ping verifies connectivity.
func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Redis) Save(ctx context.Context, ma *analysis.MeetingAnalysis) error {
	b, err := json.Marshal(ma)
	if err != nil {
		return fmt.Errorf("marshal analysis %s: %w", ma.MeetingID, err)
	}
	return s.client.Set(ctx, keyPrefix+ma.MeetingID, b, 0).Err()
}

func (s *Redis) Get(ctx context.Context, meetingID string) (*analysis.MeetingAnalysis, error) {
	b, err := s.client.Get(ctx, keyPrefix+meetingID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var ma analysis.MeetingAnalysis
	if err := json.Unmarshal(b, &ma); err != nil {
		return nil, fmt.Errorf("unmarshal analysis %s: %w", meetingID, err)
	}
	return &ma, nil
}

// Close releases the underlying connection.
func (s *Redis) Close() error { return s.client.Close() }
