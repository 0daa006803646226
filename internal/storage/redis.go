package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"civicvoice/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// OTPRecord is a pending one-time code. Only the hash of the code is stored.
type OTPRecord struct {
	CodeHash string
	Attempts int
}

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func otpKey(phone string) string {
	return otpKeyPrefix + phone
}

// SaveOTP replaces any pending code for phone and resets the attempt counter.
func (s *Service) SaveOTP(ctx context.Context, phone, codeHash string, ttl time.Duration) error {
	key := otpKey(phone)
	_, err := s.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "hash", codeHash, "attempts", 0)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

// GetOTP returns (nil, nil) when no code is pending or it expired.
func (s *Service) GetOTP(ctx context.Context, phone string) (*OTPRecord, error) {
	vals, err := s.Redis.HGetAll(ctx, otpKey(phone)).Result()
	if err != nil {
		return nil, err
	}
	hash, ok := vals["hash"]
	if !ok {
		return nil, nil
	}
	attempts, _ := strconv.Atoi(vals["attempts"])
	return &OTPRecord{CodeHash: hash, Attempts: attempts}, nil
}

func (s *Service) IncrementOTPAttempts(ctx context.Context, phone string) (int64, error) {
	return s.Redis.HIncrBy(ctx, otpKey(phone), "attempts", 1).Result()
}

func (s *Service) DeleteOTP(ctx context.Context, phone string) error {
	return s.Redis.Del(ctx, otpKey(phone)).Err()
}

// AcquireLock sets key to token if it is free. The lock expires after ttl
// even if the holder dies.
func (s *Service) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	return s.Redis.SetNX(ctx, key, token, ttl).Result()
}

// ReleaseLock is a no-op when the lock expired or was taken over.
func (s *Service) ReleaseLock(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, s.Redis, []string{key}, token).Err()
}

func (s *Service) SaveLastSweep(ctx context.Context, run models.SweepRun) error {
	b, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, LastSweepKey, b, 0).Err()
}

// GetLastSweep returns (nil, nil) before the first sweep.
func (s *Service) GetLastSweep(ctx context.Context) (*models.SweepRun, error) {
	b, err := s.Redis.Get(ctx, LastSweepKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var run models.SweepRun
	if err := json.Unmarshal(b, &run); err != nil {
		return nil, fmt.Errorf("decode last sweep: %w", err)
	}
	return &run, nil
}

// PublishEvent publishes ev on EventsChannel.
func (s *Service) PublishEvent(ctx context.Context, ev models.ComplaintEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, EventsChannel, string(b)).Err()
}

func (s *Service) SubscribeEvents(ctx context.Context) *redis.PubSub {
	return s.Redis.Subscribe(ctx, EventsChannel)
}
