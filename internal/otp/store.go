package otp

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Record is a pending code. Only the secret is stored; the code is derived from it.
type Record struct {
	Secret   string
	IssuedAt time.Time
	Attempts int
}

// Store keeps pending codes and resend cooldowns.
type Store interface {
	Save(ctx context.Context, key string, rec Record, ttl time.Duration) error
	Get(ctx context.Context, key string) (*Record, error)
	IncrAttempts(ctx context.Context, key string) (int, error)
	Delete(ctx context.Context, key string) error
	// AcquireCooldown returns false while a previous cooldown for key is active.
	AcquireCooldown(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisStore keeps each record in a hash that expires with the code.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "b2b:otp:"}
}

func (s *RedisStore) Save(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	k := s.prefix + key
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, k)
	pipe.HSet(ctx, k, "secret", rec.Secret, "issuedAt", rec.IssuedAt.UnixNano(), "attempts", rec.Attempts)
	pipe.Expire(ctx, k, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Record, error) {
	m, err := s.client.HGetAll(ctx, s.prefix+key).Result()
	if err != nil {
		return nil, err
	}
	if len(m) == 0 || m["secret"] == "" {
		return nil, nil
	}
	issued, err := strconv.ParseInt(m["issuedAt"], 10, 64)
	if err != nil {
		return nil, errors.New("corrupt otp record")
	}
	attempts, _ := strconv.Atoi(m["attempts"])
	return &Record{Secret: m["secret"], IssuedAt: time.Unix(0, issued), Attempts: attempts}, nil
}

func (s *RedisStore) IncrAttempts(ctx context.Context, key string) (int, error) {
	n, err := s.client.HIncrBy(ctx, s.prefix+key, "attempts", 1).Result()
	return int(n), err
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

func (s *RedisStore) AcquireCooldown(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return true, nil
	}
	return s.client.SetNX(ctx, s.prefix+"cooldown:"+key, "1", ttl).Result()
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu        sync.Mutex
	records   map[string]memRecord
	cooldowns map[string]time.Time
	now       func() time.Time
}

type memRecord struct {
	Record
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]memRecord{}, cooldowns: map[string]time.Time{}, now: time.Now}
}

func (s *MemoryStore) Save(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = memRecord{Record: rec, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[key]
	if !ok || s.now().After(r.expires) {
		delete(s.records, key)
		return nil, nil
	}
	out := r.Record
	return &out, nil
}

func (s *MemoryStore) IncrAttempts(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[key]
	if !ok {
		return 0, nil
	}
	r.Attempts++
	s.records[key] = r
	return r.Attempts, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func (s *MemoryStore) AcquireCooldown(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return true, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if until, ok := s.cooldowns[key]; ok && now.Before(until) {
		return false, nil
	}
	s.cooldowns[key] = now.Add(ttl)
	return true, nil
}
