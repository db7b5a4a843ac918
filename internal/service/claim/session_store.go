package claim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anbusan19/nominal/internal/entity"
	"github.com/anbusan19/nominal/pkg/apperr"
)

// Store persists ClaimSessions for the duration of the wait+register
// window. Sessions are keyed by label so independent claims never
// collide.
type Store interface {
	Get(ctx context.Context, label string) (*entity.ClaimSession, error)
	Save(ctx context.Context, session *entity.ClaimSession, ttl time.Duration) error
	Delete(ctx context.Context, label string) error
}

const sessionKeyPrefix = "ens:claim:"

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, label string) (*entity.ClaimSession, error) {
	val, err := s.client.Get(ctx, sessionKeyPrefix+label).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.Newf(apperr.KindNotFound, "no claim session for label %q", label)
		}
		return nil, apperr.Wrap(apperr.KindExternal, "load claim session", err)
	}

	var session entity.ClaimSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claim session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) Save(ctx context.Context, session *entity.ClaimSession, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal claim session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.Label, payload, ttl).Err(); err != nil {
		return apperr.Wrap(apperr.KindExternal, "persist claim session", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, label string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+label).Err(); err != nil {
		return apperr.Wrap(apperr.KindExternal, "delete claim session", err)
	}
	return nil
}

// MemoryStore is the in-process Store used by tests and single-node
// setups without redis. TTLs are honored lazily on read.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

type memorySession struct {
	session  entity.ClaimSession
	expireAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memorySession)}
}

func (s *MemoryStore) Get(_ context.Context, label string) (*entity.ClaimSession, error) {
	s.mu.RLock()
	stored, ok := s.sessions[label]
	s.mu.RUnlock()
	if !ok || time.Now().After(stored.expireAt) {
		return nil, apperr.Newf(apperr.KindNotFound, "no claim session for label %q", label)
	}
	session := stored.session
	return &session, nil
}

func (s *MemoryStore) Save(_ context.Context, session *entity.ClaimSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Label] = memorySession{
		session:  *session,
		expireAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, label)
	return nil
}
