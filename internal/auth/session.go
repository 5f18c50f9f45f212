package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound reports an unknown, expired, or invalidated session token.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore binds opaque session tokens to user ids. Tokens are the only
// thing the browser ever holds; invalidating one on the server ends the
// session everywhere.
type SessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	Resolve(ctx context.Context, token string) (int64, error)
	Destroy(ctx context.Context, token string) error
}

const sessionKeyPrefix = "session:"

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore returns a Redis-backed SessionStore with the given
// session lifetime.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{client: client, ttl: ttl}
}

func (s *redisSessionStore) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	key := sessionKeyPrefix + token
	if err := s.client.Set(ctx, key, userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *redisSessionStore) Resolve(ctx context.Context, token string) (int64, error) {
	val, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, ErrSessionNotFound
	}
	return userID, nil
}

func (s *redisSessionStore) Destroy(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKeyPrefix+token).Err()
}

type memorySession struct {
	userID    int64
	expiresAt time.Time
}

type memorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memorySession
}

// NewMemorySessionStore returns an in-process SessionStore used when Redis
// is not configured and by tests.
func NewMemorySessionStore(ttl time.Duration) SessionStore {
	return &memorySessionStore{ttl: ttl, sessions: make(map[string]memorySession)}
}

func (s *memorySessionStore) Create(_ context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memorySession{userID: userID, expiresAt: time.Now().Add(s.ttl)}
	return token, nil
}

func (s *memorySessionStore) Resolve(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return 0, ErrSessionNotFound
	}
	if time.Now().After(session.expiresAt) {
		delete(s.sessions, token)
		return 0, ErrSessionNotFound
	}
	return session.userID, nil
}

func (s *memorySessionStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
