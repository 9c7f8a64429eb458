package services

import (
	"cafe-server/models"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore persists viewer sessions until they expire.
type SessionStore interface {
	Save(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	// SetLocationOnce records the location unless one is already set, in which
	// case it returns ErrLocationAlreadySet.
	SetLocationOnce(ctx context.Context, id string, loc models.LngLat) (models.Session, error)
}

func sessionKey(id string) string {
	return "session:" + id
}

// RedisSessionStore keeps each session as a JSON string that expires with the session.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Save(ctx context.Context, session models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}
	return s.client.Set(ctx, sessionKey(session.ID), data, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (models.Session, error) {
	return getSession(ctx, s.client, id)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getSession(ctx context.Context, c stringGetter, id string) (models.Session, error) {
	data, err := c.Get(ctx, sessionKey(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, err
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return models.Session{}, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return session, nil
}

// SetLocationOnce uses WATCH so two racing updates cannot both succeed.
func (s *RedisSessionStore) SetLocationOnce(ctx context.Context, id string, loc models.LngLat) (models.Session, error) {
	key := sessionKey(id)
	var updated models.Session

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		session, err := getSession(ctx, tx, id)
		if err != nil {
			return err
		}
		if session.Location != nil {
			return ErrLocationAlreadySet
		}
		session.Location = &loc

		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, redis.KeepTTL)
			return nil
		})
		updated = session
		return err
	}, key)

	if stderrors.Is(err, redis.TxFailedErr) {
		// Someone else wrote the session between WATCH and EXEC.
		return models.Session{}, ErrLocationAlreadySet
	}
	if err != nil {
		return models.Session{}, err
	}
	return updated, nil
}

// MemorySessionStore is a process-local SessionStore for single-instance
// deployments and tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]models.Session),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Save(ctx context.Context, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id)
}

func (s *MemorySessionStore) lookup(id string) (models.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	if !s.now().Before(session.ExpiresAt) {
		delete(s.sessions, id)
		return models.Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *MemorySessionStore) SetLocationOnce(ctx context.Context, id string, loc models.LngLat) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(id)
	if err != nil {
		return models.Session{}, err
	}
	if session.Location != nil {
		return models.Session{}, ErrLocationAlreadySet
	}
	session.Location = &loc
	s.sessions[id] = session
	return session, nil
}
