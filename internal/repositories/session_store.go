package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"alfredoptarigan/mock-interview/internal/models"
)

var ErrSessionNotFound = errors.New("interview session not found")

// SessionStore keeps live interview sessions keyed by candidate id. Callers
// receive their own copy and must Save it back after mutating.
type SessionStore interface {
	Get(ctx context.Context, candidateID string) (*models.InterviewSession, error)
	GetOrCreate(ctx context.Context, candidateID string) (*models.InterviewSession, error)
	Save(ctx context.Context, session *models.InterviewSession) error
}

const sessionKeyPrefix = "interview:session:"

func sessionKey(candidateID string) string {
	return sessionKeyPrefix + candidateID
}

type redisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *redisSessionStore) Get(ctx context.Context, candidateID string) (*models.InterviewSession, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(candidateID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session models.InterviewSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

func (s *redisSessionStore) GetOrCreate(ctx context.Context, candidateID string) (*models.InterviewSession, error) {
	session := models.NewInterviewSession(candidateID)
	raw, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	created, err := s.rdb.SetNX(ctx, sessionKey(candidateID), raw, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if created {
		return session, nil
	}

	return s.Get(ctx, candidateID)
}

func (s *redisSessionStore) Save(ctx context.Context, session *models.InterviewSession) error {
	session.UpdatedAt = time.Now()
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.rdb.Set(ctx, sessionKey(session.CandidateID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

type memorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewMemorySessionStore keeps sessions in process. Values are stored encoded
// so no caller ever shares a slice with another.
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string][]byte)}
}

func (s *memorySessionStore) Get(_ context.Context, candidateID string) (*models.InterviewSession, error) {
	s.mu.RLock()
	raw, ok := s.sessions[candidateID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	var session models.InterviewSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

func (s *memorySessionStore) GetOrCreate(ctx context.Context, candidateID string) (*models.InterviewSession, error) {
	s.mu.Lock()
	if _, ok := s.sessions[candidateID]; !ok {
		raw, err := json.Marshal(models.NewInterviewSession(candidateID))
		if err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("failed to encode session: %w", err)
		}
		s.sessions[candidateID] = raw
	}
	s.mu.Unlock()

	return s.Get(ctx, candidateID)
}

func (s *memorySessionStore) Save(_ context.Context, session *models.InterviewSession) error {
	session.UpdatedAt = time.Now()
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	s.mu.Lock()
	s.sessions[session.CandidateID] = raw
	s.mu.Unlock()
	return nil
}
