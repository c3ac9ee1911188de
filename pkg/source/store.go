package source

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/leowmjw/go-scoreplot/pkg/score"
)

// ErrScoreNotFound is returned when a store holds no score under an ID.
var ErrScoreNotFound = errors.New("score not found")

// Store keeps uploaded scores so jobs can refer to them by ID.
type Store interface {
	SaveScore(ctx context.Context, s *score.Score) (string, error)
	LoadScore(ctx context.Context, id string) (*score.Score, error)
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	scores map[string]*score.Score
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scores: make(map[string]*score.Score),
	}
}

// SaveScore stores s under a new ID.
func (m *MemoryStore) SaveScore(ctx context.Context, s *score.Score) (string, error) {
	if s == nil {
		return "", fmt.Errorf("%w: nil score", ErrUnknownFormat)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[id] = s
	return id, nil
}

// LoadScore returns the score stored under id.
func (m *MemoryStore) LoadScore(ctx context.Context, id string) (*score.Score, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scores[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScoreNotFound, id)
	}
	return s, nil
}

// Count returns the number of stored scores.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.scores)
}
