package session

import (
	"context"
	"sync"

	"github.com/tackernao0522/demochat-client/internal/client/repositories/localstore"
)

// Reader is read access to persisted entries. ok is false for an absent key.
type Reader interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// Storage is the client storage capability.
type Storage interface {
	Reader
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// batchWriter is implemented by media that can write several entries at
// once.
type batchWriter interface {
	SetMany(ctx context.Context, values map[string]string) error
}

// batchDeleter is implemented by media that can remove several entries in
// one step.
type batchDeleter interface {
	DeleteMany(ctx context.Context, keys ...string) error
}

// MemoryStorage keeps entries in process memory.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// RepositoryStorage stores entries in the sqlite local_storage table.
type RepositoryStorage struct {
	repo localstore.Repository
}

func NewRepositoryStorage(repo localstore.Repository) *RepositoryStorage {
	return &RepositoryStorage{repo: repo}
}

func (s *RepositoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	return s.repo.Get(ctx, key)
}

func (s *RepositoryStorage) Set(ctx context.Context, key, value string) error {
	return s.repo.Set(ctx, key, value)
}

func (s *RepositoryStorage) SetMany(ctx context.Context, values map[string]string) error {
	return s.repo.SetMany(ctx, values)
}

func (s *RepositoryStorage) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

// DeleteMany removes keys in a single transaction.
func (s *RepositoryStorage) DeleteMany(ctx context.Context, keys ...string) error {
	return s.repo.Delete(ctx, keys...)
}
