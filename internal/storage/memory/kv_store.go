package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
)

// KVStore — простая in-memory реализация PersistentStore для локальной разработки и тестов.
type KVStore struct {
	mu     sync.RWMutex
	values map[string]string

	// SetErr, если задан, возвращается из Set без записи.
	SetErr error
	// SetCalls считает попытки записи.
	SetCalls int
}

// NewKVStore возвращает пустое хранилище.
func NewKVStore() *KVStore {
	return &KVStore{
		values: make(map[string]string),
	}
}

// Get возвращает значение или ok=false, если ключа нет.
func (s *KVStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok, nil
}

// Set перезаписывает значение ключа.
func (s *KVStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.SetCalls++
	if s.SetErr != nil {
		return s.SetErr
	}
	s.values[key] = value
	return nil
}

// Ping всегда успешен; нужен для health-check.
func (s *KVStore) Ping() error {
	return nil
}

var _ domain.PersistentStore = (*KVStore)(nil)
