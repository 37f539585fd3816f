package fingerprint

import (
	"context"
	"sync"
)

// Store — персистентное хранилище последних fingerprint-ов узлов.
//
// Ключ — пара (case_id, node_type). Реализация обязана обеспечивать
// атомарность чтения/записи на ключ: две параллельные джобы по одному
// делу не должны терять обновления.
//
// Продакшен-реализация — repo.FingerprintRepo (Postgres);
// MemoryStore используется в тестах и однопроцессных инсталляциях.
type Store interface {
	// Get возвращает сохранённый fingerprint узла.
	// ok == false, если fingerprint ещё не записывался.
	Get(ctx context.Context, caseID, nodeType string) (fp Fingerprint, ok bool, err error)

	// Set сохраняет fingerprint узла, перезаписывая предыдущий.
	Set(ctx context.Context, caseID, nodeType string, fp Fingerprint) error
}

// storeKey — ключ записи в MemoryStore.
type storeKey struct {
	caseID   string
	nodeType string
}

// MemoryStore — потокобезопасное in-memory хранилище fingerprint-ов.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[storeKey]Fingerprint
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[storeKey]Fingerprint),
	}
}

// Get возвращает сохранённый fingerprint.
func (s *MemoryStore) Get(_ context.Context, caseID, nodeType string) (Fingerprint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fp, ok := s.entries[storeKey{caseID: caseID, nodeType: nodeType}]
	return fp, ok, nil
}

// Set сохраняет fingerprint.
func (s *MemoryStore) Set(_ context.Context, caseID, nodeType string, fp Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[storeKey{caseID: caseID, nodeType: nodeType}] = fp
	return nil
}

// Len возвращает количество записей.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
