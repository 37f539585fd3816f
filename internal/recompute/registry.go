package recompute

import (
	"fmt"
	"sort"
	"sync"
)

// Registry — реестр recomputer-ов по типу узла.
//
// Заполняется при старте из конфигурации (узел → endpoint recompute-сервиса)
// и дальше только читается. Потокобезопасен.
type Registry struct {
	mu          sync.RWMutex
	recomputers map[string]Recomputer
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		recomputers: make(map[string]Recomputer),
	}
}

// Register регистрирует recomputer для типа узла.
// Если тип уже зарегистрирован, реализация перезаписывается.
func (r *Registry) Register(nodeType string, rec Recomputer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recomputers[nodeType] = rec
}

// Get возвращает recomputer по типу узла.
// Возвращает ErrRecomputerNotFound, если тип не зарегистрирован.
func (r *Registry) Get(nodeType string) (Recomputer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.recomputers[nodeType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRecomputerNotFound, nodeType)
	}
	return rec, nil
}

// Has проверяет, зарегистрирован ли recomputer для типа узла.
func (r *Registry) Has(nodeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.recomputers[nodeType]
	return exists
}

// Types возвращает отсортированный список зарегистрированных типов.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.recomputers))
	for t := range r.recomputers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
