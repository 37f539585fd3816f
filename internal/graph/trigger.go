package graph

import "fmt"

// TriggerRule — правило из конфигурации: какое событие помечает
// какие узлы "грязными".
type TriggerRule struct {
	// Event — тип события (например, "process_event_added").
	Event string

	// Entity — тип сущности события (например, "process_event").
	Entity string

	// Seeds — начальный набор грязных узлов для этой пары (event, entity).
	Seeds []string
}

// triggerKey — ключ поиска правила.
type triggerKey struct {
	event  string
	entity string
}

// TriggerTable — неизменяемая таблица соответствия
// (event, entity) → seed-узлы графа.
//
// Несколько правил для одной пары объединяются: seeds складываются
// без дубликатов, порядок объявления сохраняется.
type TriggerTable struct {
	seeds map[triggerKey][]string
}

// NewTriggerTable строит trigger table и валидирует её против графа:
// каждое правило должно иметь непустой event и ссылаться только
// на существующие узлы.
func NewTriggerTable(rules []TriggerRule, g *Graph) (*TriggerTable, error) {
	t := &TriggerTable{seeds: make(map[triggerKey][]string, len(rules))}

	for i := range rules {
		rule := &rules[i]
		subject := rule.Event + "/" + rule.Entity

		if rule.Event == "" {
			return nil, NewConfigError(subject, "event",
				fmt.Sprintf("trigger rule %d has empty event type", i), ErrEmptyTriggerEvent)
		}
		if len(rule.Seeds) == 0 {
			return nil, NewConfigError(subject, "seeds",
				"trigger rule has no seeds", ErrEmptyTriggerSeeds)
		}

		key := triggerKey{event: rule.Event, entity: rule.Entity}
		existing := t.seeds[key]
		seen := make(map[string]bool, len(existing))
		for _, s := range existing {
			seen[s] = true
		}

		for _, seed := range rule.Seeds {
			if !g.Has(seed) {
				return nil, NewConfigError(subject, "seeds",
					fmt.Sprintf("seed references unknown node: %s", seed), ErrUnknownSeed)
			}
			if seen[seed] {
				continue
			}
			seen[seed] = true
			existing = append(existing, seed)
		}
		t.seeds[key] = existing
	}

	return t, nil
}

// SeedsFor возвращает seed-узлы для пары (event, entity).
//
// Неизвестная пара — это не ошибка: возвращается пустой набор,
// и оркестратор завершает job без шагов со статусом COMPLETED.
// Продьюсер событий не должен падать из-за события, которое
// граф не потребляет.
func (t *TriggerTable) SeedsFor(eventType, entityType string) []string {
	seeds := t.seeds[triggerKey{event: eventType, entity: entityType}]
	return append([]string(nil), seeds...)
}

// Size возвращает количество известных пар (event, entity).
func (t *TriggerTable) Size() int {
	return len(t.seeds)
}
