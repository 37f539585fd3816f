package domain

// TriggerEvent — внешнее событие, запускающее пересчёт производных артефактов.
//
// Событие приходит из API или из очереди events.case и содержит ссылку на
// сущность дела плюс payload с текущими фактами. Пара (EventType, EntityType)
// определяет через trigger table начальный набор "грязных" узлов графа.
type TriggerEvent struct {
	// EventType — тип события (например, "process_event_added", "keypoint_edited").
	EventType string `json:"event_type"`

	// EntityType — тип сущности события (например, "process_event", "evidence").
	EntityType string `json:"entity_type"`

	// EntityID — идентификатор сущности.
	EntityID string `json:"entity_id,omitempty"`

	// Payload — текущие факты, сопровождающие событие.
	// Для корневых узлов графа payload входит в их fingerprint.
	Payload map[string]any `json:"payload,omitempty"`
}
