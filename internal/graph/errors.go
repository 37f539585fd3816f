package graph

import "errors"

// Ошибки валидации конфигурации графа и trigger table.
var (
	// ErrEmptyNodes — граф не содержит ни одного узла.
	ErrEmptyNodes = errors.New("graph has no nodes")

	// ErrEmptyNodeType — узел не имеет типа.
	ErrEmptyNodeType = errors.New("node has empty type")

	// ErrDuplicateNodeType — несколько узлов с одинаковым типом.
	ErrDuplicateNodeType = errors.New("duplicate node type")

	// ErrUnknownDependency — узел зависит от несуществующего узла.
	ErrUnknownDependency = errors.New("node depends on unknown node")

	// ErrSelfDependency — узел зависит от самого себя.
	ErrSelfDependency = errors.New("node depends on itself")

	// ErrCyclicDependency — обнаружен цикл в зависимостях.
	ErrCyclicDependency = errors.New("cyclic dependency detected")

	// ErrEmptyTriggerEvent — trigger rule без типа события.
	ErrEmptyTriggerEvent = errors.New("trigger rule has empty event type")

	// ErrEmptyTriggerSeeds — trigger rule без seed-узлов.
	ErrEmptyTriggerSeeds = errors.New("trigger rule has no seeds")

	// ErrUnknownSeed — trigger rule ссылается на узел, которого нет в графе.
	ErrUnknownSeed = errors.New("trigger seed references unknown node")
)

// ConfigError — ошибка конфигурации графа или trigger table с контекстом.
//
// Возникает только при построении (старте процесса), никогда во время прогона.
type ConfigError struct {
	Subject string // тип узла или пара "event/entity", где нашлась ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ConfigError) Error() string {
	if e.Subject != "" {
		return e.Subject + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError создаёт новую ошибку конфигурации.
func NewConfigError(subject, field, message string, err error) *ConfigError {
	return &ConfigError{
		Subject: subject,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
