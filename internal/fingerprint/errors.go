package fingerprint

import "errors"

// ErrNotHashable — входы узла не сериализуются в канонический вид.
var ErrNotHashable = errors.New("inputs are not hashable")

// ValidationError — ошибка вычисления fingerprint с контекстом.
//
// Оркестратор превращает её в упавший шаг с категорией VALIDATION,
// не в падение всего прогона.
type ValidationError struct {
	NodeType string // узел, для которого вычислялся fingerprint
	Message  string // описание ошибки
	Err      error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.NodeType != "" {
		return "node " + e.NodeType + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации входов.
func NewValidationError(nodeType, message string, err error) *ValidationError {
	return &ValidationError{
		NodeType: nodeType,
		Message:  message,
		Err:      err,
	}
}
