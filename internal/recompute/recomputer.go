package recompute

import "context"

// Result — результат пересчёта узла.
type Result struct {
	// Output — пересчитанный артефакт (то, что потребляют зависимые узлы).
	Output map[string]any

	// Metrics — числовые счётчики пересчёта (items_produced и т.п.).
	// Длительность шага оркестратор добавляет сам.
	Metrics map[string]float64
}

// Recomputer — функция пересчёта одного типа артефакта.
//
// Для оркестратора это непрозрачная capability: как именно считается
// legal ground match или генерируется draft — дело реализации
// (rule-based экстрактор, embedding-сервис, генератор документов).
//
// Реализации: HTTPRecomputer (продакшен, вызов recompute-сервиса)
// и FuncRecomputer (адаптер для тестов и in-process узлов).
type Recomputer interface {
	// Recompute пересчитывает артефакт по текущим входам.
	// inputs — выходы upstream-узлов по их типам плюс payload триггера
	// под ключом "trigger" для корневых узлов.
	Recompute(ctx context.Context, caseID string, inputs map[string]any) (*Result, error)

	// Latest возвращает текущий (последний успешно сохранённый) артефакт.
	// Используется, когда узел пропущен как неизменённый, а его выход
	// нужен зависимым узлам.
	Latest(ctx context.Context, caseID string) (map[string]any, error)
}

// FuncRecomputer — адаптер функций в Recomputer.
type FuncRecomputer struct {
	// RecomputeFn — функция пересчёта. Обязательна.
	RecomputeFn func(ctx context.Context, caseID string, inputs map[string]any) (*Result, error)

	// LatestFn — функция чтения текущего артефакта.
	// Если nil, Latest возвращает nil без ошибки.
	LatestFn func(ctx context.Context, caseID string) (map[string]any, error)
}

// Recompute реализует Recomputer.
func (f *FuncRecomputer) Recompute(ctx context.Context, caseID string, inputs map[string]any) (*Result, error) {
	return f.RecomputeFn(ctx, caseID, inputs)
}

// Latest реализует Recomputer.
func (f *FuncRecomputer) Latest(ctx context.Context, caseID string) (map[string]any, error) {
	if f.LatestFn == nil {
		return nil, nil
	}
	return f.LatestFn(ctx, caseID)
}
