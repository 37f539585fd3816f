package recompute

import "errors"

// Ошибки пересчёта.
var (
	// ErrRecomputerNotFound — нет recomputer-а для данного типа узла.
	ErrRecomputerNotFound = errors.New("recomputer not found")

	// ErrRecomputeFailed — recompute-сервис вернул ошибку уровня домена.
	ErrRecomputeFailed = errors.New("recompute failed")

	// ErrArtifactNotFound — текущий артефакт узла отсутствует в хранилище.
	ErrArtifactNotFound = errors.New("artifact not found")
)
