package config

import "errors"

// Ошибки загрузки конфигурации.
var (
	// ErrEmptyConfig — файл конфигурации пуст.
	ErrEmptyConfig = errors.New("config is empty")

	// ErrMissingEndpoint — у узла не указан endpoint recompute-сервиса.
	ErrMissingEndpoint = errors.New("node endpoint is required")

	// ErrInvalidDuration — не разбирается строка длительности.
	ErrInvalidDuration = errors.New("invalid duration")
)
