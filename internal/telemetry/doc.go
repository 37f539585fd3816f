// Package telemetry — structured logging (slog) и Prometheus-метрики.
package telemetry
