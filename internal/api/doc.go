// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go       — Handler с DI (orchestrator, репозитории, граф, logger)
//   - routes.go        — регистрация маршрутов
//   - middleware.go    — middleware (logging, recovery)
//   - response.go      — унифицированные JSON-ответы и обработка ошибок
//   - dto.go           — Data Transfer Objects (request/response)
//   - event_handler.go — приём событий и отмена jobs
//   - job_handler.go   — чтение jobs и графа зависимостей
//
// API принимает события дел (альтернатива очереди events.case) и даёт
// доступ к audit trail выполненных jobs и топологии графа.
package api
