// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - case.event     — событие по делу (триггер пересчёта)
//   - job.finalized  — job финализирован
//
// Exchanges:
//   - casegraph.events — входящие события дел
//   - casegraph.jobs   — уведомления о финализированных jobs
//   - casegraph.dlq    — dead letter queue
package mq
