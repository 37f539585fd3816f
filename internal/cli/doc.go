// Package cli содержит реализацию команд casegraph CLI.
//
// Структура:
//   - client.go — HTTP-клиент для Casegraph API
//   - output.go — форматирование вывода (таблицы, JSON)
//   - event.go  — команды event submit, case cancel
//   - job.go    — команды job list, job show
//   - graph.go  — команда graph
//
// CLI работает только через HTTP API и не имеет прямого доступа к БД.
package cli
