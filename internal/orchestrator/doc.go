// Package orchestrator — ядро пересчёта производных артефактов дела.
//
// Orchestrator.Submit принимает триггер-событие, через trigger table
// находит seed-узлы, расширяет их до транзитивного замыкания зависимых
// узлов и выполняет каждый узел в топологическом порядке через
// StepExecutor. Результат прогона — финализированный domain.Job
// с одним шагом на каждый узел в scope.
//
// StepExecutor инкапсулирует мемоизацию (сравнение fingerprint входов,
// SKIPPED_UNCHANGED при совпадении), лимит времени на шаг и перехват
// паник recomputer-а. Упавший узел транзитивно блокирует зависимые
// (SKIPPED_BLOCKED), но не мешает независимым ветвям графа.
package orchestrator
