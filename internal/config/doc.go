// Package config — загрузка декларации графа пересчёта из YAML.
//
// Конфигурация описывает узлы графа с их зависимостями и endpoint-ами
// recompute-сервисов, trigger table и расписание reconcile sweep.
// Вся валидация (циклы, неизвестные зависимости, seeds) выполняется
// при загрузке, до старта оркестратора.
package config
