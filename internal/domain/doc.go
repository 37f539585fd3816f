// Package domain содержит доменные модели Casegraph:
// job и step (записи одного прогона пересчёта), их статусы
// и событие-триггер.
//
// Модели не содержат бизнес-логики пересчёта — только данные,
// переходы статусов и агрегацию итогового статуса job.
package domain
