// Package scheduler реализует фоновый reconcile sweep.
//
// Sweeper по cron-расписанию проходит по делам с jobs за последнее окно
// активности и отправляет каждому sweep-событие через Orchestrator.Submit.
// Пересчёт при этом дешёвый: узлы с актуальными fingerprint-ами
// пропускаются, реально пересчитывается только то, что разошлось.
//
// Использование:
//
//	sweeper := scheduler.New(scheduler.Config{
//	    Cases:     jobRepo,
//	    Submitter: orch,
//	    CronExpr:  "0 3 * * *",
//	    Window:    24 * time.Hour,
//	    Logger:    logger,
//	})
//	if err := sweeper.Start(ctx); err != nil { ... }
//	defer sweeper.Stop()
package scheduler
