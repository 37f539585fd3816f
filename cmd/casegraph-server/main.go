// Casegraph Server — оркестратор пересчёта производных артефактов дел.
//
// Server:
//   - Загружает граф зависимостей и trigger table из YAML-конфигурации
//   - Принимает события дел из RabbitMQ (events.case) и HTTP API
//   - Выполняет jobs пересчёта с мемоизацией по fingerprint-ам
//   - Сохраняет audit trail jobs в Postgres
//   - По расписанию запускает reconcile sweep
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Casegraph/internal/api"
	"github.com/shaiso/Casegraph/internal/config"
	"github.com/shaiso/Casegraph/internal/domain"
	"github.com/shaiso/Casegraph/internal/mq"
	"github.com/shaiso/Casegraph/internal/orchestrator"
	"github.com/shaiso/Casegraph/internal/repo"
	"github.com/shaiso/Casegraph/internal/scheduler"
	"github.com/shaiso/Casegraph/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	logger := telemetry.SetupLogger()
	logger.Info("starting casegraph-server")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Конфигурация графа
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/casegraph.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	g, err := cfg.BuildGraph()
	if err != nil {
		logger.Error("failed to build graph", "error", err)
		os.Exit(1)
	}
	triggers, err := cfg.BuildTriggers(g)
	if err != nil {
		logger.Error("failed to build trigger table", "error", err)
		os.Exit(1)
	}
	registry := cfg.BuildRegistry()
	stepTimeout, _ := cfg.StepTimeoutDuration()

	logger.Info("graph loaded",
		"nodes", g.Size(),
		"triggers", triggers.Size(),
		"step_timeout", stepTimeout,
	)

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	jobRepo := repo.NewJobRepo(pool)
	fingerprintRepo := repo.NewFingerprintRepo(pool)

	// RabbitMQ
	var mqConn *mq.Connection
	var publisher *mq.Publisher
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err = mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in HTTP-only mode", "error", err)
		mqConn = nil
	} else {
		defer mqConn.Close()

		if err := mq.SetupTopology(mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}
		publisher = mq.NewPublisher(mqConn, logger)
	}

	// Orchestrator
	orchCfg := orchestrator.Config{
		Graph:           g,
		Triggers:        triggers,
		Registry:        registry,
		Fingerprints:    fingerprintRepo,
		Jobs:            jobRepo,
		StepTimeout:     stepTimeout,
		SupersedeActive: cfg.SupersedeActive,
		Logger:          logger,
	}
	if publisher != nil {
		orchCfg.Publisher = publisher
	}
	orch := orchestrator.New(orchCfg)

	// Consumer событий дел
	if mqConn != nil {
		consumer := mq.NewConsumer(mqConn, logger, mq.ConsumerConfig{
			Queue:   mq.QueueCaseEvents,
			Handler: caseEventHandler(orch, logger),
		})
		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("consumer stopped", "error", err)
			}
		}()
		defer consumer.Stop()
	}

	// Reconcile sweep
	if cfg.Sweep != nil {
		window, _ := cfg.Sweep.WindowDuration()
		sweeper := scheduler.New(scheduler.Config{
			Cases:     jobRepo,
			Submitter: orch,
			CronExpr:  cfg.Sweep.Cron,
			Window:    window,
			Logger:    logger,
		})
		if err := sweeper.Start(ctx); err != nil {
			logger.Error("failed to start sweeper", "error", err)
			os.Exit(1)
		}
		defer sweeper.Stop()
	}

	// HTTP API
	handler := api.NewHandler(api.Config{
		Orchestrator: orch,
		JobRepo:      jobRepo,
		Graph:        g,
		Triggers:     triggers,
		Publisher:    publisher,
		Logger:       logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("casegraph-server stopped")
}

// caseEventHandler превращает сообщение events.case в Submit.
//
// Сообщение всегда ack-ается: результат пересчёта (включая падения шагов)
// выражен статусом job, а некорректное событие повторной доставкой
// не исправится.
func caseEventHandler(orch *orchestrator.Orchestrator, logger *slog.Logger) mq.Handler {
	return func(ctx context.Context, d *mq.Delivery) error {
		payload, err := mq.ParsePayload[mq.CaseEventPayload](&d.Message)
		if err != nil {
			logger.Error("malformed case event", "message_id", d.Message.ID, "error", err)
			return nil
		}

		event := domain.TriggerEvent{
			EventType:  payload.EventType,
			EntityType: payload.EntityType,
			EntityID:   payload.EntityID,
			Payload:    payload.Payload,
		}

		job, err := orch.Submit(ctx, payload.CaseID, event)
		if err != nil {
			logger.Error("rejected case event",
				"message_id", d.Message.ID,
				"case_id", payload.CaseID,
				"error", err,
			)
			return nil
		}

		logger.Info("case event processed",
			"message_id", d.Message.ID,
			"job_id", job.ID,
			"status", job.Status,
		)
		return nil
	}
}
