package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Cascade/internal/api"
	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/mq"
	"github.com/shaiso/Cascade/internal/nodes"
	"github.com/shaiso/Cascade/internal/repo"
	"github.com/shaiso/Cascade/internal/scheduler"
	"github.com/shaiso/Cascade/internal/store"
	"github.com/shaiso/Cascade/internal/telemetry"
)

var startTime = time.Now()

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting cascade-api")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := nodes.DefaultRegistry()
	st := store.NewMemoryStore()

	// Персистентность определений опциональна: без DB_URL workflow
	// живут только в памяти процесса.
	var workflowRepo *repo.WorkflowRepo
	if os.Getenv("DB_URL") != "" {
		pool, err := repo.NewPool(ctx)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		workflowRepo = repo.NewWorkflowRepo(pool)
		if err := workflowRepo.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		logger.Info("connected to database")

		restoreWorkflows(ctx, workflowRepo, st, registry, logger)
	}

	// Зеркало событий в RabbitMQ тоже опционально.
	var publisher *mq.Publisher
	if url := os.Getenv("AMQP_URL"); url != "" {
		conn, err := mq.NewConnection(url, logger)
		if err != nil {
			logger.Error("failed to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer conn.Close()

		publisher, err = mq.NewPublisher(conn, logger)
		if err != nil {
			logger.Error("failed to create publisher", "error", err)
			os.Exit(1)
		}
	}

	sched := scheduler.New(scheduler.Config{
		Store:     st,
		Publisher: publisher,
		Logger:    logger,
	})
	go sched.Run(ctx, time.Second)

	handler := api.NewHandler(api.Config{
		Store:        st,
		Registry:     registry,
		Scheduler:    sched,
		WorkflowRepo: workflowRepo,
		Publisher:    publisher,
		Logger:       logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

// restoreWorkflows поднимает сохранённые определения обратно в store.
// Спецификация, переставшая проходить валидацию (например, после
// удаления типа узла), пропускается с предупреждением.
func restoreWorkflows(ctx context.Context, workflowRepo *repo.WorkflowRepo, st store.Store, registry *nodes.Registry, logger *slog.Logger) {
	specs, err := workflowRepo.List(ctx)
	if err != nil {
		logger.Warn("failed to restore workflows", "error", err)
		return
	}

	var restored int
	for i := range specs {
		spec := &specs[i]
		eng, err := engine.New(spec, registry, nil)
		if err != nil {
			logger.Warn("skipping persisted workflow", "workflow_id", spec.ID, "error", err)
			continue
		}
		st.Put(&store.Workflow{Spec: spec, Engine: eng})
		restored++
	}
	logger.Info("workflows restored", "count", restored)
}
