package api

import (
	"log/slog"

	"github.com/shaiso/Cascade/internal/mq"
	"github.com/shaiso/Cascade/internal/nodes"
	"github.com/shaiso/Cascade/internal/repo"
	"github.com/shaiso/Cascade/internal/scheduler"
	"github.com/shaiso/Cascade/internal/store"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	store        store.Store
	registry     *nodes.Registry
	scheduler    *scheduler.Scheduler
	workflowRepo *repo.WorkflowRepo
	publisher    *mq.Publisher
	logger       *slog.Logger
}

// Config — конфигурация для создания Handler.
//
// WorkflowRepo и Publisher опциональны: без репозитория определения
// workflow живут только в памяти, без publisher события не
// зеркалируются в очередь.
type Config struct {
	Store        store.Store
	Registry     *nodes.Registry
	Scheduler    *scheduler.Scheduler
	WorkflowRepo *repo.WorkflowRepo
	Publisher    *mq.Publisher
	Logger       *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		store:        cfg.Store,
		registry:     cfg.Registry,
		scheduler:    cfg.Scheduler,
		workflowRepo: cfg.WorkflowRepo,
		publisher:    cfg.Publisher,
		logger:       cfg.Logger,
	}
}
