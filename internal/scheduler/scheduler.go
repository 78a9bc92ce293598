package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Cascade/internal/mq"
	"github.com/shaiso/Cascade/internal/store"
	"github.com/shaiso/Cascade/internal/telemetry"
)

// Schedule — расписание периодических запусков workflow.
// Задаётся либо cron-выражением, либо интервалом в секундах.
type Schedule struct {
	ID          uuid.UUID      `json:"id"`
	WorkflowID  string         `json:"workflow_id"`
	CronExpr    string         `json:"cron_expr,omitempty"`
	IntervalSec int            `json:"interval_sec,omitempty"`
	Timezone    string         `json:"timezone,omitempty"`
	Inputs      map[string]any `json:"inputs,omitempty"`
	Enabled     bool           `json:"enabled"`
	NextDueAt   time.Time      `json:"next_due_at"`
	LastRunID   string         `json:"last_run_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// IsCron сообщает, задано ли расписание cron-выражением.
func (s *Schedule) IsCron() bool {
	return s.CronExpr != ""
}

// IsInterval сообщает, задано ли расписание интервалом.
func (s *Schedule) IsInterval() bool {
	return s.IntervalSec > 0
}

// Scheduler — планировщик периодических запусков.
//
// Расписания хранятся в памяти и привязаны к workflow из store.
// Каждый тик выполняет due-расписания: запускает движок workflow и
// дренирует поток событий в лог (и в зеркало mq, если настроено).
type Scheduler struct {
	store     store.Store
	publisher *mq.Publisher
	logger    *slog.Logger

	mu        sync.RWMutex
	schedules map[uuid.UUID]*Schedule
}

// Config — конфигурация Scheduler.
type Config struct {
	Store     store.Store
	Publisher *mq.Publisher // опционально
	Logger    *slog.Logger
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		logger:    logger,
		schedules: make(map[uuid.UUID]*Schedule),
	}
}

// Add регистрирует расписание. Workflow обязан быть загружен,
// cron-выражение — валидным.
func (s *Scheduler) Add(sched *Schedule) (*Schedule, error) {
	if _, err := s.store.Get(sched.WorkflowID); err != nil {
		return nil, fmt.Errorf("workflow %q: %w", sched.WorkflowID, err)
	}
	if sched.IsCron() {
		if err := ValidateCronExpr(sched.CronExpr); err != nil {
			return nil, err
		}
	} else if !sched.IsInterval() {
		return nil, fmt.Errorf("schedule has neither cron_expr nor interval_sec")
	}

	now := time.Now()
	next, err := CalculateNextDue(sched, now)
	if err != nil {
		return nil, err
	}

	sched.ID = uuid.New()
	sched.Enabled = true
	sched.NextDueAt = next
	sched.CreatedAt = now

	s.mu.Lock()
	s.schedules[sched.ID] = sched
	s.mu.Unlock()

	s.logger.Info("schedule added",
		"schedule_id", sched.ID,
		"workflow_id", sched.WorkflowID,
		"next_due_at", sched.NextDueAt,
	)
	return sched, nil
}

// Get возвращает расписание по ID.
func (s *Scheduler) Get(id uuid.UUID) (*Schedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sched, ok := s.schedules[id]
	return sched, ok
}

// List возвращает все расписания, отсортированные по времени создания.
func (s *Scheduler) List() []*Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Schedule, 0, len(s.schedules))
	for _, sched := range s.schedules {
		list = append(list, sched)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

// Remove удаляет расписание. Возвращает false, если ID неизвестен.
func (s *Scheduler) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[id]; !ok {
		return false
	}
	delete(s.schedules, id)
	return true
}

// Run крутит тики с заданным периодом до отмены контекста.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case now := <-ticker.C:
			if err := s.Tick(ctx, now); err != nil {
				s.logger.Error("scheduler tick failed", "error", err)
			}
		}
	}
}

// Tick выполняет все due-расписания. Ошибка одного расписания не
// блокирует остальные.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) error {
	due := s.dueSchedules(now)
	if len(due) == 0 {
		return nil
	}

	s.logger.Debug("found due schedules", "count", len(due))

	var processed int
	for _, sched := range due {
		if err := s.processSchedule(ctx, sched, now); err != nil {
			s.logger.Error("failed to process schedule",
				"schedule_id", sched.ID,
				"workflow_id", sched.WorkflowID,
				"error", err,
			)
			continue
		}
		processed++
	}

	s.logger.Info("scheduler tick completed", "due", len(due), "processed", processed)
	return nil
}

func (s *Scheduler) dueSchedules(now time.Time) []*Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*Schedule
	for _, sched := range s.schedules {
		if sched.Enabled && !sched.NextDueAt.After(now) {
			due = append(due, sched)
		}
	}
	return due
}

// processSchedule запускает workflow расписания и сдвигает NextDueAt.
func (s *Scheduler) processSchedule(ctx context.Context, sched *Schedule, now time.Time) error {
	wf, err := s.store.Get(sched.WorkflowID)
	if err != nil {
		// Workflow выгружен — расписание отключается, а не удаляется.
		s.logger.Warn("workflow not found for schedule, disabling",
			"schedule_id", sched.ID,
			"workflow_id", sched.WorkflowID,
		)
		s.mu.Lock()
		sched.Enabled = false
		s.mu.Unlock()
		return nil
	}

	next, err := CalculateNextDue(sched, now)
	if err != nil {
		return fmt.Errorf("calculate next due: %w", err)
	}

	runID := uuid.New().String()
	logger := telemetry.WithRunID(s.logger, runID)
	logger.Info("scheduled run started", "workflow_id", sched.WorkflowID, "schedule_id", sched.ID)
	telemetry.RunsStarted.WithLabelValues(sched.WorkflowID).Inc()

	started := time.Now()
	var failed bool
	for ev := range wf.Engine.Execute(ctx, sched.Inputs) {
		telemetry.EventsEmitted.Inc()
		if s.publisher != nil {
			if err := s.publisher.PublishEvent(ctx, sched.WorkflowID, runID, ev); err != nil {
				logger.Warn("failed to mirror event", "error", err)
			}
		}
		if ev.IsError() {
			failed = true
			logger.Error("scheduled run failed", "node_id", ev.NodeID, "error", ev.Error)
		} else {
			logger.Debug("event", "node_id", ev.NodeID)
		}
	}

	telemetry.RunDuration.WithLabelValues(sched.WorkflowID).Observe(time.Since(started).Seconds())
	if failed {
		telemetry.RunsFailed.WithLabelValues(sched.WorkflowID).Inc()
	} else {
		telemetry.RunsCompleted.WithLabelValues(sched.WorkflowID).Inc()
		logger.Info("scheduled run completed", "duration", time.Since(started))
	}

	s.mu.Lock()
	sched.LastRunID = runID
	sched.NextDueAt = next
	s.mu.Unlock()

	return nil
}
