package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/nodes"
	"github.com/shaiso/Cascade/internal/store"
)

func TestValidateCronExpr(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"* * * * *", false},
		{"0 12 * * 1-5", false},
		{"*/5 * * * *", false},
		{"", true},
		{"not a cron", true},
		{"* * * *", true},
	}

	for _, tt := range tests {
		err := ValidateCronExpr(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCronExpr(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
		}
	}
}

func TestCalculateNextDue(t *testing.T) {
	from := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	t.Run("интервал", func(t *testing.T) {
		sched := &Schedule{IntervalSec: 90}
		next, err := CalculateNextDue(sched, from)
		if err != nil {
			t.Fatalf("CalculateNextDue() error: %v", err)
		}
		if want := from.Add(90 * time.Second); !next.Equal(want) {
			t.Errorf("next = %v, want %v", next, want)
		}
	})

	t.Run("cron каждый час", func(t *testing.T) {
		sched := &Schedule{CronExpr: "0 * * * *"}
		next, err := CalculateNextDue(sched, from)
		if err != nil {
			t.Fatalf("CalculateNextDue() error: %v", err)
		}
		if want := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC); !next.Equal(want) {
			t.Errorf("next = %v, want %v", next, want)
		}
	})

	t.Run("пустое расписание", func(t *testing.T) {
		if _, err := CalculateNextDue(&Schedule{}, from); err == nil {
			t.Error("ожидалась ошибка для расписания без cron и interval")
		}
	})

	t.Run("невалидный timezone деградирует к UTC", func(t *testing.T) {
		sched := &Schedule{IntervalSec: 60, Timezone: "Mars/Olympus"}
		if _, err := CalculateNextDue(sched, from); err != nil {
			t.Errorf("CalculateNextDue() error: %v", err)
		}
	})
}

func testStore(t *testing.T) store.Store {
	t.Helper()

	spec := &domain.WorkflowSpec{
		ID: "greet",
		Nodes: []domain.NodeDef{
			{ID: "hello", Type: "echo", Inputs: map[string]any{"text": "hi"}},
		},
	}
	eng, err := engine.New(spec, nodes.DefaultRegistry(), nil)
	if err != nil {
		t.Fatalf("engine.New() error: %v", err)
	}

	st := store.NewMemoryStore()
	st.Put(&store.Workflow{Spec: spec, Engine: eng})
	return st
}

func TestSchedulerAdd(t *testing.T) {
	s := New(Config{Store: testStore(t)})

	sched, err := s.Add(&Schedule{WorkflowID: "greet", IntervalSec: 60})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if !sched.Enabled || sched.NextDueAt.IsZero() {
		t.Errorf("Add() должен включать расписание и вычислять NextDueAt: %+v", sched)
	}

	if _, err := s.Add(&Schedule{WorkflowID: "ghost", IntervalSec: 60}); err == nil {
		t.Error("Add() для незагруженного workflow должен возвращать ошибку")
	}
	if _, err := s.Add(&Schedule{WorkflowID: "greet", CronExpr: "bad"}); err == nil {
		t.Error("Add() с невалидным cron должен возвращать ошибку")
	}
	if _, err := s.Add(&Schedule{WorkflowID: "greet"}); err == nil {
		t.Error("Add() без cron и interval должен возвращать ошибку")
	}
}

func TestSchedulerListRemove(t *testing.T) {
	s := New(Config{Store: testStore(t)})

	first, _ := s.Add(&Schedule{WorkflowID: "greet", IntervalSec: 30})
	second, _ := s.Add(&Schedule{WorkflowID: "greet", IntervalSec: 60})

	if got := len(s.List()); got != 2 {
		t.Fatalf("List() вернул %d расписаний, ожидалось 2", got)
	}

	if !s.Remove(first.ID) {
		t.Error("Remove() существующего расписания должен возвращать true")
	}
	if s.Remove(first.ID) {
		t.Error("повторный Remove() должен возвращать false")
	}

	if _, ok := s.Get(second.ID); !ok {
		t.Error("Get() должен находить оставшееся расписание")
	}
}

func TestSchedulerTick(t *testing.T) {
	s := New(Config{Store: testStore(t)})

	sched, err := s.Add(&Schedule{WorkflowID: "greet", IntervalSec: 3600})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	// Тик до наступления NextDueAt ничего не запускает.
	if err := s.Tick(context.Background(), time.Now()); err != nil {
		t.Fatalf("Tick() error: %v", err)
	}
	if sched.LastRunID != "" {
		t.Error("расписание не должно запускаться до NextDueAt")
	}

	// Тик после NextDueAt выполняет workflow и сдвигает расписание.
	due := sched.NextDueAt
	if err := s.Tick(context.Background(), due.Add(time.Second)); err != nil {
		t.Fatalf("Tick() error: %v", err)
	}

	got, _ := s.Get(sched.ID)
	if got.LastRunID == "" {
		t.Error("после due-тика LastRunID должен быть заполнен")
	}
	if !got.NextDueAt.After(due) {
		t.Errorf("NextDueAt должен сдвинуться вперёд: %v -> %v", due, got.NextDueAt)
	}
}
