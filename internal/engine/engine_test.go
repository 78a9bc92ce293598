package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/nodes"
)

// stubNode — управляемый узел для тестов движка.
type stubNode struct {
	typ string
	fn  func(ctx context.Context, req *nodes.Request, emit nodes.EmitFunc) error
}

func (n *stubNode) Type() string         { return n.typ }
func (n *stubNode) Schema() nodes.Schema { return nodes.Schema{} }

func (n *stubNode) Execute(ctx context.Context, req *nodes.Request, emit nodes.EmitFunc) error {
	return n.fn(ctx, req, emit)
}

// testRegistry собирает реестр из детерминированных узлов:
//   - emit   — одна запись {"result": inputs.value}
//   - append — {"result": inputs.value + config.suffix}
//   - multi  — три записи "part-1".."part-3"
//   - fail   — ошибка без записей
func testRegistry() *nodes.Registry {
	r := nodes.NewRegistry()

	r.Register(&stubNode{typ: "emit", fn: func(ctx context.Context, req *nodes.Request, emit nodes.EmitFunc) error {
		return emit(nodes.Output{"result": req.Inputs["value"]})
	}})

	r.Register(&stubNode{typ: "append", fn: func(ctx context.Context, req *nodes.Request, emit nodes.EmitFunc) error {
		v := nodes.InputString(req.Inputs, "value")
		return emit(nodes.Output{"result": v + nodes.ConfigString(req.Config, "suffix")})
	}})

	r.Register(&stubNode{typ: "multi", fn: func(ctx context.Context, req *nodes.Request, emit nodes.EmitFunc) error {
		for i := 1; i <= 3; i++ {
			if err := emit(nodes.Output{"result": fmt.Sprintf("part-%d", i)}); err != nil {
				return err
			}
		}
		return nil
	}})

	r.Register(&stubNode{typ: "fail", fn: func(ctx context.Context, req *nodes.Request, emit nodes.EmitFunc) error {
		return errors.New("boom")
	}})

	return r
}

func collectEvents(t *testing.T, ch <-chan domain.Event) []domain.Event {
	t.Helper()

	var events []domain.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("поток событий не закрылся")
			return nil
		}
	}
}

func TestEngineChain(t *testing.T) {
	// Узлы объявлены не в порядке выполнения; порядок задают connections.
	spec := &domain.WorkflowSpec{
		ID: "chain",
		Nodes: []domain.NodeDef{
			{ID: "c", Type: "append", Config: map[string]any{"suffix": "-c"}, Inputs: map[string]any{"value": "$b"}},
			{ID: "a", Type: "emit", Inputs: map[string]any{"value": "start"}},
			{ID: "b", Type: "append", Config: map[string]any{"suffix": "-b"}, Inputs: map[string]any{"value": "$a"}},
		},
		Connections: []domain.Connection{
			{From: "a", To: "b"},
			{From: "b", To: "c"},
		},
	}

	eng, err := New(spec, testRegistry(), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	events := collectEvents(t, eng.Execute(context.Background(), nil))

	if len(events) != 3 {
		t.Fatalf("получено %d событий, ожидалось 3", len(events))
	}
	wantOrder := []string{"a", "b", "c"}
	for i, id := range wantOrder {
		if events[i].NodeID != id {
			t.Errorf("events[%d].NodeID = %q, want %q", i, events[i].NodeID, id)
		}
	}
	if got := events[2].Output["result"]; got != "start-b-c" {
		t.Errorf("результат цепочки = %v, want start-b-c", got)
	}
}

func TestEngineInitialInputs(t *testing.T) {
	spec := &domain.WorkflowSpec{
		ID: "wf",
		Nodes: []domain.NodeDef{
			{ID: "first", Type: "emit"},
			{ID: "second", Type: "emit", Inputs: map[string]any{"value": "$_initial.value"}},
		},
	}

	eng, err := New(spec, testRegistry(), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	events := collectEvents(t, eng.Execute(context.Background(), map[string]any{"value": "seed"}))

	if len(events) != 2 {
		t.Fatalf("получено %d событий, ожидалось 2", len(events))
	}
	// Первый узел получает начальные входы напрямую.
	if events[0].Output["result"] != "seed" {
		t.Errorf("first result = %v, want seed", events[0].Output["result"])
	}
	// Остальные читают их через "$_initial".
	if events[1].Output["result"] != "seed" {
		t.Errorf("second result = %v, want seed", events[1].Output["result"])
	}
}

func TestEngineStreamingNode(t *testing.T) {
	spec := &domain.WorkflowSpec{
		ID: "wf",
		Nodes: []domain.NodeDef{
			{ID: "stream", Type: "multi"},
			{ID: "after", Type: "append", Inputs: map[string]any{"value": "$stream"}},
		},
	}

	eng, err := New(spec, testRegistry(), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	events := collectEvents(t, eng.Execute(context.Background(), nil))

	if len(events) != 4 {
		t.Fatalf("получено %d событий, ожидалось 4", len(events))
	}
	// Последующий узел видит последнюю запись потокового узла.
	if events[3].Output["result"] != "part-3" {
		t.Errorf("after result = %v, want part-3", events[3].Output["result"])
	}
}

func TestEngineNodeFault(t *testing.T) {
	spec := &domain.WorkflowSpec{
		ID: "wf",
		Nodes: []domain.NodeDef{
			{ID: "a", Type: "emit", Inputs: map[string]any{"value": "ok"}},
			{ID: "bad", Type: "fail"},
			{ID: "never", Type: "emit"},
		},
	}

	eng, err := New(spec, testRegistry(), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	events := collectEvents(t, eng.Execute(context.Background(), nil))

	if len(events) != 2 {
		t.Fatalf("получено %d событий, ожидалось 2", len(events))
	}
	last := events[len(events)-1]
	if !last.IsError() || last.NodeID != "bad" {
		t.Errorf("терминальное событие = %+v, ожидалась ошибка узла bad", last)
	}
	for _, ev := range events {
		if ev.NodeID == "never" {
			t.Error("узел после ошибки не должен выполняться")
		}
	}
}

func TestEngineCancellation(t *testing.T) {
	spec := &domain.WorkflowSpec{
		ID: "wf",
		Nodes: []domain.NodeDef{
			{ID: "stream", Type: "multi"},
		},
	}

	eng, err := New(spec, testRegistry(), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := eng.Execute(ctx, nil)

	// Читаем одно событие и отменяем запуск; поток обязан закрыться
	// без терминального события об ошибке.
	<-ch
	cancel()

	events := collectEvents(t, ch)
	for _, ev := range events {
		if ev.IsError() {
			t.Errorf("после отмены не должно быть события-ошибки: %+v", ev)
		}
	}
}

func TestEngineValidation(t *testing.T) {
	tests := []struct {
		name string
		spec *domain.WorkflowSpec
		want error
	}{
		{
			name: "пустой workflow",
			spec: &domain.WorkflowSpec{ID: "wf"},
			want: ErrEmptyNodes,
		},
		{
			name: "пустой ID",
			spec: &domain.WorkflowSpec{ID: "wf", Nodes: []domain.NodeDef{{Type: "emit"}}},
			want: ErrEmptyNodeID,
		},
		{
			name: "дубликат ID",
			spec: &domain.WorkflowSpec{ID: "wf", Nodes: []domain.NodeDef{
				{ID: "a", Type: "emit"},
				{ID: "a", Type: "emit"},
			}},
			want: ErrDuplicateNodeID,
		},
		{
			name: "точка в ID",
			spec: &domain.WorkflowSpec{ID: "wf", Nodes: []domain.NodeDef{{ID: "a.b", Type: "emit"}}},
			want: ErrDottedNodeID,
		},
		{
			name: "неизвестный тип",
			spec: &domain.WorkflowSpec{ID: "wf", Nodes: []domain.NodeDef{{ID: "a", Type: "ghost"}}},
			want: ErrUnknownNodeType,
		},
		{
			name: "loop без тела",
			spec: &domain.WorkflowSpec{ID: "wf", Nodes: []domain.NodeDef{
				{ID: "l", Type: domain.NodeTypeLoop},
			}},
			want: ErrEmptyLoopBody,
		},
		{
			name: "switch без ветвей",
			spec: &domain.WorkflowSpec{ID: "wf", Nodes: []domain.NodeDef{
				{ID: "s", Type: domain.NodeTypeSwitch},
			}},
			want: ErrEmptyCases,
		},
		{
			name: "неизвестный тип подузла",
			spec: &domain.WorkflowSpec{ID: "wf", Nodes: []domain.NodeDef{
				{ID: "l", Type: domain.NodeTypeLoop, Nodes: []domain.NodeDef{
					{ID: "sub", Type: "ghost"},
				}},
			}},
			want: ErrUnknownNodeType,
		},
	}

	registry := testRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.spec, registry, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("ошибка должна оборачивать ValidationError: %v", err)
			}
		})
	}
}
