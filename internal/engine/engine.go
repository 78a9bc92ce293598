package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/nodes"
)

// Engine — движок выполнения одного WorkflowSpec.
//
// Построение (New) валидирует спецификацию и разрешает все типы узлов
// заранее, поэтому запуск не может упасть на незарегистрированном типе.
// Engine безопасен для конкурентных запусков: каждый Execute создаёт
// собственное состояние и поток событий.
type Engine struct {
	spec     *domain.WorkflowSpec
	registry *nodes.Registry
	nodes    map[string]nodes.Node
	configs  map[string]*domain.NodeDef
	logger   *slog.Logger
}

// eventSink доставляет событие потребителю. Возвращает ошибку, если
// запуск отменён и доставка невозможна.
type eventSink func(domain.Event) error

// New строит движок по спецификации. Реестр обязателен, nil-логгер
// заменяется на slog.Default.
func New(spec *domain.WorkflowSpec, registry *nodes.Registry, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := Validate(spec, registry); err != nil {
		return nil, fmt.Errorf("validate workflow %q: %w", spec.ID, err)
	}

	e := &Engine{
		spec:     spec,
		registry: registry,
		nodes:    make(map[string]nodes.Node, len(spec.Nodes)),
		configs:  make(map[string]*domain.NodeDef, len(spec.Nodes)),
		logger:   logger.With("workflow_id", spec.ID),
	}

	for i := range spec.Nodes {
		def := &spec.Nodes[i]
		e.configs[def.ID] = def
		if def.IsControl() {
			continue
		}
		node, err := registry.Get(def.Type)
		if err != nil {
			return nil, fmt.Errorf("resolve node %q: %w", def.ID, err)
		}
		e.nodes[def.ID] = node
	}

	return e, nil
}

// Spec возвращает спецификацию движка.
func (e *Engine) Spec() *domain.WorkflowSpec {
	return e.spec
}

// Execute запускает workflow и возвращает поток событий.
//
// Канал закрывается после завершения запуска: штатного, после
// терминального события с ошибкой или после отмены контекста.
// Потребитель обязан вычитывать канал до закрытия либо отменить
// контекст; иначе производитель блокируется (backpressure вместо
// потери событий).
func (e *Engine) Execute(ctx context.Context, initial map[string]any) <-chan domain.Event {
	events := make(chan domain.Event)
	go e.run(ctx, initial, events)
	return events
}

func (e *Engine) run(ctx context.Context, initial map[string]any, events chan<- domain.Event) {
	defer close(events)

	st := NewState(initial)
	order, orderErr := ExecutionOrder(e.spec)
	if orderErr != nil {
		e.logger.Warn("connections unusable, falling back to declaration order", "error", orderErr)
	}
	executed := make(map[string]bool, len(order))

	sink := func(ev domain.Event) error {
		select {
		case events <- ev:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrRunCancelled, ctx.Err())
		}
	}

	e.logger.Debug("run started", "order", order)

	for i, id := range order {
		if executed[id] {
			continue
		}
		if ctx.Err() != nil {
			e.logger.Debug("run cancelled", "node_id", id)
			return
		}

		def := e.configs[id]

		var err error
		switch def.Type {
		case domain.NodeTypeLoop:
			err = e.runLoop(ctx, def, st, sink)
		case domain.NodeTypeSwitch:
			err = e.runSwitch(ctx, def, st, sink)
		default:
			inputs := ResolveInputs(def, st, "")
			if i == 0 {
				// Первый узел получает начальные входы запуска поверх
				// объявленных.
				for k, v := range initial {
					inputs[k] = v
				}
			}
			err = e.invokeNode(ctx, id, e.nodes[id], def, inputs, 0, st, sink)
		}

		if err != nil {
			if errors.Is(err, ErrRunCancelled) || ctx.Err() != nil {
				e.logger.Debug("run cancelled", "node_id", id)
				return
			}
			e.logger.Error("node execution failed", "node_id", id, "error", err)
			select {
			case events <- domain.Event{NodeID: id, Error: err.Error(), IsFinal: true}:
			case <-ctx.Done():
			}
			return
		}

		executed[id] = true
	}

	e.logger.Debug("run finished", "state_keys", len(st.Keys()))
}

// invokeNode выполняет один обычный узел: каждая произведённая запись
// фиксируется в состоянии под ключом key и транслируется в поток событий.
func (e *Engine) invokeNode(ctx context.Context, key string, node nodes.Node, def *domain.NodeDef, inputs map[string]any, iteration int, st *State, sink eventSink) error {
	req := &nodes.Request{
		NodeID: key,
		Config: def.Config,
		Inputs: inputs,
	}

	emit := func(out nodes.Output) error {
		st.Set(key, out)
		return sink(domain.Event{NodeID: key, Output: out, LoopIteration: iteration})
	}

	return node.Execute(ctx, req, emit)
}

// runSubNode выполняет подузел контейнера scope под ключом "scope.subID".
// Вложенные control-flow узлы пропускаются.
func (e *Engine) runSubNode(ctx context.Context, scope string, def *domain.NodeDef, iteration int, st *State, sink eventSink) error {
	if def.IsControl() {
		e.logger.Warn("nested control-flow node skipped", "node_id", scope+"."+def.ID, "type", def.Type)
		return nil
	}

	node, err := e.registry.Get(def.Type)
	if err != nil {
		return fmt.Errorf("resolve sub-node %q: %w", scope+"."+def.ID, err)
	}

	inputs := ResolveInputs(def, st, scope)
	return e.invokeNode(ctx, scope+"."+def.ID, node, def, inputs, iteration, st, sink)
}
