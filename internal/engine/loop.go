package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/nodes"
)

// DefaultMaxIterations — потолок итераций цикла, если max_iterations
// не задан. Защита от бесконечных циклов при вечно истинном условии.
const DefaultMaxIterations = 1000

// IterationSuffix — суффикс синтетического ключа счётчика итераций.
// Подузлы читают его как "$loopId.iteration".
const IterationSuffix = ".iteration"

// runLoop выполняет узел цикла.
//
// Перед каждой итерацией счётчик публикуется в состояние, затем
// выполняется тело (линейно или конкурентно), затем вычисляется
// условие продолжения в области цикла. Отсутствующее условие означает
// ровно max_iterations итераций.
//
// По завершении в состояние под ключом цикла фиксируется сводка
// {"result": {"iteration": N, "completed": true}}, а в поток уходит
// событие с самой сводкой.
func (e *Engine) runLoop(ctx context.Context, def *domain.NodeDef, st *State, sink eventSink) error {
	maxIter := def.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	iterKey := def.ID + IterationSuffix
	iteration := 0

	for iteration < maxIter {
		iteration++
		st.Set(iterKey, map[string]any{"result": iteration})

		var err error
		if def.Concurrent {
			err = e.runIterationConcurrent(ctx, def, iteration, st, sink)
		} else {
			err = e.runIterationSequential(ctx, def, iteration, st, sink)
		}
		if err != nil {
			return err
		}

		if def.Condition != nil && !EvaluateCondition(def.Condition, st, def.ID) {
			break
		}
	}

	summary := map[string]any{"iteration": iteration, "completed": true}
	st.Set(def.ID, map[string]any{"result": summary})
	return sink(domain.Event{NodeID: def.ID, Output: summary})
}

// runIterationSequential выполняет подузлы итерации по порядку объявления.
func (e *Engine) runIterationSequential(ctx context.Context, def *domain.NodeDef, iteration int, st *State, sink eventSink) error {
	for i := range def.Nodes {
		if err := e.runSubNode(ctx, def.ID, &def.Nodes[i], iteration, st, sink); err != nil {
			return err
		}
	}
	return nil
}

// emission — одна запись подузла в конкурентной итерации.
type emission struct {
	key string
	out nodes.Output
}

// runIterationConcurrent выполняет подузлы итерации параллельно.
//
// Все подузлы пишут в общий канал; потребитель (горутина запуска)
// непрерывно дренирует его, фиксируя записи в состоянии и транслируя
// события по мере производства. Входы каждого подузла разрешаются по
// состоянию на момент старта итерации.
//
// Барьер: итерация завершается только после завершения всех подузлов.
// Последние записи подузлов фиксируются в состоянии после барьера,
// чтобы условие цикла наблюдало согласованный снимок итерации.
// Первая ошибка подузла отменяет остальных через контекст errgroup
// и завершает итерацию этой ошибкой.
func (e *Engine) runIterationConcurrent(ctx context.Context, def *domain.NodeDef, iteration int, st *State, sink eventSink) error {
	out := make(chan emission)
	finals := make([]emission, len(def.Nodes))

	g, gctx := errgroup.WithContext(ctx)

	for i := range def.Nodes {
		i := i
		sub := &def.Nodes[i]

		g.Go(func() error {
			if sub.IsControl() {
				e.logger.Warn("nested control-flow node skipped", "node_id", def.ID+"."+sub.ID, "type", sub.Type)
				return nil
			}

			node, err := e.registry.Get(sub.Type)
			if err != nil {
				return fmt.Errorf("resolve sub-node %q: %w", def.ID+"."+sub.ID, err)
			}

			key := def.ID + "." + sub.ID
			req := &nodes.Request{
				NodeID: key,
				Config: sub.Config,
				Inputs: ResolveInputs(sub, st, def.ID),
			}

			var last nodes.Output
			err = node.Execute(gctx, req, func(o nodes.Output) error {
				last = o
				select {
				case out <- emission{key: key, out: o}:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
			if err != nil {
				return err
			}

			finals[i] = emission{key: key, out: last}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		close(out)
	}()

	for em := range out {
		st.Set(em.key, em.out)
		if err := sink(domain.Event{NodeID: em.key, Output: em.out, LoopIteration: iteration}); err != nil {
			// Потребитель отменил запуск; дожидаемся остановки подузлов.
			<-done
			return err
		}
	}

	if err := <-done; err != nil {
		return err
	}

	for _, fin := range finals {
		if fin.out != nil {
			st.Set(fin.key, fin.out)
		}
	}
	return nil
}
