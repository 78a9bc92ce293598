package engine

import (
	"fmt"

	"github.com/shaiso/Cascade/internal/domain"
)

// ExecutionOrder вычисляет порядок выполнения top-level узлов.
//
// Алгоритм Кана по connections: подсчёт входящих степеней, затем
// извлечение узлов с нулевой степенью в порядке обнаружения (FIFO).
//
// Политика fail-open: при цикле или при ссылке на неизвестный узел
// возвращается порядок объявления вместе с ErrCyclicOrder, чтобы
// вызывающая сторона залогировала причину деградации. Отсутствие
// connections — штатный случай, не ошибка. Порядок носит
// рекомендательный характер для выполнения и не является критичным
// для безопасности, поэтому деградация предпочтительнее отказа.
func ExecutionOrder(spec *domain.WorkflowSpec) ([]string, error) {
	declared := make([]string, len(spec.Nodes))
	for i := range spec.Nodes {
		declared[i] = spec.Nodes[i].ID
	}

	if len(spec.Connections) == 0 {
		return declared, nil
	}

	inDegree := make(map[string]int, len(declared))
	adjacency := make(map[string][]string, len(declared))
	for _, id := range declared {
		inDegree[id] = 0
	}

	for _, conn := range spec.Connections {
		// Ссылка на неизвестный узел делает граф недостоверным.
		if _, ok := inDegree[conn.From]; !ok {
			return declared, fmt.Errorf("%w: %q -> %q", ErrCyclicOrder, conn.From, conn.To)
		}
		if _, ok := inDegree[conn.To]; !ok {
			return declared, fmt.Errorf("%w: %q -> %q", ErrCyclicOrder, conn.From, conn.To)
		}
		adjacency[conn.From] = append(adjacency[conn.From], conn.To)
		inDegree[conn.To]++
	}

	queue := make([]string, 0, len(declared))
	for _, id := range declared {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(declared))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, next := range adjacency[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	// Не все узлы вошли в порядок — в графе цикл.
	if len(order) != len(declared) {
		return declared, ErrCyclicOrder
	}

	return order, nil
}
