package nodes

import (
	"fmt"
	"sort"
	"sync"
)

// Registry — реестр типов узлов.
//
// Позволяет регистрировать и получать реализации Node по типу.
// Потокобезопасен.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]Node
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		nodes: make(map[string]Node),
	}
}

// DefaultRegistry создаёт реестр со всеми встроенными узлами.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NewEchoNode())
	r.Register(NewTransformNode())
	r.Register(NewStreamNode())
	r.Register(NewThinkNode())
	r.Register(NewTaskPlannerNode())
	r.Register(NewRAGNode())
	r.Register(NewSummarizeNode())
	r.Register(NewToolNode())

	return r
}

// Register регистрирует узел в реестре.
// Если узел с таким типом уже существует, он будет перезаписан.
func (r *Registry) Register(node Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[node.Type()] = node
}

// Get возвращает узел по типу.
// Возвращает ErrNodeNotFound, если тип не зарегистрирован.
func (r *Registry) Get(nodeType string) (Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, exists := r.nodes[nodeType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeType)
	}

	return node, nil
}

// Has проверяет, зарегистрирован ли тип узла.
func (r *Registry) Has(nodeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.nodes[nodeType]
	return exists
}

// Types возвращает отсортированный список зарегистрированных типов.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.nodes))
	for t := range r.nodes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
