// Package store хранит загруженные workflow вместе с построенными
// движками. Используется API и планировщиком.
package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/engine"
)

// ErrWorkflowNotFound — workflow с таким ID не загружен.
var ErrWorkflowNotFound = errors.New("workflow not found")

// Workflow — загруженная спецификация с готовым к запускам движком.
type Workflow struct {
	Spec   *domain.WorkflowSpec
	Engine *engine.Engine
}

// Store — реестр загруженных workflow. Реализации потокобезопасны.
type Store interface {
	// Put сохраняет workflow, перезаписывая предыдущий с тем же ID.
	Put(wf *Workflow)

	// Get возвращает workflow по ID.
	Get(id string) (*Workflow, error)

	// List возвращает все workflow, отсортированные по ID.
	List() []*Workflow

	// Remove удаляет workflow. Возвращает ErrWorkflowNotFound,
	// если ID не загружен.
	Remove(id string) error
}

// MemoryStore — хранилище в памяти.
type MemoryStore struct {
	mu        sync.RWMutex
	workflows map[string]*Workflow
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workflows: make(map[string]*Workflow),
	}
}

// Put сохраняет workflow, перезаписывая предыдущий с тем же ID.
func (s *MemoryStore) Put(wf *Workflow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[wf.Spec.ID] = wf
}

// Get возвращает workflow по ID.
func (s *MemoryStore) Get(id string) (*Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wf, ok := s.workflows[id]
	if !ok {
		return nil, ErrWorkflowNotFound
	}
	return wf, nil
}

// List возвращает все workflow, отсортированные по ID.
func (s *MemoryStore) List() []*Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		list = append(list, wf)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Spec.ID < list[j].Spec.ID
	})
	return list
}

// Remove удаляет workflow.
func (s *MemoryStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workflows[id]; !ok {
		return ErrWorkflowNotFound
	}
	delete(s.workflows, id)
	return nil
}
