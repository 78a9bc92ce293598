package engine

import "sync"

// InitialKey — ключ состояния с начальными входами запуска.
// Узлы могут ссылаться на них как "$_initial.field".
const InitialKey = "_initial"

// State — состояние одного запуска workflow.
//
// Единственный разделяемый мутабельный ресурс запуска: отображение
// "ключ состояния → последняя произведённая запись". Ключ — top-level ID,
// "parent.child" для подузлов или синтетический "loopId.iteration".
//
// Записи только добавляются/перезаписываются, никогда не удаляются.
// Каждая фиксация атомарна: читатель никогда не видит частично
// записанную запись. Читатели в конкурентных подузлах могут наблюдать
// состояние разных моментов времени — это принятая политика, а не гонка.
type State struct {
	mu     sync.RWMutex
	values map[string]map[string]any
}

// NewState создаёт состояние запуска. Ненулевые initial сохраняются
// под ключом InitialKey.
func NewState(initial map[string]any) *State {
	s := &State{
		values: make(map[string]map[string]any),
	}
	if len(initial) > 0 {
		s.values[InitialKey] = initial
	}
	return s
}

// Get возвращает последнюю запись по ключу.
func (s *State) Get(key string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set фиксирует запись по ключу, перезаписывая предыдущую.
func (s *State) Set(key string, output map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = output
}

// Keys возвращает снимок всех ключей состояния.
func (s *State) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}
