package engine

import "errors"

// Ошибки валидации WorkflowSpec.
var (
	// ErrEmptyNodes — workflow не содержит узлов.
	ErrEmptyNodes = errors.New("workflow spec has no nodes")

	// ErrEmptyNodeID — узел не имеет ID.
	ErrEmptyNodeID = errors.New("node has empty ID")

	// ErrDuplicateNodeID — несколько узлов с одинаковым ID в одной области.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDottedNodeID — объявленный ID содержит точку.
	// Точка зарезервирована для синтезированных ключей "parent.child",
	// запрет исключает коллизии между объявленными и синтезированными ключами.
	ErrDottedNodeID = errors.New("node ID must not contain '.'")

	// ErrUnknownNodeType — тип узла не зарегистрирован в реестре.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrEmptyCases — switch не содержит ни cases, ни default.
	ErrEmptyCases = errors.New("switch has neither cases nor default")

	// ErrEmptyLoopBody — loop не содержит подузлов.
	ErrEmptyLoopBody = errors.New("loop has no sub-nodes")
)

// Ошибки выполнения.
var (
	// ErrCyclicOrder — connections содержат цикл или ссылку на
	// неизвестный узел. Не фатальна: порядок выполнения деградирует
	// к порядку объявления.
	ErrCyclicOrder = errors.New("connections contain a cycle or unknown node")

	// ErrRunCancelled — запуск отменён потребителем.
	ErrRunCancelled = errors.New("run cancelled")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	NodeID  string // ID узла, где произошла ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(nodeID, field, message string, err error) *ValidationError {
	return &ValidationError{
		NodeID:  nodeID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
