package domain

// Event — одна единица исходящего потока выполнения.
//
// Событие публикуется на каждую запись, произведённую узлом (или подузлом),
// в порядке производства. Последнее событие упавшего запуска несёт Error
// вместо Output.
type Event struct {
	// NodeID — идентификатор узла-источника (для подузлов — "parent.child").
	NodeID string `json:"node_id"`

	// Output — произведённая запись (по конвенции содержит поле "result").
	Output map[string]any `json:"output,omitempty"`

	// LoopIteration — номер итерации loop (начиная с 1), если событие
	// произведено внутри loop.
	LoopIteration int `json:"loop_iteration,omitempty"`

	// IsFinal зарезервировано для маркировки конца потока.
	// Сейчас всегда false: завершение обозначается закрытием потока.
	IsFinal bool `json:"is_final"`

	// Error — текст ошибки узла. Непустой Error означает аварийное
	// завершение запуска; после такого события поток закрывается.
	Error string `json:"error,omitempty"`
}

// IsError сообщает, является ли событие терминальной ошибкой запуска.
func (e Event) IsError() bool {
	return e.Error != ""
}
