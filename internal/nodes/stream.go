package nodes

import (
	"context"
	"fmt"
)

// NodeTypeStream — тип потокового узла.
const NodeTypeStream = "stream"

// StreamNode — потоковый узел: разбивает текст на символы и выдаёт
// каждый символ отдельной записью.
//
// Демонстрирует ленивый многократный emit: каждая запись немедленно
// попадает в исходящий поток и в состояние запуска.
type StreamNode struct{}

// NewStreamNode создаёт новый StreamNode.
func NewStreamNode() *StreamNode {
	return &StreamNode{}
}

// Type возвращает тип узла.
func (n *StreamNode) Type() string {
	return NodeTypeStream
}

// Schema возвращает описание входов/выходов.
func (n *StreamNode) Schema() Schema {
	return Schema{
		Inputs:  map[string]string{"text": "string"},
		Outputs: map[string]string{"result": "string", "chunk_index": "int"},
	}
}

// Execute выдаёт по одной записи на символ входного текста.
func (n *StreamNode) Execute(ctx context.Context, req *Request, emit EmitFunc) error {
	text := InputString(req.Inputs, "text")

	for i, r := range []rune(text) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
		default:
		}

		if err := emit(Output{
			"result":      string(r),
			"chunk_index": i,
			"node_id":     req.NodeID,
		}); err != nil {
			return err
		}
	}

	return nil
}
