package nodes

import (
	"context"
	"fmt"
)

// NodeTypeEcho — тип эхо-узла.
const NodeTypeEcho = "echo"

// EchoNode — эхо-узел: возвращает входной текст с префиксом "Echo: ".
//
// Простейший узел, полезен для smoke-тестов workflow.
type EchoNode struct{}

// NewEchoNode создаёт новый EchoNode.
func NewEchoNode() *EchoNode {
	return &EchoNode{}
}

// Type возвращает тип узла.
func (n *EchoNode) Type() string {
	return NodeTypeEcho
}

// Schema возвращает описание входов/выходов.
func (n *EchoNode) Schema() Schema {
	return Schema{
		Inputs:  map[string]string{"text": "string"},
		Outputs: map[string]string{"result": "string"},
	}
}

// Execute производит одну запись с эхо-текстом.
func (n *EchoNode) Execute(ctx context.Context, req *Request, emit EmitFunc) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
	default:
	}

	text := InputString(req.Inputs, "text")

	return emit(Output{
		"result":  "Echo: " + text,
		"node_id": req.NodeID,
	})
}
