package nodes

import (
	"context"
	"fmt"
)

// NodeTypeTransform — тип узла трансформации.
const NodeTypeTransform = "transform"

// TransformNode — узел трансформации: добавляет к тексту префикс
// из конфигурации.
//
// Конфигурация:
//
//	config:
//	  prefix: ">> "
type TransformNode struct{}

// NewTransformNode создаёт новый TransformNode.
func NewTransformNode() *TransformNode {
	return &TransformNode{}
}

// Type возвращает тип узла.
func (n *TransformNode) Type() string {
	return NodeTypeTransform
}

// Schema возвращает описание входов/выходов.
func (n *TransformNode) Schema() Schema {
	return Schema{
		Inputs:  map[string]string{"text": "string"},
		Outputs: map[string]string{"result": "string"},
	}
}

// Execute производит одну запись с префиксованным текстом.
func (n *TransformNode) Execute(ctx context.Context, req *Request, emit EmitFunc) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
	default:
	}

	text := InputString(req.Inputs, "text")
	prefix := ConfigString(req.Config, "prefix")

	return emit(Output{
		"result":  prefix + text,
		"node_id": req.NodeID,
	})
}
