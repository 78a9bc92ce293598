package nodes

import (
	"context"
	"fmt"

	"github.com/shaiso/Cascade/internal/tools"
)

// NodeTypeTool — тип универсального инструментального узла.
const NodeTypeTool = "tool"

// ToolNode — универсальный узел: вызывает функцию из реестра инструментов.
//
// Имя инструмента берётся из входа "tool_name", либо из конфигурации.
// Неизвестный инструмент и ошибка вызова не роняют запуск: узел выдаёт
// запись с полем "error".
type ToolNode struct{}

// NewToolNode создаёт новый ToolNode.
func NewToolNode() *ToolNode {
	return &ToolNode{}
}

// Type возвращает тип узла.
func (n *ToolNode) Type() string {
	return NodeTypeTool
}

// Schema возвращает описание входов/выходов.
func (n *ToolNode) Schema() Schema {
	return Schema{
		Inputs:  map[string]string{"tool_name": "string", "params": "map"},
		Outputs: map[string]string{"result": "any", "tool_name": "string"},
	}
}

// Execute вызывает инструмент и производит одну запись с результатом.
func (n *ToolNode) Execute(ctx context.Context, req *Request, emit EmitFunc) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
	default:
	}

	toolName := InputString(req.Inputs, "tool_name")
	if toolName == "" {
		toolName = ConfigString(req.Config, "tool_name")
	}

	params, _ := req.Inputs["params"].(map[string]any)

	fn, err := tools.Lookup(toolName)
	if err != nil {
		return emit(Output{
			"result":  nil,
			"error":   fmt.Sprintf("tool %q not found", toolName),
			"node_id": req.NodeID,
		})
	}

	result, err := fn(params)
	if err != nil {
		return emit(Output{
			"result":  nil,
			"error":   err.Error(),
			"node_id": req.NodeID,
		})
	}

	return emit(Output{
		"result":    result,
		"tool_name": toolName,
		"node_id":   req.NodeID,
	})
}
