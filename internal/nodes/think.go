package nodes

import (
	"context"
	"fmt"
)

// NodeTypeThink — тип узла анализа вопроса.
const NodeTypeThink = "think"

// thinkPrefix — префикс "мысли". SummarizeNode использует его,
// чтобы извлечь исходный вопрос из результата ThinkNode.
const thinkPrefix = "Thinking about: "

// ThinkNode — узел анализа: формирует абстрактное описание вопроса
// перед планированием задач.
type ThinkNode struct{}

// NewThinkNode создаёт новый ThinkNode.
func NewThinkNode() *ThinkNode {
	return &ThinkNode{}
}

// Type возвращает тип узла.
func (n *ThinkNode) Type() string {
	return NodeTypeThink
}

// Schema возвращает описание входов/выходов.
func (n *ThinkNode) Schema() Schema {
	return Schema{
		Inputs:  map[string]string{"question": "string"},
		Outputs: map[string]string{"result": "string", "thought": "string", "question": "string"},
	}
}

// Execute производит одну запись с "мыслью" по вопросу.
func (n *ThinkNode) Execute(ctx context.Context, req *Request, emit EmitFunc) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
	default:
	}

	// Вопрос может прийти строкой или записью предыдущего узла.
	question := InputString(req.Inputs, "question")

	thought := thinkPrefix + question + ", identifying key points and required information."

	return emit(Output{
		"result":   thought,
		"thought":  thought,
		"question": question,
		"node_id":  req.NodeID,
	})
}
