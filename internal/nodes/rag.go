package nodes

import (
	"context"
	"fmt"
)

// NodeTypeRAG — тип узла извлечения знаний.
const NodeTypeRAG = "rag"

// knowledgeBase — встроенная "база знаний" для демонстрации.
// В реальном развёртывании здесь был бы векторный поиск.
var knowledgeBase = map[string]string{
	"Find Python basic syntax":    "Python is an interpreted, object-oriented, high-level language supporting multiple paradigms.",
	"Find Python best practices":  "Follow PEP 8, use type hints, write unit tests and keep the code simple.",
	"Find Python common pitfalls": "Common pitfalls include memory management, the GIL and performance tuning.",
	"Find API design guidelines":  "RESTful APIs should use standard HTTP methods, return JSON and report errors clearly.",
	"Find API usage examples":     "With the requests library: response = requests.get(url, params=params)",
}

// RAGNode — узел извлечения: подбирает по задаче фрагмент знаний.
type RAGNode struct{}

// NewRAGNode создаёт новый RAGNode.
func NewRAGNode() *RAGNode {
	return &RAGNode{}
}

// Type возвращает тип узла.
func (n *RAGNode) Type() string {
	return NodeTypeRAG
}

// Schema возвращает описание входов/выходов.
func (n *RAGNode) Schema() Schema {
	return Schema{
		Inputs:  map[string]string{"task": "string"},
		Outputs: map[string]string{"result": "string", "rag_result": "string", "task": "string"},
	}
}

// Execute производит одну запись с результатом извлечения.
func (n *RAGNode) Execute(ctx context.Context, req *Request, emit EmitFunc) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
	default:
	}

	task := InputString(req.Inputs, "task")

	ragResult, ok := knowledgeBase[task]
	if !ok {
		ragResult = fmt.Sprintf(
			"Information about %q: simulated retrieval result; a real deployment would query a vector store.",
			task,
		)
	}

	return emit(Output{
		"result":     ragResult,
		"rag_result": ragResult,
		"task":       task,
		"node_id":    req.NodeID,
	})
}
