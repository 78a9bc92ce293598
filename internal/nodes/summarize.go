package nodes

import (
	"context"
	"fmt"
	"strings"
)

// NodeTypeSummarize — тип итогового узла.
const NodeTypeSummarize = "summarize"

// SummarizeNode — итоговый узел: сводит результаты RAG в ответ на вопрос.
type SummarizeNode struct{}

// NewSummarizeNode создаёт новый SummarizeNode.
func NewSummarizeNode() *SummarizeNode {
	return &SummarizeNode{}
}

// Type возвращает тип узла.
func (n *SummarizeNode) Type() string {
	return NodeTypeSummarize
}

// Schema возвращает описание входов/выходов.
func (n *SummarizeNode) Schema() Schema {
	return Schema{
		Inputs:  map[string]string{"question": "string", "rag_results": "[]string"},
		Outputs: map[string]string{"result": "string", "final_answer": "string"},
	}
}

// Execute производит одну запись с итоговым ответом.
func (n *SummarizeNode) Execute(ctx context.Context, req *Request, emit EmitFunc) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
	default:
	}

	question := originalQuestion(InputString(req.Inputs, "question"))
	results := ragResults(req.Inputs["rag_results"])

	var sb strings.Builder
	fmt.Fprintf(&sb, "Answering %q based on the following information:\n\n", question)

	valid := 0
	for _, r := range results {
		text := resultText(r)
		if text == "" {
			continue
		}
		valid++
		fmt.Fprintf(&sb, "%d. %s\n", valid, text)
	}

	var final string
	if valid == 0 {
		final = fmt.Sprintf("No relevant information found to answer %q", question)
	} else {
		fmt.Fprintf(&sb,
			"\nSummary: combining the %d items above, the answer to %q depends on picking the right tools for the concrete scenario.",
			valid, question,
		)
		final = sb.String()
	}

	return emit(Output{
		"result":       final,
		"final_answer": final,
		"node_id":      req.NodeID,
	})
}

// originalQuestion извлекает исходный вопрос из "мысли" ThinkNode.
func originalQuestion(question string) string {
	if idx := strings.Index(question, thinkPrefix); idx >= 0 {
		rest := question[idx+len(thinkPrefix):]
		if cut := strings.Index(rest, ","); cut >= 0 {
			rest = rest[:cut]
		}
		return strings.TrimSpace(rest)
	}
	return question
}

// ragResults нормализует вход rag_results к списку.
func ragResults(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []any{t}
	case []any:
		return t
	default:
		return nil
	}
}

// resultText извлекает текст из одного элемента rag_results.
func resultText(r any) string {
	if r == nil {
		return ""
	}
	if m, ok := r.(map[string]any); ok {
		if s, ok := m["rag_result"].(string); ok {
			return s
		}
		if s, ok := m["result"].(string); ok {
			return s
		}
		return Stringify(m)
	}
	return Stringify(r)
}
