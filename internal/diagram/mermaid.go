// Package diagram генерирует Mermaid-диаграммы по WorkflowSpec.
package diagram

import (
	"fmt"
	"strings"

	"github.com/shaiso/Cascade/internal/domain"
)

// Mermaid строит flowchart-определение (graph TD) по спецификации.
//
// Обычные узлы рендерятся прямоугольниками с типом, loop —
// прямоугольником с пометкой [LOOP] и развёрнутыми подузлами,
// switch — ромбом с рёбрами, подписанными значениями ветвей.
// ID подузлов в диаграмме составляются через "_", чтобы не
// конфликтовать с синтаксисом Mermaid.
func Mermaid(spec *domain.WorkflowSpec) string {
	lines := []string{"graph TD"}

	for i := range spec.Nodes {
		node := &spec.Nodes[i]
		switch node.Type {
		case domain.NodeTypeLoop:
			lines = appendLoop(lines, node)
		case domain.NodeTypeSwitch:
			lines = appendSwitch(lines, node)
		default:
			lines = append(lines, fmt.Sprintf("    %s[\"%s\\n(%s)\"]", node.ID, node.ID, nodeType(node)))
		}
	}

	for _, conn := range spec.Connections {
		if conn.From != "" && conn.To != "" {
			lines = append(lines, fmt.Sprintf("    %s --> %s", conn.From, conn.To))
		}
	}

	return strings.Join(lines, "\n")
}

func appendLoop(lines []string, node *domain.NodeDef) []string {
	lines = append(lines, fmt.Sprintf("    %s[\"%s\\n[LOOP]\"]", node.ID, node.ID))

	for i := range node.Nodes {
		sub := &node.Nodes[i]
		subID := node.ID + "_" + sub.ID
		lines = append(lines, fmt.Sprintf("    %s[\"%s\\n(%s)\"]", subID, sub.ID, nodeType(sub)))
		lines = append(lines, fmt.Sprintf("    %s --> %s", node.ID, subID))
	}
	return lines
}

func appendSwitch(lines []string, node *domain.NodeDef) []string {
	lines = append(lines, fmt.Sprintf("    %s{\"%s\\n[SWITCH]\"}", node.ID, node.ID))

	for i := range node.Cases {
		c := &node.Cases[i]
		label := caseLabel(c.Value, i)
		for j := range c.Nodes {
			sub := &c.Nodes[j]
			subID := node.ID + "_" + label + "_" + sub.ID
			lines = append(lines, fmt.Sprintf("    %s[\"%s\\n(%s)\"]", subID, sub.ID, nodeType(sub)))
			lines = append(lines, fmt.Sprintf("    %s -->|\"%s\"| %s", node.ID, label, subID))
		}
	}

	if node.Default != nil {
		for j := range node.Default.Nodes {
			sub := &node.Default.Nodes[j]
			subID := node.ID + "_default_" + sub.ID
			lines = append(lines, fmt.Sprintf("    %s[\"%s\\n(%s)\"]", subID, sub.ID, nodeType(sub)))
			lines = append(lines, fmt.Sprintf("    %s -->|\"default\"| %s", node.ID, subID))
		}
	}
	return lines
}

func caseLabel(value any, index int) string {
	if value == nil {
		return fmt.Sprintf("case%d", index)
	}
	return fmt.Sprintf("%v", value)
}

func nodeType(node *domain.NodeDef) string {
	if node.Type == "" {
		return "unknown"
	}
	return node.Type
}

// HTMLViewer оборачивает Mermaid-текст в самодостаточную HTML-страницу
// с рендером через CDN-сборку mermaid.
func HTMLViewer(mermaid string) string {
	return `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Workflow Diagram</title>
    <script type="module">
        import mermaid from 'https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs';
        mermaid.initialize({ startOnLoad: true, theme: 'default' });
    </script>
</head>
<body>
    <div class="mermaid">
` + mermaid + `
    </div>
</body>
</html>`
}
