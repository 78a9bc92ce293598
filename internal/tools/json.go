package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// JSONToMarkdownTable рендерит параметр "data" (JSON-строка или уже
// распарсенное значение) в Markdown-таблицу.
//
// Mapping → таблица key/value; список mapping'ов → таблица по ключам
// первого элемента; остальное → одна колонка value.
func JSONToMarkdownTable(params map[string]any) (any, error) {
	data := params["data"]
	if s, ok := data.(string); ok {
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		data = parsed
	}

	var headers []string
	var rows [][]string

	switch t := data.(type) {
	case map[string]any:
		headers = []string{"key", "value"}
		// Ключи в порядке сортировки для детерминированного вывода.
		for _, k := range sortedKeys(t) {
			rows = append(rows, []string{k, stringify(t[k])})
		}

	case []any:
		if first, ok := firstMapping(t); ok {
			headers = sortedKeys(first)
			for _, item := range t {
				m, _ := item.(map[string]any)
				row := make([]string, len(headers))
				for i, h := range headers {
					row[i] = stringify(m[h])
				}
				rows = append(rows, row)
			}
			break
		}
		headers = []string{"value"}
		for _, item := range t {
			rows = append(rows, []string{stringify(item)})
		}

	default:
		headers = []string{"value"}
		rows = append(rows, []string{stringify(data)})
	}

	lines := []string{
		"| " + strings.Join(headers, " | ") + " |",
		"| " + strings.Join(repeat("---", len(headers)), " | ") + " |",
	}
	for _, row := range rows {
		lines = append(lines, "| "+strings.Join(row, " | ")+" |")
	}

	return strings.Join(lines, "\n"), nil
}

// JSONPretty форматирует параметр "data" в JSON с отступами.
// Невалидная JSON-строка возвращается без изменений.
func JSONPretty(params map[string]any) (any, error) {
	data := params["data"]

	if s, ok := data.(string); ok {
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return s, nil
		}
		data = parsed
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return string(out), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstMapping(items []any) (map[string]any, bool) {
	if len(items) == 0 {
		return nil, false
	}
	m, ok := items[0].(map[string]any)
	return m, ok
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
