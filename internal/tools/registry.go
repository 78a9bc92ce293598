// Package tools — реестр вспомогательных функций, доступных узлу "tool".
//
// Инструмент — чистая функция над именованными параметрами. Узел "tool"
// находит функцию по имени и передаёт ей params из своих входов.
package tools

import (
	"errors"
	"fmt"
	"sort"
)

// ErrToolNotFound — инструмент не найден в реестре.
var ErrToolNotFound = errors.New("tool not found")

// Func — сигнатура инструмента: именованные параметры → результат.
type Func func(params map[string]any) (any, error)

// registry — встроенные инструменты.
var registry = map[string]Func{
	"json_to_md_table": JSONToMarkdownTable,
	"json_pretty":      JSONPretty,
	"doc_parse":        DocParse,
	"load_prompt":      LoadPrompt,
	"rag_search":       RAGSearch,
	"config_parse":     ConfigParse,
}

// Lookup возвращает инструмент по имени.
func Lookup(name string) (Func, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return fn, nil
}

// Names возвращает отсортированный список имён инструментов.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// paramString извлекает строковый параметр.
func paramString(params map[string]any, key string) string {
	if s, ok := params[key].(string); ok {
		return s
	}
	return ""
}
