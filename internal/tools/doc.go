package tools

import (
	"fmt"
	"os"
	"strings"

	"github.com/shaiso/Cascade/internal/config"
)

// DocParse читает документ по параметру "url" и возвращает список чанков.
//
// Поддерживаются file:// пути и обычные локальные пути; http(s)-ссылки
// не скачиваются, вместо этого возвращается маркер "remote_doc:<url>".
func DocParse(params map[string]any) (any, error) {
	url := paramString(params, "url")

	switch {
	case strings.HasPrefix(url, "file://"):
		data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		return []any{string(data)}, nil

	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return []any{"remote_doc:" + url}, nil

	default:
		if data, err := os.ReadFile(url); err == nil {
			return []any{string(data)}, nil
		}
		return []any{url}, nil
	}
}

// LoadPrompt читает текст промпта по параметру "prompt_path".
func LoadPrompt(params map[string]any) (any, error) {
	path := paramString(params, "prompt_path")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt: %w", err)
	}
	return string(data), nil
}

// RAGSearch собирает промпт для поиска: шаблон + вопрос + контекст
// из чанков документа.
//
// Параметры: "question", "doc_chunks" (строка или список), "prompt".
func RAGSearch(params map[string]any) (any, error) {
	question := paramString(params, "question")
	prompt := paramString(params, "prompt")

	var chunks []string
	switch t := params["doc_chunks"].(type) {
	case string:
		chunks = []string{t}
	case []any:
		for _, c := range t {
			chunks = append(chunks, stringify(c))
		}
	}

	merged := strings.Join(chunks, "\n\n")
	return fmt.Sprintf("%s\n\nQuestion: %s\n\nContext:\n%s", prompt, question, merged), nil
}

// ConfigParse парсит внешний конфиг по параметру "config_path" и
// извлекает путь к промпту и настройки ретривера.
func ConfigParse(params map[string]any) (any, error) {
	path := paramString(params, "config_path")

	raw, err := config.LoadRaw(path)
	if err != nil {
		return nil, err
	}

	var promptPath any
	for _, key := range []string{"prompt_path", "promptFile", "prompt_file"} {
		if v, ok := raw[key]; ok && v != nil {
			promptPath = v
			break
		}
	}

	retriever := map[string]any{}
	for _, key := range []string{"retriever", "rag"} {
		if m, ok := raw[key].(map[string]any); ok {
			retriever = m
			break
		}
	}

	return map[string]any{
		"raw":         raw,
		"prompt_path": promptPath,
		"retriever":   retriever,
	}, nil
}
