package tools

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		if _, err := Lookup(name); err != nil {
			t.Errorf("registered tool %s should resolve: %v", name, err)
		}
	}

	_, err := Lookup("no_such_tool")
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("expected ErrToolNotFound, got %v", err)
	}
}

func TestJSONToMarkdownTable(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		contains []string
	}{
		{
			name:     "mapping",
			data:     map[string]any{"a": 1, "b": "x"},
			contains: []string{"| key | value |", "| a | 1 |", "| b | x |"},
		},
		{
			name:     "list of mappings",
			data:     []any{map[string]any{"id": 1.0, "name": "first"}, map[string]any{"id": 2.0, "name": "second"}},
			contains: []string{"| id | name |", "| 1 | first |", "| 2 | second |"},
		},
		{
			name:     "scalar list",
			data:     []any{"x", "y"},
			contains: []string{"| value |", "| x |", "| y |"},
		},
		{
			name:     "json string",
			data:     `{"k": "v"}`,
			contains: []string{"| k | v |"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := JSONToMarkdownTable(map[string]any{"data": tt.data})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			table := out.(string)
			for _, want := range tt.contains {
				if !strings.Contains(table, want) {
					t.Errorf("table should contain %q:\n%s", want, table)
				}
			}
		})
	}
}

func TestJSONPretty(t *testing.T) {
	out, err := JSONPretty(map[string]any{"data": `{"a":1}`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.(string), "\n  \"a\": 1\n") {
		t.Errorf("unexpected pretty output: %q", out)
	}

	// Невалидный JSON возвращается как есть.
	out, err = JSONPretty(map[string]any{"data": "not json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "not json" {
		t.Errorf("invalid json should pass through, got %q", out)
	}
}

func TestDocParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	out, err := DocParse(map[string]any{"url": "file://" + path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	chunks := out.([]any)
	if len(chunks) != 1 || chunks[0] != "content" {
		t.Errorf("unexpected chunks: %v", chunks)
	}

	out, err = DocParse(map[string]any{"url": "https://example.com/doc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.([]any)[0] != "remote_doc:https://example.com/doc" {
		t.Errorf("unexpected remote marker: %v", out)
	}
}

func TestRAGSearch(t *testing.T) {
	out, err := RAGSearch(map[string]any{
		"question":   "what is X",
		"prompt":     "Answer briefly.",
		"doc_chunks": []any{"chunk one", "chunk two"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := out.(string)
	for _, want := range []string{"Answer briefly.", "Question: what is X", "chunk one\n\nchunk two"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt should contain %q:\n%s", want, text)
		}
	}
}

func TestConfigParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	content := "prompt_path: p.txt\nretriever:\n  top_k: 2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	out, err := ConfigParse(map[string]any{"config_path": path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := out.(map[string]any)
	if m["prompt_path"] != "p.txt" {
		t.Errorf("unexpected prompt_path: %v", m["prompt_path"])
	}
	if _, ok := m["retriever"].(map[string]any); !ok {
		t.Errorf("retriever should be a mapping")
	}
}
