package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shaiso/Cascade/internal/nodes"
	"github.com/shaiso/Cascade/internal/scheduler"
	"github.com/shaiso/Cascade/internal/store"
)

// faultNode — узел, всегда завершающийся ошибкой.
type faultNode struct{}

func (n *faultNode) Type() string         { return "always_fail" }
func (n *faultNode) Schema() nodes.Schema { return nodes.Schema{} }

func (n *faultNode) Execute(ctx context.Context, req *nodes.Request, emit nodes.EmitFunc) error {
	return context.DeadlineExceeded
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	registry := nodes.DefaultRegistry()
	registry.Register(&faultNode{})

	st := store.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewHandler(Config{
		Store:     st,
		Registry:  registry,
		Scheduler: scheduler.New(scheduler.Config{Store: st, Logger: logger}),
		Logger:    logger,
	})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const demoYAML = `
id: demo
name: Demo
nodes:
  - id: hello
    type: echo
    inputs:
      text: hi
`

func loadDemo(t *testing.T, mux *http.ServeMux) {
	t.Helper()

	path := writeConfig(t, "demo.yaml", demoYAML)
	body := `{"config_path": "` + path + `"}`

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/workflows", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("load workflow: статус %d, тело %s", rec.Code, rec.Body.String())
	}
}

func TestLoadAndListWorkflows(t *testing.T) {
	mux := newTestMux(t)
	loadDemo(t, mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workflows", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("list workflows: статус %d", rec.Code)
	}

	var resp struct {
		Data  []WorkflowSummary `json:"data"`
		Total int               `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || resp.Data[0].ID != "demo" || resp.Data[0].NodeCount != 1 {
		t.Errorf("list = %+v, ожидался один workflow demo", resp)
	}
}

func TestLoadWorkflowErrors(t *testing.T) {
	mux := newTestMux(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   ErrorCode
	}{
		{
			name:       "пустой config_path",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "файл не существует",
			body:       `{"config_path": "/no/such/file.yaml"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeBadRequest,
		},
		{
			name:       "неподдерживаемый формат",
			body:       `{"config_path": "` + writeConfig(t, "wf.toml", "id = 'x'") + `"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeUnsupportedFormat,
		},
		{
			name:       "невалидная спецификация",
			body:       `{"config_path": "` + writeConfig(t, "bad.yaml", "id: bad\nnodes:\n  - id: x\n    type: ghost\n") + `"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/workflows", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("статус %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("код ошибки %q, want %q", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestExecuteWorkflowSSE(t *testing.T) {
	mux := newTestMux(t)
	loadDemo(t, mux)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/workflows/demo/execute", strings.NewReader(`{"inputs": {"text": "bonjour"}}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("execute: статус %d, тело %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "data: ") {
		t.Errorf("SSE-поток без data-фреймов:\n%s", body)
	}
	// Начальные входы достаются первому узлу.
	if !strings.Contains(body, "Echo: bonjour") {
		t.Errorf("поток не содержит результата узла:\n%s", body)
	}
	if strings.Contains(body, "event: error") {
		t.Errorf("штатный запуск не должен содержать error-фрейм:\n%s", body)
	}
}

func TestExecuteWorkflowNotFound(t *testing.T) {
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/workflows/ghost/execute", strings.NewReader(`{}`)))

	if rec.Code != http.StatusNotFound {
		t.Errorf("статус %d, want 404", rec.Code)
	}
}

func TestExecuteWorkflowFaultFrame(t *testing.T) {
	mux := newTestMux(t)

	path := writeConfig(t, "faulty.yaml", "id: faulty\nnodes:\n  - id: boom\n    type: always_fail\n")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/workflows",
		strings.NewReader(`{"config_path": "`+path+`"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("load faulty: статус %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/workflows/faulty/execute", strings.NewReader(`{}`)))

	body := rec.Body.String()
	if !strings.Contains(body, "event: error") {
		t.Errorf("ошибка узла должна уходить фреймом event: error:\n%s", body)
	}
}

func TestDiagramEndpoints(t *testing.T) {
	mux := newTestMux(t)
	loadDemo(t, mux)

	t.Run("mermaid загруженного workflow", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workflows/demo/diagram/mermaid", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("статус %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "graph TD") {
			t.Errorf("ответ не содержит Mermaid-текста: %s", rec.Body.String())
		}
	})

	t.Run("html из файла", func(t *testing.T) {
		path := writeConfig(t, "demo.yaml", demoYAML)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/diagram/html",
			strings.NewReader(`{"config_path": "`+path+`"}`)))

		if rec.Code != http.StatusOK {
			t.Fatalf("статус %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("Content-Type = %q, want text/html", ct)
		}
		if !strings.Contains(rec.Body.String(), "mermaid") {
			t.Error("HTML не содержит mermaid-рендера")
		}
	})

	t.Run("mermaid незагруженного workflow", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workflows/ghost/diagram/mermaid", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("статус %d, want 404", rec.Code)
		}
	})
}

func TestScheduleEndpoints(t *testing.T) {
	mux := newTestMux(t)
	loadDemo(t, mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/workflows/demo/schedules",
		strings.NewReader(`{"interval_sec": 3600}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create schedule: статус %d, тело %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data scheduler.Schedule `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode schedule: %v", err)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/schedules", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), created.Data.ID.String()) {
		t.Errorf("list schedules: статус %d, тело %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/schedules/"+created.Data.ID.String(), nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete schedule: статус %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/schedules/"+created.Data.ID.String(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("повторный delete: статус %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/workflows/ghost/schedules",
		strings.NewReader(`{"interval_sec": 60}`)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("schedule для незагруженного workflow: статус %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/workflows/demo/schedules",
		strings.NewReader(`{"cron_expr": "nonsense"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("невалидный cron: статус %d, want 400", rec.Code)
	}
}
