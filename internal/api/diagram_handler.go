package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shaiso/Cascade/internal/config"
	"github.com/shaiso/Cascade/internal/diagram"
	"github.com/shaiso/Cascade/internal/domain"
)

// loadSpecFromRequest читает LoadWorkflowRequest и парсит файл
// спецификации. Ошибки отвечает сам; nil означает, что ответ уже
// отправлен.
func (h *Handler) loadSpecFromRequest(w http.ResponseWriter, r *http.Request) *domain.WorkflowSpec {
	var req LoadWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body: "+err.Error())
		return nil
	}
	if req.ConfigPath == "" {
		BadRequest(w, "config_path is required")
		return nil
	}

	spec, err := config.Load(req.ConfigPath)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrNotFound):
			BadRequest(w, "config file not found: "+req.ConfigPath)
		case errors.Is(err, config.ErrUnsupportedFormat):
			Error(w, http.StatusBadRequest, ErrCodeUnsupportedFormat, err.Error())
		default:
			BadRequest(w, "parse config: "+err.Error())
		}
		return nil
	}
	return spec
}

// DiagramMermaid генерирует Mermaid-текст из файла спецификации.
// Загрузка workflow в память не требуется.
//
// POST /api/v1/diagram/mermaid
func (h *Handler) DiagramMermaid(w http.ResponseWriter, r *http.Request) {
	spec := h.loadSpecFromRequest(w, r)
	if spec == nil {
		return
	}
	Success(w, MermaidResponse{Mermaid: diagram.Mermaid(spec)})
}

// WorkflowDiagramMermaid генерирует Mermaid-текст для загруженного
// workflow.
//
// GET /api/v1/workflows/{id}/diagram/mermaid
func (h *Handler) WorkflowDiagramMermaid(w http.ResponseWriter, r *http.Request) {
	wf, err := h.store.Get(r.PathValue("id"))
	if HandleStoreError(w, h.logger, err, "workflow not found") {
		return
	}
	Success(w, MermaidResponse{Mermaid: diagram.Mermaid(wf.Spec)})
}

// DiagramHTML генерирует HTML-страницу с диаграммой из файла
// спецификации.
//
// POST /api/v1/diagram/html
func (h *Handler) DiagramHTML(w http.ResponseWriter, r *http.Request) {
	spec := h.loadSpecFromRequest(w, r)
	if spec == nil {
		return
	}
	writeHTML(w, diagram.HTMLViewer(diagram.Mermaid(spec)))
}

// WorkflowDiagramHTML генерирует HTML-страницу с диаграммой
// загруженного workflow.
//
// GET /api/v1/workflows/{id}/diagram/html
func (h *Handler) WorkflowDiagramHTML(w http.ResponseWriter, r *http.Request) {
	wf, err := h.store.Get(r.PathValue("id"))
	if HandleStoreError(w, h.logger, err, "workflow not found") {
		return
	}
	writeHTML(w, diagram.HTMLViewer(diagram.Mermaid(wf.Spec)))
}

func writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}
