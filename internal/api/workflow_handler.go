package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Cascade/internal/config"
	"github.com/shaiso/Cascade/internal/engine"
	"github.com/shaiso/Cascade/internal/store"
	"github.com/shaiso/Cascade/internal/telemetry"
)

// LoadWorkflow загружает workflow из файла конфигурации.
//
// POST /api/v1/workflows
func (h *Handler) LoadWorkflow(w http.ResponseWriter, r *http.Request) {
	var req LoadWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if req.ConfigPath == "" {
		BadRequest(w, "config_path is required")
		return
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
		return
	}

	// Спецификация без явного id получает id "default".
	if spec.ID == "" {
		spec.ID = "default"
	}

	eng, err := engine.New(spec, h.registry, h.logger)
	if err != nil {
		ValidationFailed(w, err.Error())
		return
	}

	h.store.Put(&store.Workflow{Spec: spec, Engine: eng})

	if h.workflowRepo != nil {
		if err := h.workflowRepo.Put(r.Context(), spec); err != nil {
			// Персистентность вторична: workflow уже загружен в память.
			h.logger.Warn("failed to persist workflow", "workflow_id", spec.ID, "error", err)
		}
	}

	h.logger.Info("workflow loaded", "workflow_id", spec.ID, "nodes", len(spec.Nodes))
	Created(w, LoadWorkflowResponse{Status: "success", WorkflowID: spec.ID})
}

// ListWorkflows возвращает краткие описания загруженных workflow.
//
// GET /api/v1/workflows
func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows := h.store.List()

	summaries := make([]WorkflowSummary, 0, len(workflows))
	for _, wf := range workflows {
		summaries = append(summaries, WorkflowSummary{
			ID:          wf.Spec.ID,
			Name:        wf.Spec.Name,
			Description: wf.Spec.Description,
			NodeCount:   len(wf.Spec.Nodes),
		})
	}

	List(w, summaries, len(summaries))
}

// GetWorkflow возвращает полную спецификацию загруженного workflow.
//
// GET /api/v1/workflows/{id}
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := h.store.Get(r.PathValue("id"))
	if HandleStoreError(w, h.logger, err, "workflow not found") {
		return
	}
	Success(w, wf.Spec)
}

// DeleteWorkflow выгружает workflow из памяти.
//
// DELETE /api/v1/workflows/{id}
func (h *Handler) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Remove(id); HandleStoreError(w, h.logger, err, "workflow not found") {
		return
	}

	h.logger.Info("workflow unloaded", "workflow_id", id)
	NoContent(w)
}

// ExecuteWorkflow запускает workflow и стримит события как SSE.
//
// POST /api/v1/workflows/{id}/execute
//
// Каждое событие — один SSE-фрейм с JSON. Терминальная ошибка узла
// уходит фреймом "event: error", после чего поток закрывается.
func (h *Handler) ExecuteWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := h.store.Get(r.PathValue("id"))
	if HandleStoreError(w, h.logger, err, "workflow not found") {
		return
	}

	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		InternalError(w, h.logger, fmt.Errorf("response writer does not support streaming"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	workflowID := wf.Spec.ID
	runID := uuid.New().String()
	logger := telemetry.WithRunID(telemetry.WithWorkflowID(h.logger, workflowID), runID)

	logger.Info("run started")
	telemetry.RunsStarted.WithLabelValues(workflowID).Inc()
	started := time.Now()

	var failed bool
	for ev := range wf.Engine.Execute(r.Context(), req.Inputs) {
		telemetry.EventsEmitted.Inc()

		if h.publisher != nil {
			if err := h.publisher.PublishEvent(r.Context(), workflowID, runID, ev); err != nil {
				logger.Warn("failed to mirror event", "error", err)
			}
		}

		data, err := json.Marshal(ev)
		if err != nil {
			logger.Error("failed to marshal event", "node_id", ev.NodeID, "error", err)
			continue
		}

		if ev.IsError() {
			failed = true
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", data)
		} else {
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
		flusher.Flush()
	}

	telemetry.RunDuration.WithLabelValues(workflowID).Observe(time.Since(started).Seconds())
	if failed {
		telemetry.RunsFailed.WithLabelValues(workflowID).Inc()
		logger.Warn("run failed", "duration", time.Since(started))
	} else {
		telemetry.RunsCompleted.WithLabelValues(workflowID).Inc()
		logger.Info("run completed", "duration", time.Since(started))
	}
}
