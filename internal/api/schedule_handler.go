package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaiso/Cascade/internal/scheduler"
	"github.com/shaiso/Cascade/internal/store"
)

// CreateSchedule регистрирует расписание для загруженного workflow.
//
// POST /api/v1/workflows/{id}/schedules
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	sched, err := h.scheduler.Add(&scheduler.Schedule{
		WorkflowID:  r.PathValue("id"),
		CronExpr:    req.CronExpr,
		IntervalSec: req.IntervalSec,
		Timezone:    req.Timezone,
		Inputs:      req.Inputs,
	})
	if err != nil {
		if errors.Is(err, store.ErrWorkflowNotFound) {
			NotFound(w, "workflow not found")
			return
		}
		BadRequest(w, err.Error())
		return
	}

	Created(w, sched)
}

// ListSchedules возвращает все расписания.
//
// GET /api/v1/schedules
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules := h.scheduler.List()
	List(w, schedules, len(schedules))
}

// DeleteSchedule удаляет расписание.
//
// DELETE /api/v1/schedules/{id}
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid schedule id")
		return
	}

	if !h.scheduler.Remove(id) {
		NotFound(w, "schedule not found")
		return
	}
	NoContent(w)
}
