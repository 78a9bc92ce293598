package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
		Metrics(),
	)

	// Workflows
	mux.Handle("POST /api/v1/workflows", chain(http.HandlerFunc(h.LoadWorkflow)))
	mux.Handle("GET /api/v1/workflows", chain(http.HandlerFunc(h.ListWorkflows)))
	mux.Handle("GET /api/v1/workflows/{id}", chain(http.HandlerFunc(h.GetWorkflow)))
	mux.Handle("DELETE /api/v1/workflows/{id}", chain(http.HandlerFunc(h.DeleteWorkflow)))
	mux.Handle("POST /api/v1/workflows/{id}/execute", chain(http.HandlerFunc(h.ExecuteWorkflow)))

	// Diagrams
	mux.Handle("POST /api/v1/diagram/mermaid", chain(http.HandlerFunc(h.DiagramMermaid)))
	mux.Handle("POST /api/v1/diagram/html", chain(http.HandlerFunc(h.DiagramHTML)))
	mux.Handle("GET /api/v1/workflows/{id}/diagram/mermaid", chain(http.HandlerFunc(h.WorkflowDiagramMermaid)))
	mux.Handle("GET /api/v1/workflows/{id}/diagram/html", chain(http.HandlerFunc(h.WorkflowDiagramHTML)))

	// Schedules
	mux.Handle("POST /api/v1/workflows/{id}/schedules", chain(http.HandlerFunc(h.CreateSchedule)))
	mux.Handle("GET /api/v1/schedules", chain(http.HandlerFunc(h.ListSchedules)))
	mux.Handle("DELETE /api/v1/schedules/{id}", chain(http.HandlerFunc(h.DeleteSchedule)))
}
