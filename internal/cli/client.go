package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// WorkflowSummary — краткое описание workflow из API.
type WorkflowSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	NodeCount   int    `json:"node_count"`
}

// LoadWorkflowResponse — результат загрузки workflow.
type LoadWorkflowResponse struct {
	Status     string `json:"status"`
	WorkflowID string `json:"workflow_id"`
}

// MermaidResponse — Mermaid-текст диаграммы из API.
type MermaidResponse struct {
	Mermaid string `json:"mermaid"`
}

// ScheduleResponse — расписание из API.
type ScheduleResponse struct {
	ID          string         `json:"id"`
	WorkflowID  string         `json:"workflow_id"`
	CronExpr    string         `json:"cron_expr,omitempty"`
	IntervalSec int            `json:"interval_sec,omitempty"`
	Timezone    string         `json:"timezone,omitempty"`
	Inputs      map[string]any `json:"inputs,omitempty"`
	Enabled     bool           `json:"enabled"`
	NextDueAt   string         `json:"next_due_at,omitempty"`
	LastRunID   string         `json:"last_run_id,omitempty"`
	CreatedAt   string         `json:"created_at"`
}

// Event — событие выполнения из SSE-потока.
type Event struct {
	NodeID        string         `json:"node_id"`
	Output        map[string]any `json:"output,omitempty"`
	LoopIteration int            `json:"loop_iteration,omitempty"`
	IsFinal       bool           `json:"is_final"`
	Error         string         `json:"error,omitempty"`
}

// --- Request types ---

// LoadWorkflowRequest — загрузка workflow из файла на стороне сервера.
type LoadWorkflowRequest struct {
	ConfigPath string `json:"config_path"`
}

// ExecuteRequest — запуск workflow.
type ExecuteRequest struct {
	Inputs map[string]any `json:"inputs,omitempty"`
}

// CreateScheduleRequest — создание расписания.
type CreateScheduleRequest struct {
	CronExpr    string         `json:"cron_expr,omitempty"`
	IntervalSec int            `json:"interval_sec,omitempty"`
	Timezone    string         `json:"timezone,omitempty"`
	Inputs      map[string]any `json:"inputs,omitempty"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Cascade API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API. Таймаут не ставится: выполнение
// workflow стримится и может длиться произвольно долго.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// --- Workflows ---

// LoadWorkflow загружает workflow из файла конфигурации на сервере.
func (c *Client) LoadWorkflow(configPath string) (*LoadWorkflowResponse, error) {
	var resp LoadWorkflowResponse
	err := c.post("/api/v1/workflows", LoadWorkflowRequest{ConfigPath: configPath}, &resp)
	return &resp, err
}

// ListWorkflows возвращает загруженные workflow.
func (c *Client) ListWorkflows() ([]WorkflowSummary, error) {
	var workflows []WorkflowSummary
	err := c.list("/api/v1/workflows", &workflows)
	return workflows, err
}

// GetWorkflow возвращает спецификацию workflow как JSON.
func (c *Client) GetWorkflow(id string) (json.RawMessage, error) {
	var spec json.RawMessage
	err := c.get("/api/v1/workflows/"+id, &spec)
	return spec, err
}

// DeleteWorkflow выгружает workflow.
func (c *Client) DeleteWorkflow(id string) error {
	return c.delete("/api/v1/workflows/" + id)
}

// Execute запускает workflow и вызывает fn для каждого события
// SSE-потока. Возвращает ошибку после терминального error-события.
func (c *Client) Execute(id string, inputs map[string]any, fn func(Event)) error {
	body, err := json.Marshal(ExecuteRequest{Inputs: inputs})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/workflows/"+id+"/execute", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	return consumeSSE(resp.Body, fn)
}

// consumeSSE читает SSE-фреймы и декодирует data-строки в события.
func consumeSSE(r io.Reader, fn func(Event)) error {
	var failed string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var ev Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}

		fn(ev)
		if ev.Error != "" {
			failed = ev.Error
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}

	if failed != "" {
		return fmt.Errorf("run failed: %s", failed)
	}
	return nil
}

// --- Diagrams ---

// DiagramMermaid генерирует Mermaid-текст из файла на сервере.
func (c *Client) DiagramMermaid(configPath string) (string, error) {
	var resp MermaidResponse
	err := c.post("/api/v1/diagram/mermaid", LoadWorkflowRequest{ConfigPath: configPath}, &resp)
	return resp.Mermaid, err
}

// WorkflowDiagramMermaid генерирует Mermaid-текст загруженного workflow.
func (c *Client) WorkflowDiagramMermaid(id string) (string, error) {
	var resp MermaidResponse
	err := c.get("/api/v1/workflows/"+id+"/diagram/mermaid", &resp)
	return resp.Mermaid, err
}

// WorkflowDiagramHTML возвращает HTML-страницу с диаграммой.
func (c *Client) WorkflowDiagramHTML(id string) (string, error) {
	resp, err := c.do(http.MethodGet, "/api/v1/workflows/"+id+"/diagram/html", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return "", err
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}
	return string(html), nil
}

// --- Schedules ---

// CreateSchedule создаёт расписание для workflow.
func (c *Client) CreateSchedule(workflowID string, req CreateScheduleRequest) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.post("/api/v1/workflows/"+workflowID+"/schedules", req, &schedule)
	return &schedule, err
}

// ListSchedules возвращает все расписания.
func (c *Client) ListSchedules() ([]ScheduleResponse, error) {
	var schedules []ScheduleResponse
	err := c.list("/api/v1/schedules", &schedules)
	return schedules, err
}

// DeleteSchedule удаляет расписание.
func (c *Client) DeleteSchedule(id string) error {
	return c.delete("/api/v1/schedules/" + id)
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, result any) error {
	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if lr.Data == nil {
		return nil
	}
	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
