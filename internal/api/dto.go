package api

// LoadWorkflowRequest — тело запроса на загрузку workflow из файла.
type LoadWorkflowRequest struct {
	// ConfigPath — путь к YAML/JSON файлу спецификации.
	ConfigPath string `json:"config_path"`
}

// LoadWorkflowResponse — результат загрузки workflow.
type LoadWorkflowResponse struct {
	Status     string `json:"status"`
	WorkflowID string `json:"workflow_id"`
}

// ExecuteRequest — тело запроса на запуск workflow.
type ExecuteRequest struct {
	// Inputs — начальные входы запуска (попадают под ключ "_initial").
	Inputs map[string]any `json:"inputs"`
}

// WorkflowSummary — краткое описание загруженного workflow.
type WorkflowSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	NodeCount   int    `json:"node_count"`
}

// MermaidResponse — ответ с Mermaid-текстом диаграммы.
type MermaidResponse struct {
	Mermaid string `json:"mermaid"`
}

// CreateScheduleRequest — тело запроса на создание расписания.
// Задаётся либо CronExpr, либо IntervalSec.
type CreateScheduleRequest struct {
	CronExpr    string         `json:"cron_expr,omitempty"`
	IntervalSec int            `json:"interval_sec,omitempty"`
	Timezone    string         `json:"timezone,omitempty"`
	Inputs      map[string]any `json:"inputs,omitempty"`
}
