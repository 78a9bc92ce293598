package domain

// WorkflowSpec — декларативное описание рабочего процесса.
//
// WorkflowSpec — это "программа" для Cascade: упорядоченный список узлов
// и связи между ними. Спецификация загружается один раз (YAML/JSON),
// после чего движок её только читает.
type WorkflowSpec struct {
	// ID — идентификатор workflow. Если не задан, используется "default".
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Name — человекочитаемое имя workflow.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Description — описание назначения workflow.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Nodes — список узлов в порядке объявления.
	// Порядок объявления используется как fallback при отсутствии connections.
	Nodes []NodeDef `json:"nodes" yaml:"nodes"`

	// Connections — направленные рёбра зависимостей между top-level узлами.
	// Используются только для вычисления порядка выполнения.
	Connections []Connection `json:"connections,omitempty" yaml:"connections,omitempty"`
}

// Connection — ребро зависимости: узел To выполняется после узла From.
type Connection struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Типы управляющих узлов. Все остальные типы — обычные узлы,
// разрешаемые через реестр реализаций.
const (
	NodeTypeLoop   = "loop"
	NodeTypeSwitch = "switch"
)

// NodeDef — объявление узла в workflow.
type NodeDef struct {
	// ID — идентификатор узла. Top-level ID уникальны глобально;
	// ID внутри loop/switch уникальны в рамках контейнера и снаружи
	// адресуются как "containerId.childId".
	ID string `json:"id" yaml:"id"`

	// Type — тип узла: "loop", "switch" или тип из реестра узлов.
	Type string `json:"type" yaml:"type"`

	// Config — конфигурация узла. Движок её не интерпретирует,
	// она принадлежит реализации узла.
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`

	// Inputs — спецификации входов: литералы, $-ссылки на состояние
	// или вложенные map/list из тех и других.
	Inputs map[string]any `json:"inputs,omitempty" yaml:"inputs,omitempty"`

	// Nodes — подграф для loop (выполняется каждую итерацию).
	Nodes []NodeDef `json:"nodes,omitempty" yaml:"nodes,omitempty"`

	// Condition — условие продолжения (loop) или значение диспетчеризации
	// (switch). Либо map вида {type: compare|expression, ...}, либо
	// $-ссылка, либо литерал.
	Condition any `json:"condition,omitempty" yaml:"condition,omitempty"`

	// MaxIterations — верхняя граница итераций loop. 0 означает default (1000).
	MaxIterations int `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty"`

	// Concurrent — если true, подузлы loop одной итерации выполняются
	// конкурентно.
	Concurrent bool `json:"concurrent,omitempty" yaml:"concurrent,omitempty"`

	// Cases — ветки switch, проверяются в порядке объявления.
	Cases []CaseDef `json:"cases,omitempty" yaml:"cases,omitempty"`

	// Default — ветка switch при отсутствии совпадений.
	Default *CaseDef `json:"default,omitempty" yaml:"default,omitempty"`
}

// CaseDef — одна ветка switch.
type CaseDef struct {
	// Value — значение для сравнения с вычисленным condition
	// (только равенство).
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Nodes — подузлы, выполняемые при совпадении.
	Nodes []NodeDef `json:"nodes,omitempty" yaml:"nodes,omitempty"`
}

// IsControl сообщает, является ли узел управляющим (loop/switch).
func (d *NodeDef) IsControl() bool {
	return d.Type == NodeTypeLoop || d.Type == NodeTypeSwitch
}
