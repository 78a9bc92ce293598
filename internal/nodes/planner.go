package nodes

import (
	"context"
	"fmt"
	"strings"
)

// NodeTypeTaskPlanner — тип узла планирования задач.
const NodeTypeTaskPlanner = "task_planner"

// defaultMaxTasks — количество задач по умолчанию.
const defaultMaxTasks = 3

// TaskPlannerNode — узел планирования: разбивает вопрос на несколько
// поисковых задач.
//
// Конфигурация:
//
//	config:
//	  max_tasks: 3
type TaskPlannerNode struct{}

// NewTaskPlannerNode создаёт новый TaskPlannerNode.
func NewTaskPlannerNode() *TaskPlannerNode {
	return &TaskPlannerNode{}
}

// Type возвращает тип узла.
func (n *TaskPlannerNode) Type() string {
	return NodeTypeTaskPlanner
}

// Schema возвращает описание входов/выходов.
func (n *TaskPlannerNode) Schema() Schema {
	return Schema{
		Inputs:  map[string]string{"question": "string"},
		Outputs: map[string]string{"result": "[]string", "tasks": "[]string"},
	}
}

// Execute производит одну запись со списком задач.
func (n *TaskPlannerNode) Execute(ctx context.Context, req *Request, emit EmitFunc) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
	default:
	}

	question := InputString(req.Inputs, "question")

	maxTasks := ConfigInt(req.Config, "max_tasks")
	if maxTasks <= 0 {
		maxTasks = defaultMaxTasks
	}

	tasks := planTasks(question)
	if len(tasks) > maxTasks {
		tasks = tasks[:maxTasks]
	}

	return emit(Output{
		"result":  tasks,
		"tasks":   tasks,
		"node_id": req.NodeID,
	})
}

// planTasks подбирает задачи по ключевым словам вопроса.
func planTasks(question string) []any {
	lower := strings.ToLower(question)

	switch {
	case strings.Contains(lower, "python"):
		return []any{
			"Find Python basic syntax",
			"Find Python best practices",
			"Find Python common pitfalls",
		}
	case strings.Contains(lower, "api"):
		return []any{
			"Find API design guidelines",
			"Find API usage examples",
			"Find API testing approaches",
		}
	default:
		return []any{
			fmt.Sprintf("Task 1: find information about %s", question),
			fmt.Sprintf("Task 2: analyze solutions for %s", question),
			fmt.Sprintf("Task 3: summarize best practices for %s", question),
		}
	}
}
