package nodes

import (
	"context"
	"errors"
	"fmt"
)

// Ошибки узлов.
var (
	// ErrNodeNotFound — тип узла не найден в реестре.
	ErrNodeNotFound = errors.New("node type not found")

	// ErrNodeCancelled — выполнение узла отменено.
	ErrNodeCancelled = errors.New("node execution cancelled")
)

// Output — одна запись, произведённая узлом.
// По конвенции содержит поле "result"; "output" — допустимый синоним.
type Output map[string]any

// EmitFunc принимает очередную запись узла.
//
// Возвращённая ошибка означает, что потребитель больше не принимает
// записи (обычно из-за отмены запуска); узел должен прекратить работу
// и вернуть эту ошибку.
type EmitFunc func(Output) error

// Request — входные данные для выполнения узла.
type Request struct {
	// NodeID — идентификатор узла в workflow (для подузлов — "parent.child").
	NodeID string

	// Config — конфигурация узла из WorkflowSpec.
	Config map[string]any

	// Inputs — уже разрешённые входы (после Reference Resolver).
	Inputs map[string]any
}

// Schema — декларативное описание входов/выходов узла.
//
// Используется для документации и валидации на стороне вызывающего;
// движок сам схемы не проверяет.
type Schema struct {
	// Inputs — имя входа → описание типа.
	Inputs map[string]string

	// Outputs — имя выхода → описание типа.
	Outputs map[string]string
}

// Node — контракт исполняемого узла.
//
// Execute потребляет разрешённые входы и производит ленивую упорядоченную
// последовательность записей через emit. Каждый вызов emit — одна запись;
// узел может вызывать emit много раз (потоковый вывод).
type Node interface {
	// Type возвращает тип узла (ключ в реестре).
	Type() string

	// Schema возвращает описание входов/выходов.
	Schema() Schema

	// Execute выполняет узел. Узел обязан уважать ctx.Done()
	// и ошибку, возвращённую emit.
	Execute(ctx context.Context, req *Request, emit EmitFunc) error
}

// InputString извлекает строковый вход. Mapping-значения сводятся
// по конвенции: result, затем text, затем question.
func InputString(inputs map[string]any, key string) string {
	v, ok := inputs[key]
	if !ok || v == nil {
		return ""
	}

	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		for _, k := range []string{"result", "text", "question"} {
			if s, ok := t[k].(string); ok {
				return s
			}
		}
		return Stringify(t)
	default:
		return Stringify(t)
	}
}

// ConfigString извлекает строковое значение из конфига узла.
func ConfigString(config map[string]any, key string) string {
	if v, ok := config[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Stringify приводит произвольное значение к строке.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// ConfigInt извлекает числовое значение из конфига узла.
// YAML даёт int, JSON — float64; оба приводятся.
func ConfigInt(config map[string]any, key string) int {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}
