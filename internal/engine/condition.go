package engine

import (
	"reflect"
	"strings"
)

// EvaluateCondition вычисляет условие продолжения/ветвления и сводит
// результат к bool.
//
// Поддерживаются две формы:
//   - {"type": "compare", "left": ..., "operator": ..., "right": ...}
//   - {"type": "expression", "expression": "..."}
//
// Операнды compare разрешаются как input-спецификации: "$"-ссылки
// читаются из состояния, остальное трактуется как литерал.
// Неизвестная форма или неизвестный оператор дают false.
func EvaluateCondition(cond any, st *State, scope string) bool {
	m, ok := cond.(map[string]any)
	if !ok {
		return false
	}

	switch m["type"] {
	case "compare":
		op, _ := m["operator"].(string)
		left := Resolve(m["left"], st, scope)
		right := Resolve(m["right"], st, scope)
		return compare(left, op, right)

	case "expression":
		expr, _ := m["expression"].(string)
		return truthy(EvaluateExpression(expr, st, scope))

	default:
		return false
	}
}

// ConditionValue разрешает условие switch в значение для сопоставления
// с cases. Строка с "$" читается из состояния, форма expression
// вычисляется, прочее возвращается как есть.
func ConditionValue(cond any, st *State, scope string) any {
	switch t := cond.(type) {
	case string:
		if strings.HasPrefix(t, RefMarker) {
			return resolveRef(t, st, scope)
		}
		return t

	case map[string]any:
		if expr, ok := t["expression"].(string); ok {
			return EvaluateExpression(expr, st, scope)
		}
		return t

	default:
		return cond
	}
}

// compare применяет оператор сравнения к разрешённым операндам.
func compare(left any, op string, right any) bool {
	switch op {
	case "==":
		return looseEqual(left, right)
	case "!=":
		return !looseEqual(left, right)
	case ">":
		c, ok := compareOrder(left, right)
		return ok && c > 0
	case "<":
		c, ok := compareOrder(left, right)
		return ok && c < 0
	case ">=":
		c, ok := compareOrder(left, right)
		return ok && c >= 0
	case "<=":
		c, ok := compareOrder(left, right)
		return ok && c <= 0
	case "in":
		return contains(right, left)
	case "not_in":
		return !contains(right, left)
	default:
		return false
	}
}

// looseEqual сравнивает значения с числовой коэрцией:
// int(3) и float64(3.0) считаются равными. Прочие типы сравниваются
// глубоко.
func looseEqual(left, right any) bool {
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if lok && rok {
		return lf == rf
	}
	return reflect.DeepEqual(left, right)
}

// compareOrder упорядочивает пару значений: числа по величине, строки
// лексикографически. Несравнимая пара даёт ok=false.
func compareOrder(left, right any) (int, bool) {
	lf, lok := toFloat(left)
	rf, rok := toFloat(right)
	if lok && rok {
		switch {
		case lf < rf:
			return -1, true
		case lf > rf:
			return 1, true
		default:
			return 0, true
		}
	}

	ls, lok2 := left.(string)
	rs, rok2 := right.(string)
	if lok2 && rok2 {
		return strings.Compare(ls, rs), true
	}

	return 0, false
}

// contains проверяет вхождение item в container:
// в последовательность по looseEqual, в строку как подстроку.
func contains(container, item any) bool {
	switch c := container.(type) {
	case []any:
		for _, v := range c {
			if looseEqual(v, item) {
				return true
			}
		}
		return false
	case string:
		s, ok := item.(string)
		return ok && strings.Contains(c, s)
	default:
		return false
	}
}

// toFloat приводит числовые типы, приходящие из JSON/YAML-декодирования,
// к float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// truthy сводит произвольное значение к bool: nil, false, ноль,
// пустая строка и пустые коллекции ложны, остальное истинно.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
		return true
	}
}
