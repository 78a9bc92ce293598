package engine

import (
	"testing"
)

func exprState() *State {
	st := NewState(nil)
	st.Set("counter", map[string]any{"result": 3})
	st.Set("status", map[string]any{"result": "done"})
	st.Set("plan", map[string]any{
		"result": []any{"a", "b", "c"},
		"ready":  true,
	})
	st.Set("loop1.iteration", map[string]any{"result": 4})
	return st
}

func TestEvaluateExpression(t *testing.T) {
	st := exprState()

	tests := []struct {
		name  string
		expr  string
		scope string
		want  any
	}{
		{"числовой литерал", "42", "", 42.0},
		{"строковый литерал", "'done'", "", "done"},
		{"двойные кавычки", `"done"`, "", "done"},
		{"true", "true", "", true},
		{"null", "null", "", nil},
		{"идентификатор по конвенции result", "counter", "", 3.0},
		{"маркер допускается", "$counter", "", 3.0},
		{"путь с индексом", "plan.result[1]", "", "b"},
		{"поле записи", "plan.ready", "", true},
		{"сравнение", "counter < 10", "", true},
		{"сравнение ложное", "counter >= 10", "", false},
		{"равенство строк", "status == 'done'", "", true},
		{"и", "counter == 3 && status == 'done'", "", true},
		{"или", "counter == 9 || plan.ready", "", true},
		{"отрицание", "!plan.ready", "", false},
		{"унарный минус", "-counter < 0", "", true},
		{"скобки", "(counter < 1 || counter > 2) && true", "", true},
		{"область цикла", "iteration < 5", "loop1", true},
		{"неизвестный идентификатор даёт nil", "ghost", "", nil},
		{"сравнение с unset ложно", "ghost == 3", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateExpression(tt.expr, st, tt.scope)
			if !looseEqual(got, tt.want) {
				t.Errorf("EvaluateExpression(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluateExpressionMalformed(t *testing.T) {
	st := exprState()

	// Ошибки лексики и разбора деградируют к nil, не к панике.
	exprs := []string{
		"",
		"counter +",
		"counter + 1",
		"(counter",
		"'unterminated",
		"counter == ",
		"1 2",
		"@env",
		"len(plan)",
		"counter; drop",
	}

	for _, expr := range exprs {
		if got := EvaluateExpression(expr, st, ""); got != nil {
			t.Errorf("EvaluateExpression(%q) = %v, want nil", expr, got)
		}
	}
}
