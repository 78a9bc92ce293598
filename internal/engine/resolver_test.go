package engine

import (
	"reflect"
	"testing"

	"github.com/shaiso/Cascade/internal/domain"
)

func testState() *State {
	st := NewState(map[string]any{"question": "зачем"})
	st.Set("plan", map[string]any{
		"result": []any{"task one", "task two", "task three"},
		"meta":   map[string]any{"count": 3},
	})
	st.Set("fetch", map[string]any{
		"output": "raw body",
	})
	st.Set("raw", map[string]any{
		"status": "ok",
		"items":  []any{map[string]any{"id": 1}, map[string]any{"id": 2}},
	})
	st.Set("loop1.step", map[string]any{"result": "scoped"})
	st.Set("batch", map[string]any{
		"result": map[string]any{"items": []any{10, 20, 30}},
	})
	st.Set("short", map[string]any{
		"result": map[string]any{"items": []any{10}},
	})
	return st
}

func TestResolveLiterals(t *testing.T) {
	st := testState()

	tests := []struct {
		name string
		spec any
		want any
	}{
		{"строка без маркера", "plain text", "plain text"},
		{"число", 42, 42},
		{"bool", true, true},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.spec, st, "")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%v) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestResolveRefs(t *testing.T) {
	st := testState()

	tests := []struct {
		name  string
		ref   string
		scope string
		want  any
	}{
		{"голая ссылка берёт result", "$plan", "", []any{"task one", "task two", "task three"}},
		{"голая ссылка берёт output без result", "$fetch", "", "raw body"},
		{"голая ссылка без result и output даёт запись", "$raw", "", map[string]any{
			"status": "ok",
			"items":  []any{map[string]any{"id": 1}, map[string]any{"id": 2}},
		}},
		{"путь по полям", "$raw.status", "", "ok"},
		{"индексация result[1]", "$plan.result[1]", "", "task two"},
		{"вложенный путь с индексом", "$raw.items[0].id", "", 1},
		{"путь сквозь result", "$batch.items[1]", "", 20},
		{"поле сквозь result", "$batch.items", "", []any{10, 20, 30}},
		{"путь сквозь result за границей", "$short.items[1]", "", nil},
		{"индекс за границей", "$plan.result[9]", "", nil},
		{"отрицательный индекс", "$plan.result[-1]", "", nil},
		{"индексация не-последовательности", "$raw.status[0]", "", nil},
		{"неизвестный источник", "$missing", "", nil},
		{"неизвестное поле", "$plan.absent", "", nil},
		{"путь сквозь не-mapping", "$raw.status.deep", "", nil},
		{"начальные входы", "$_initial.question", "", "зачем"},
		{"повтор поиска в области", "$step", "loop1", "scoped"},
		{"составной ключ подузла", "$loop1.step", "", "scoped"},
		{"путь после составного ключа", "$loop1.step.result", "", "scoped"},
		{"область не затеняет top-level", "$plan.meta.count", "loop1", 3},
		{"пустая ссылка", "$", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.ref, st, tt.scope)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q, scope=%q) = %v, want %v", tt.ref, tt.scope, got, tt.want)
			}
		})
	}
}

func TestResolveRecursive(t *testing.T) {
	st := testState()

	spec := map[string]any{
		"status": "$raw.status",
		"nested": map[string]any{"first": "$plan.result[0]"},
		"list":   []any{"$fetch", "literal", 7},
	}

	got := Resolve(spec, st, "")
	want := map[string]any{
		"status": "ok",
		"nested": map[string]any{"first": "task one"},
		"list":   []any{"raw body", "literal", 7},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}

func TestResolveInputs(t *testing.T) {
	st := testState()

	def := &domain.NodeDef{
		ID:   "answer",
		Type: "echo",
		Inputs: map[string]any{
			"question": "$_initial.question",
			"static":   "value",
		},
	}
	got := ResolveInputs(def, st, "")
	if got["question"] != "зачем" {
		t.Errorf("inputs[question] = %v, want зачем", got["question"])
	}
	if got["static"] != "value" {
		t.Errorf("inputs[static] = %v, want value", got["static"])
	}
}

func TestSplitIndexSegment(t *testing.T) {
	tests := []struct {
		seg     string
		key     string
		idx     int
		indexed bool
	}{
		{"items[2]", "items", 2, true},
		{"[0]", "", 0, true},
		{"plain", "", 0, false},
		{"items[x]", "", 0, false},
		{"items[", "", 0, false},
	}

	for _, tt := range tests {
		key, idx, indexed := splitIndexSegment(tt.seg)
		if key != tt.key || idx != tt.idx || indexed != tt.indexed {
			t.Errorf("splitIndexSegment(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tt.seg, key, idx, indexed, tt.key, tt.idx, tt.indexed)
		}
	}
}
