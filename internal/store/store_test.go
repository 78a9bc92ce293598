package store

import (
	"errors"
	"testing"

	"github.com/shaiso/Cascade/internal/domain"
)

func wf(id string) *Workflow {
	return &Workflow{Spec: &domain.WorkflowSpec{ID: id}}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	s.Put(wf("beta"))
	s.Put(wf("alpha"))

	got, err := s.Get("alpha")
	if err != nil || got.Spec.ID != "alpha" {
		t.Fatalf("Get(alpha) = %v, %v", got, err)
	}

	if _, err := s.Get("ghost"); !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("Get(ghost) error = %v, want ErrWorkflowNotFound", err)
	}

	list := s.List()
	if len(list) != 2 || list[0].Spec.ID != "alpha" || list[1].Spec.ID != "beta" {
		t.Errorf("List() не отсортирован по ID: %v", list)
	}

	// Повторный Put перезаписывает.
	replacement := wf("alpha")
	s.Put(replacement)
	got, _ = s.Get("alpha")
	if got != replacement {
		t.Error("Put должен перезаписывать workflow с тем же ID")
	}

	if err := s.Remove("alpha"); err != nil {
		t.Errorf("Remove(alpha) error = %v", err)
	}
	if err := s.Remove("alpha"); !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("повторный Remove error = %v, want ErrWorkflowNotFound", err)
	}
}
