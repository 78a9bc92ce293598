package engine

import (
	"strings"

	"github.com/shaiso/Cascade/internal/domain"
	"github.com/shaiso/Cascade/internal/nodes"
)

// Validate проверяет WorkflowSpec перед построением движка.
//
// Проверяются: наличие узлов, непустые и уникальные ID без точки
// (точка зарезервирована для ключей "parent.child"), регистрация типов
// всех обычных узлов включая подузлы, непустое тело loop и наличие
// хотя бы одной ветви у switch.
func Validate(spec *domain.WorkflowSpec, registry *nodes.Registry) error {
	if spec == nil || len(spec.Nodes) == 0 {
		return NewValidationError("", "nodes", "workflow has no nodes", ErrEmptyNodes)
	}

	seen := make(map[string]bool, len(spec.Nodes))
	for i := range spec.Nodes {
		def := &spec.Nodes[i]
		if err := validateID(def.ID, seen); err != nil {
			return err
		}
		if err := validateNode(def, registry); err != nil {
			return err
		}
	}
	return nil
}

func validateID(id string, seen map[string]bool) error {
	if id == "" {
		return NewValidationError("", "id", "node has empty ID", ErrEmptyNodeID)
	}
	if strings.Contains(id, ".") {
		return NewValidationError(id, "id", "node ID must not contain '.'", ErrDottedNodeID)
	}
	if seen[id] {
		return NewValidationError(id, "id", "duplicate node ID", ErrDuplicateNodeID)
	}
	seen[id] = true
	return nil
}

func validateNode(def *domain.NodeDef, registry *nodes.Registry) error {
	switch def.Type {
	case domain.NodeTypeLoop:
		if len(def.Nodes) == 0 {
			return NewValidationError(def.ID, "nodes", "loop has no sub-nodes", ErrEmptyLoopBody)
		}
		return validateSubNodes(def.ID, def.Nodes, registry)

	case domain.NodeTypeSwitch:
		if len(def.Cases) == 0 && def.Default == nil {
			return NewValidationError(def.ID, "cases", "switch has neither cases nor default", ErrEmptyCases)
		}
		for i := range def.Cases {
			if err := validateSubNodes(def.ID, def.Cases[i].Nodes, registry); err != nil {
				return err
			}
		}
		if def.Default != nil {
			return validateSubNodes(def.ID, def.Default.Nodes, registry)
		}
		return nil

	default:
		if !registry.Has(def.Type) {
			return NewValidationError(def.ID, "type", "unknown node type "+def.Type, ErrUnknownNodeType)
		}
		return nil
	}
}

// validateSubNodes проверяет подузлы контейнера. Уникальность ID
// требуется в пределах контейнера. Вложенные control-flow узлы
// допускаются синтаксисом, но пропускаются при выполнении, поэтому
// их внутренности не проверяются.
func validateSubNodes(parentID string, subs []domain.NodeDef, registry *nodes.Registry) error {
	seen := make(map[string]bool, len(subs))
	for i := range subs {
		sub := &subs[i]
		if err := validateID(sub.ID, seen); err != nil {
			return err
		}
		if sub.IsControl() {
			continue
		}
		if !registry.Has(sub.Type) {
			return NewValidationError(parentID+"."+sub.ID, "type", "unknown node type "+sub.Type, ErrUnknownNodeType)
		}
	}
	return nil
}
