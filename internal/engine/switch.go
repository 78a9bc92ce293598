package engine

import (
	"context"

	"github.com/shaiso/Cascade/internal/domain"
)

// runSwitch выполняет узел ветвления.
//
// Условие разрешается ровно один раз. Выбирается первая ветвь cases,
// значение которой равно результату условия (с числовой коэрцией),
// иначе default, иначе ничего. Подузлы выбранной ветви выполняются
// линейно под ключами "switchId.subId".
func (e *Engine) runSwitch(ctx context.Context, def *domain.NodeDef, st *State, sink eventSink) error {
	selected := e.selectCase(def, st)

	for i := range selected {
		if err := e.runSubNode(ctx, def.ID, &selected[i], 0, st, sink); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) selectCase(def *domain.NodeDef, st *State) []domain.NodeDef {
	value := ConditionValue(def.Condition, st, "")

	for i := range def.Cases {
		if looseEqual(value, def.Cases[i].Value) {
			e.logger.Debug("switch case matched", "node_id", def.ID, "case", def.Cases[i].Value)
			return def.Cases[i].Nodes
		}
	}
	if def.Default != nil {
		e.logger.Debug("switch default selected", "node_id", def.ID)
		return def.Default.Nodes
	}

	e.logger.Debug("switch matched nothing", "node_id", def.ID)
	return nil
}
