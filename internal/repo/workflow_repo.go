package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Cascade/internal/domain"
)

// WorkflowRepo — репозиторий определений workflow.
//
// Хранит спецификации (не состояние запусков) в таблице workflows:
// по одной строке на ID, спецификация сериализуется в JSONB.
type WorkflowRepo struct {
	pool *pgxpool.Pool
}

// NewWorkflowRepo создаёт новый WorkflowRepo.
func NewWorkflowRepo(pool *pgxpool.Pool) *WorkflowRepo {
	return &WorkflowRepo{pool: pool}
}

// EnsureSchema создаёт таблицу workflows, если её нет.
func (r *WorkflowRepo) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS workflows (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			spec       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure workflows schema: %w", err)
	}
	return nil
}

// Put сохраняет спецификацию, перезаписывая предыдущую с тем же ID.
func (r *WorkflowRepo) Put(ctx context.Context, spec *domain.WorkflowSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}

	query := `
		INSERT INTO workflows (id, name, spec, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, spec = EXCLUDED.spec, updated_at = EXCLUDED.updated_at
	`
	_, err = r.pool.Exec(ctx, query, spec.ID, spec.Name, specJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert workflow: %w", err)
	}
	return nil
}

// Get возвращает спецификацию по ID.
func (r *WorkflowRepo) Get(ctx context.Context, id string) (*domain.WorkflowSpec, error) {
	query := `SELECT spec FROM workflows WHERE id = $1`

	var specJSON []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(&specJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}

	var spec domain.WorkflowSpec
	if err := json.Unmarshal(specJSON, &spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}
	return &spec, nil
}

// List возвращает все сохранённые спецификации.
func (r *WorkflowRepo) List(ctx context.Context) ([]domain.WorkflowSpec, error) {
	query := `SELECT spec FROM workflows ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var specs []domain.WorkflowSpec
	for rows.Next() {
		var specJSON []byte
		if err := rows.Scan(&specJSON); err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		var spec domain.WorkflowSpec
		if err := json.Unmarshal(specJSON, &spec); err != nil {
			return nil, fmt.Errorf("unmarshal spec: %w", err)
		}
		specs = append(specs, spec)
	}
	return specs, rows.Err()
}

// Delete удаляет спецификацию.
func (r *WorkflowRepo) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
