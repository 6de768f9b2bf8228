package repository

import (
	"context"
	"errors"
	"fmt"

	"sales_crm_backend/internal/followups/domain"
	"sales_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	stageNotFoundMessage = "follow-up stage not found"
	stageColumns         = `id, key, name, display_order, next_stage_key, is_active, created_at, updated_at`
)

// ListStages returns the catalog ordered by display order, then key.
func (r *Repo) ListStages(ctx context.Context, activeOnly bool) ([]domain.Stage, error) {
	query := `
		SELECT ` + stageColumns + `
		FROM follow_up_stages
		WHERE ($1::boolean = false OR is_active = true)
		ORDER BY display_order ASC, key ASC`

	rows, err := r.q.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list follow-up stages: %w", err)
	}
	defer rows.Close()

	stages := make([]domain.Stage, 0)
	for rows.Next() {
		var s domain.Stage
		if err := rows.Scan(stageDest(&s)...); err != nil {
			return nil, fmt.Errorf("scan follow-up stage: %w", err)
		}
		stages = append(stages, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate follow-up stages: %w", err)
	}
	return stages, nil
}

// GetStage retrieves a stage by ID.
func (r *Repo) GetStage(ctx context.Context, id uuid.UUID) (domain.Stage, error) {
	query := `SELECT ` + stageColumns + ` FROM follow_up_stages WHERE id = $1`

	var s domain.Stage
	if err := r.q.QueryRow(ctx, query, id).Scan(stageDest(&s)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stage{}, apperr.NotFound(stageNotFoundMessage)
		}
		return domain.Stage{}, fmt.Errorf("get follow-up stage: %w", err)
	}
	return s, nil
}

// StageInUse reports whether any follow-up references the stage key.
func (r *Repo) StageInUse(ctx context.Context, key string) (bool, error) {
	var inUse bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM follow_ups WHERE stage_key = $1)`, key).Scan(&inUse); err != nil {
		return false, fmt.Errorf("check follow-up stage usage: %w", err)
	}
	return inUse, nil
}

// CreateStage inserts a stage.
func (r *Repo) CreateStage(ctx context.Context, stage domain.Stage) (domain.Stage, error) {
	query := `
		INSERT INTO follow_up_stages (key, name, display_order, next_stage_key, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + stageColumns

	var s domain.Stage
	err := r.q.QueryRow(ctx, query, stage.Key, stage.Name, stage.DisplayOrder, stage.NextStageKey, stage.IsActive).
		Scan(stageDest(&s)...)
	if err != nil {
		return domain.Stage{}, stageWriteError("create follow-up stage", stage, err)
	}
	return s, nil
}

// UpdateStage replaces the editable fields of a stage. A key change cascades
// to next_stage_key pointers and follow-up records through the foreign keys.
func (r *Repo) UpdateStage(ctx context.Context, stage domain.Stage) (domain.Stage, error) {
	query := `
		UPDATE follow_up_stages SET
			key = $2,
			name = $3,
			display_order = $4,
			next_stage_key = $5,
			is_active = $6,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + stageColumns

	var s domain.Stage
	err := r.q.QueryRow(ctx, query, stage.ID, stage.Key, stage.Name, stage.DisplayOrder, stage.NextStageKey, stage.IsActive).
		Scan(stageDest(&s)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stage{}, apperr.NotFound(stageNotFoundMessage)
		}
		return domain.Stage{}, stageWriteError("update follow-up stage", stage, err)
	}
	return s, nil
}

// DeleteStage removes a stage. Stages pointing at it lose their next pointer.
func (r *Repo) DeleteStage(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.Exec(ctx, `DELETE FROM follow_up_stages WHERE id = $1`, id)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return apperr.Wrap(apperr.KindConflict, "follow-up stage is used by existing follow-ups", domain.ErrStageInUse).
				WithCode(domain.CodeStageInUse)
		}
		return fmt.Errorf("delete follow-up stage: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(stageNotFoundMessage)
	}
	return nil
}

// SetStageActive sets the is_active flag.
func (r *Repo) SetStageActive(ctx context.Context, id uuid.UUID, isActive bool) (domain.Stage, error) {
	query := `
		UPDATE follow_up_stages SET is_active = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + stageColumns

	var s domain.Stage
	if err := r.q.QueryRow(ctx, query, id, isActive).Scan(stageDest(&s)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Stage{}, apperr.NotFound(stageNotFoundMessage)
		}
		return domain.Stage{}, fmt.Errorf("set follow-up stage active: %w", err)
	}
	return s, nil
}

// UpdateStageOrder writes display orders in one batch and returns how many
// stages were found. Unknown ids are skipped.
func (r *Repo) UpdateStageOrder(ctx context.Context, items []StageOrder) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`UPDATE follow_up_stages SET display_order = $2, updated_at = now() WHERE id = $1`, item.ID, item.DisplayOrder)
	}

	results := r.q.SendBatch(ctx, batch)
	defer results.Close()

	updated := 0
	for range items {
		tag, err := results.Exec()
		if err != nil {
			return updated, fmt.Errorf("reorder follow-up stages: %w", err)
		}
		updated += int(tag.RowsAffected())
	}
	return updated, nil
}

func stageDest(s *domain.Stage) []any {
	return []any{&s.ID, &s.Key, &s.Name, &s.DisplayOrder, &s.NextStageKey, &s.IsActive, &s.CreatedAt, &s.UpdatedAt}
}

func stageWriteError(op string, stage domain.Stage, err error) error {
	switch code, _ := pgErrorCode(err); code {
	case pgUniqueViolation:
		return apperr.Validation(fmt.Sprintf("stage key %q already exists", stage.Key)).WithOp(op)
	case pgForeignKeyViolation:
		return apperr.Validation("next stage does not exist").WithOp(op)
	}
	return fmt.Errorf("%s: %w", op, err)
}
