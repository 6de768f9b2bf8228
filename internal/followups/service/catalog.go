package service

import (
	"context"
	"strings"

	"sales_crm_backend/internal/followups/domain"
	"sales_crm_backend/internal/followups/repository"

	"github.com/google/uuid"
)

// StageInput is the editable part of a stage.
type StageInput struct {
	Key          string
	Name         string
	DisplayOrder int
	NextStageKey *string
	IsActive     *bool
}

// ListActiveStages returns active stages in display order.
func (s *Service) ListActiveStages(ctx context.Context) ([]domain.Stage, error) {
	return s.repo.ListStages(ctx, true)
}

// ListStages returns the whole catalog (admin).
func (s *Service) ListStages(ctx context.Context) ([]domain.Stage, error) {
	return s.repo.ListStages(ctx, false)
}

// ResolveNext follows the next-stage pointer of key as stored, even when it
// names an inactive stage. Progression uses ResolveNextActive.
func (s *Service) ResolveNext(ctx context.Context, key string) (*string, error) {
	chain, err := s.chain(ctx)
	if err != nil {
		return nil, err
	}
	return chain.Next(key)
}

// ResolveNextActive is the stage a progression from key lands on: the chain
// is followed past inactive stages, nil when none is left.
func (s *Service) ResolveNextActive(ctx context.Context, key string) (*string, error) {
	stages, err := s.repo.ListStages(ctx, false)
	if err != nil {
		return nil, err
	}
	return domain.NextActive(stages, key)
}

func (s *Service) chain(ctx context.Context) (domain.StageChain, error) {
	stages, err := s.repo.ListStages(ctx, false)
	if err != nil {
		return nil, err
	}
	return domain.NewStageChain(stages), nil
}

// CreateStage validates and stores a new stage.
func (s *Service) CreateStage(ctx context.Context, in StageInput) (domain.Stage, error) {
	stage := domain.Stage{
		ID:           uuid.New(),
		Key:          domain.NormalizeStageKey(in.Key),
		Name:         strings.TrimSpace(in.Name),
		DisplayOrder: in.DisplayOrder,
		NextStageKey: normalizeNext(in.NextStageKey),
		IsActive:     in.IsActive == nil || *in.IsActive,
	}

	existing, err := s.repo.ListStages(ctx, false)
	if err != nil {
		return domain.Stage{}, err
	}
	if err := domain.ValidateStage(stage, existing); err != nil {
		return domain.Stage{}, err
	}

	created, err := s.repo.CreateStage(ctx, stage)
	if err != nil {
		return domain.Stage{}, err
	}

	s.log.WithContext(ctx).Info("follow-up stage created", "stageId", created.ID, "key", created.Key)
	return created, nil
}

// UpdateStage replaces the editable fields of a stage. Renaming the key keeps
// existing records and next pointers attached to the stage.
func (s *Service) UpdateStage(ctx context.Context, id uuid.UUID, in StageInput) (domain.Stage, error) {
	current, err := s.repo.GetStage(ctx, id)
	if err != nil {
		return domain.Stage{}, err
	}

	current.Key = domain.NormalizeStageKey(in.Key)
	current.Name = strings.TrimSpace(in.Name)
	current.DisplayOrder = in.DisplayOrder
	current.NextStageKey = normalizeNext(in.NextStageKey)
	if in.IsActive != nil {
		current.IsActive = *in.IsActive
	}

	existing, err := s.repo.ListStages(ctx, false)
	if err != nil {
		return domain.Stage{}, err
	}
	if err := domain.ValidateStage(current, existing); err != nil {
		return domain.Stage{}, err
	}

	updated, err := s.repo.UpdateStage(ctx, current)
	if err != nil {
		return domain.Stage{}, err
	}

	s.log.WithContext(ctx).Info("follow-up stage updated", "stageId", updated.ID, "key", updated.Key)
	return updated, nil
}

// DeleteStage removes a stage that no record references.
func (s *Service) DeleteStage(ctx context.Context, id uuid.UUID) error {
	stage, err := s.repo.GetStage(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.repo.StageInUse(ctx, stage.Key)
	if err != nil {
		return err
	}
	if inUse {
		return domain.StageInUse(stage.Key)
	}

	if err := s.repo.DeleteStage(ctx, id); err != nil {
		return err
	}

	s.log.WithContext(ctx).Info("follow-up stage deleted", "stageId", id, "key", stage.Key)
	return nil
}

// UpdateOrder writes display orders without looking at the next-stage chain.
// It returns how many of the given stages existed.
func (s *Service) UpdateOrder(ctx context.Context, items []repository.StageOrder) (int, error) {
	updated, err := s.repo.UpdateStageOrder(ctx, items)
	if err != nil {
		return updated, err
	}
	if updated != len(items) {
		s.log.WithContext(ctx).Warn("follow-up stage reorder skipped unknown stages", "requested", len(items), "updated", updated)
	}
	return updated, nil
}

// ToggleActive flips the active flag of a stage.
func (s *Service) ToggleActive(ctx context.Context, id uuid.UUID) (domain.Stage, error) {
	stage, err := s.repo.GetStage(ctx, id)
	if err != nil {
		return domain.Stage{}, err
	}
	return s.repo.SetStageActive(ctx, id, !stage.IsActive)
}

func normalizeNext(next *string) *string {
	if next == nil {
		return nil
	}
	key := domain.NormalizeStageKey(*next)
	if key == "" {
		return nil
	}
	return &key
}
