package service

import (
	"context"
	_ "embed"
	"fmt"

	"sales_crm_backend/internal/followups/domain"
	"sales_crm_backend/internal/followups/repository"

	"gopkg.in/yaml.v3"
)

//go:embed stages.yaml
var defaultStagesYAML []byte

type seedFile struct {
	Stages []seedStage `yaml:"stages"`
}

type seedStage struct {
	Key   string `yaml:"key"`
	Name  string `yaml:"name"`
	Order int    `yaml:"order"`
	Next  string `yaml:"next"`
}

// DefaultStages parses the embedded default catalog.
func DefaultStages() ([]domain.Stage, error) {
	var file seedFile
	if err := yaml.Unmarshal(defaultStagesYAML, &file); err != nil {
		return nil, fmt.Errorf("parse default follow-up stages: %w", err)
	}

	stages := make([]domain.Stage, 0, len(file.Stages))
	for _, st := range file.Stages {
		stage := domain.Stage{
			Key:          domain.NormalizeStageKey(st.Key),
			Name:         st.Name,
			DisplayOrder: st.Order,
			IsActive:     true,
		}
		if st.Next != "" {
			next := domain.NormalizeStageKey(st.Next)
			stage.NextStageKey = &next
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

// SeedDefaults installs the default catalog when no stage exists yet and
// returns how many stages were created.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	defaults, err := DefaultStages()
	if err != nil {
		return 0, err
	}

	created := 0
	err = s.repo.WithinTx(ctx, func(tx repository.Repository) error {
		existing, err := tx.ListStages(ctx, false)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}

		// pointers are set once every key exists
		stored := make([]domain.Stage, 0, len(defaults))
		for _, st := range defaults {
			plain := st
			plain.NextStageKey = nil
			saved, err := tx.CreateStage(ctx, plain)
			if err != nil {
				return err
			}
			stored = append(stored, saved)
		}
		for i, st := range defaults {
			if st.NextStageKey == nil {
				continue
			}
			stored[i].NextStageKey = st.NextStageKey
			if _, err := tx.UpdateStage(ctx, stored[i]); err != nil {
				return err
			}
		}
		created = len(stored)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if created > 0 {
		s.log.WithContext(ctx).Info("default follow-up stages seeded", "count", created)
	}
	return created, nil
}
