package service

import (
	"testing"
	"time"

	"sales_crm_backend/internal/followups/domain"
	"sales_crm_backend/internal/followups/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaultsBuildsChainOnce(t *testing.T) {
	f := newFixture(t, "stop")

	next, err := f.svc.ResolveNext(f.ctx, "greeting")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "impression", *next)

	last, err := f.svc.ResolveNext(f.ctx, "closing")
	require.NoError(t, err)
	assert.Nil(t, last)

	n, err := f.svc.SeedDefaults(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestResolveNextUnknownStage(t *testing.T) {
	f := newFixture(t, "stop")

	_, err := f.svc.ResolveNext(f.ctx, "follow_up_99")
	assert.ErrorIs(t, err, domain.ErrInvalidStage)
}

func TestCreateStageValidation(t *testing.T) {
	f := newFixture(t, "stop")

	tests := []struct {
		name string
		in   StageInput
	}{
		{name: "missing key", in: StageInput{Name: "Survey"}},
		{name: "bad key", in: StageInput{Key: "site survey", Name: "Survey"}},
		{name: "missing name", in: StageInput{Key: "survey"}},
		{name: "duplicate key", in: StageInput{Key: "closing", Name: "Closing again"}},
		{name: "self reference", in: StageInput{Key: "survey", Name: "Survey", NextStageKey: strPtr("survey")}},
		{name: "dangling next", in: StageInput{Key: "survey", Name: "Survey", NextStageKey: strPtr("nowhere")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateStage(f.ctx, tt.in)
			assert.True(t, isValidation(err), "got %v", err)
		})
	}

	created, err := f.svc.CreateStage(f.ctx, StageInput{Key: "Survey", Name: " Site survey ", DisplayOrder: 6, NextStageKey: strPtr("closing")})
	require.NoError(t, err)
	assert.Equal(t, "survey", created.Key)
	assert.Equal(t, "Site survey", created.Name)
	assert.True(t, created.IsActive)
}

func TestUpdateStageRenameKeepsReferences(t *testing.T) {
	f := newFixture(t, "stop")
	rec := f.scheduled("impression", 1, f.now.Add(time.Hour))

	updated, err := f.svc.UpdateStage(f.ctx, f.stageID(t, "impression"), StageInput{
		Key:          "first_impression",
		Name:         "First impression",
		DisplayOrder: 2,
		NextStageKey: strPtr("recommendation"),
	})
	require.NoError(t, err)
	assert.Equal(t, "first_impression", updated.Key)
	assert.True(t, updated.IsActive)

	next, err := f.svc.ResolveNext(f.ctx, "greeting")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "first_impression", *next)
	assert.Equal(t, "first_impression", f.repo.record(rec.ID).StageKey)
}

func TestUpdateStageRejectsSelfReference(t *testing.T) {
	f := newFixture(t, "stop")

	_, err := f.svc.UpdateStage(f.ctx, f.stageID(t, "closing"), StageInput{Key: "closing", Name: "Closing", NextStageKey: strPtr("closing")})
	assert.True(t, isValidation(err))
}

func TestDeleteStage(t *testing.T) {
	f := newFixture(t, "stop")
	f.scheduled("greeting", 1, f.now.Add(time.Hour))

	err := f.svc.DeleteStage(f.ctx, f.stageID(t, "greeting"))
	assert.ErrorIs(t, err, domain.ErrStageInUse)

	require.NoError(t, f.svc.DeleteStage(f.ctx, f.stageID(t, "closing")))
	next, err := f.svc.ResolveNext(f.ctx, "negotiation")
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestUpdateOrderSkipsUnknownStages(t *testing.T) {
	f := newFixture(t, "stop")

	n, err := f.svc.UpdateOrder(f.ctx, []repository.StageOrder{
		{ID: f.stageID(t, "closing"), DisplayOrder: 0},
		{ID: uuid.New(), DisplayOrder: 9},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stages, err := f.svc.ListStages(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "closing", stages[0].Key)

	// order does not change the chain
	next, err := f.svc.ResolveNext(f.ctx, "closing")
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestToggleActive(t *testing.T) {
	f := newFixture(t, "stop")
	id := f.stageID(t, "negotiation")

	st, err := f.svc.ToggleActive(f.ctx, id)
	require.NoError(t, err)
	assert.False(t, st.IsActive)

	active, err := f.svc.ListActiveStages(f.ctx)
	require.NoError(t, err)
	assert.Len(t, active, 4)

	st, err = f.svc.ToggleActive(f.ctx, id)
	require.NoError(t, err)
	assert.True(t, st.IsActive)
}

func TestResolveNextActiveSkipsInactiveStages(t *testing.T) {
	f := newFixture(t, "stop")
	for _, key := range []string{"impression", "recommendation"} {
		_, err := f.svc.ToggleActive(f.ctx, f.stageID(t, key))
		require.NoError(t, err)
	}

	raw, err := f.svc.ResolveNext(f.ctx, "greeting")
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, "impression", *raw)

	next, err := f.svc.ResolveNextActive(f.ctx, "greeting")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "negotiation", *next)

	_, err = f.svc.ToggleActive(f.ctx, f.stageID(t, "closing"))
	require.NoError(t, err)
	end, err := f.svc.ResolveNextActive(f.ctx, "negotiation")
	require.NoError(t, err)
	assert.Nil(t, end)

	_, err = f.svc.ResolveNextActive(f.ctx, "follow_up_99")
	assert.ErrorIs(t, err, domain.ErrInvalidStage)
}

func TestDefaultStagesParse(t *testing.T) {
	stages, err := DefaultStages()
	require.NoError(t, err)
	require.Len(t, stages, 5)
	assert.Equal(t, "greeting", stages[0].Key)
	assert.Nil(t, stages[4].NextStageKey)
}
