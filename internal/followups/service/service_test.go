package service

import (
	"context"
	"testing"
	"time"

	"sales_crm_backend/internal/access"
	"sales_crm_backend/internal/followups/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*60*60)

type testConfig struct {
	policy string
}

func (c testConfig) GetLocation() *time.Location    { return wib }
func (c testConfig) GetFirstSlotHour() int          { return 9 }
func (c testConfig) GetSuccessorDelayDays() int     { return 1 }
func (c testConfig) GetExhaustedPolicy() string     { return c.policy }
func (c testConfig) GetReminderLead() time.Duration { return 15 * time.Minute }

type fixture struct {
	ctx    context.Context
	svc    *Service
	repo   *fakeRepo
	bus    *recordingBus
	now    time.Time
	owner  uuid.UUID
	branch uuid.UUID
	lead   domain.LeadRef
}

// newFixture builds a service seeded with the default catalog and one HOT
// lead. The clock reads Thursday 2026-10-15 10:00 local time.
func newFixture(t *testing.T, policy string) *fixture {
	t.Helper()
	f := &fixture{
		ctx:    context.Background(),
		repo:   newFakeRepo(),
		bus:    &recordingBus{},
		now:    time.Date(2026, 10, 15, 10, 0, 0, 0, wib),
		owner:  uuid.New(),
		branch: uuid.New(),
	}
	f.svc = New(f.repo, f.bus, testConfig{policy: policy}, nil).
		WithClock(domain.ClockFunc(func() time.Time { return f.now }))

	n, err := f.svc.SeedDefaults(f.ctx)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	f.lead = f.addLead("HOT")
	return f
}

func (f *fixture) addLead(status string) domain.LeadRef {
	lead := domain.LeadRef{ID: uuid.New(), OwnerID: f.owner, BranchID: f.branch, Status: status, IsActive: true}
	f.repo.addLead(lead, "Budi Santoso")
	return lead
}

func (f *fixture) ownerScope() access.Scope {
	return access.Marketing(f.owner, f.branch)
}

func (f *fixture) stageID(t *testing.T, key string) uuid.UUID {
	t.Helper()
	stages, err := f.repo.ListStages(f.ctx, false)
	require.NoError(t, err)
	for _, st := range stages {
		if st.Key == key {
			return st.ID
		}
	}
	t.Fatalf("stage %s not seeded", key)
	return uuid.Nil
}

// scheduled inserts a scheduled record directly.
func (f *fixture) scheduled(stageKey string, attempt int, at time.Time) domain.FollowUp {
	return f.repo.put(domain.FollowUp{
		LeadID:      f.lead.ID,
		UserID:      f.owner,
		StageKey:    stageKey,
		Attempt:     attempt,
		ScheduledAt: at.UTC(),
		Status:      domain.StatusScheduled,
	})
}

func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }
