package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sales_crm_backend/internal/access"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	cold bool
}

func (c testConfig) GetColdOnExhausted() bool { return c.cold }
func (c testConfig) GetPhoneRegion() string   { return "ID" }

type memoryStore struct {
	mu    sync.Mutex
	leads map[uuid.UUID]domain.Lead
}

func newMemoryStore() *memoryStore {
	return &memoryStore{leads: make(map[uuid.UUID]domain.Lead)}
}

func (m *memoryStore) Create(_ context.Context, lead domain.Lead) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead.ID = uuid.New()
	lead.IsActive = true
	m.leads[lead.ID] = lead
	return lead, nil
}

func (m *memoryStore) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, domain.NotFound()
	}
	return lead, nil
}

func (m *memoryStore) List(_ context.Context, filter repository.ListFilter) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Lead, 0)
	for _, lead := range m.leads {
		if !filter.Scope.Allows(lead.OwnerID, lead.BranchID) {
			continue
		}
		if filter.Status != nil && lead.Status != *filter.Status {
			continue
		}
		if filter.ActiveOnly && !lead.IsActive {
			continue
		}
		out = append(out, lead)
	}
	return out, nil
}

func (m *memoryStore) UpdateStatus(_ context.Context, id uuid.UUID, expected domain.Status, next domain.Lead) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead, ok := m.leads[id]
	if !ok || lead.Status != expected || !lead.IsActive {
		return domain.Lead{}, domain.ErrStaleState
	}
	lead.Status = next.Status
	lead.ClosingReason = next.ClosingReason
	lead.NonClosingReason = next.NonClosingReason
	m.leads[id] = lead
	return lead, nil
}

func (m *memoryStore) Deactivate(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead, ok := m.leads[id]
	if !ok {
		return domain.Lead{}, domain.NotFound()
	}
	lead.IsActive = false
	m.leads[id] = lead
	return lead, nil
}

func (m *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.leads[id]; !ok {
		return domain.NotFound()
	}
	delete(m.leads, id)
	return nil
}

type captureBus struct {
	mu      sync.Mutex
	events  []events.Event
	syncErr error
}

func (b *captureBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *captureBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return b.syncErr
}

func (b *captureBus) Subscribe(string, events.Handler) {}

func newTestService(cold bool) (*Service, *memoryStore, *captureBus) {
	store := newMemoryStore()
	bus := &captureBus{}
	return New(store, bus, testConfig{cold: cold}, nil), store, bus
}

func TestCreateNormalizesAndAnnounces(t *testing.T) {
	svc, _, bus := newTestService(false)
	owner, branch := uuid.New(), uuid.New()

	lead, err := svc.Create(context.Background(), access.Marketing(owner, branch), CreateInput{
		Name:    "  siti   AMINAH ",
		Phone:   "0812-3456-7890",
		Status:  "hot",
		Address: ptr("<b>Jl. Merdeka 1</b>"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Siti Aminah", lead.Name)
	assert.Equal(t, "+6281234567890", lead.Phone)
	assert.Equal(t, domain.StatusHot, lead.Status)
	assert.Equal(t, owner, lead.OwnerID)
	assert.Equal(t, branch, lead.BranchID)
	require.NotNil(t, lead.Address)
	assert.Equal(t, "Jl. Merdeka 1", *lead.Address)

	require.Len(t, bus.events, 1)
	created, ok := bus.events[0].(events.LeadCreated)
	require.True(t, ok)
	assert.Equal(t, "HOT", created.Status)
}

func TestCreateRejections(t *testing.T) {
	svc, _, _ := newTestService(false)
	owner, branchA, branchB := uuid.New(), uuid.New(), uuid.New()
	ctx := context.Background()

	_, err := svc.Create(ctx, access.Marketing(owner, branchA), CreateInput{Name: "Siti", Phone: "123"})
	assert.Error(t, err)

	_, err = svc.Create(ctx, access.Marketing(owner, branchA), CreateInput{Name: " ", Phone: "081234567890"})
	assert.Error(t, err)

	_, err = svc.Create(ctx, access.Marketing(owner, branchA, branchB), CreateInput{Name: "Siti", Phone: "081234567890"})
	assert.Error(t, err, "ambiguous branch")

	other := uuid.New()
	_, err = svc.Create(ctx, access.Marketing(owner, branchA), CreateInput{Name: "Siti", Phone: "081234567890", BranchID: &other})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUpdateStatus(t *testing.T) {
	svc, _, bus := newTestService(false)
	owner, branch := uuid.New(), uuid.New()
	ctx := context.Background()
	scope := access.Marketing(owner, branch)

	lead, err := svc.Create(ctx, scope, CreateInput{Name: "Siti", Phone: "081234567890"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWarm, lead.Status)

	won, err := svc.UpdateStatus(ctx, scope, lead.ID, "CONVERTED", ptr("bought a rug"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCustomer, won.Status)
	require.NotNil(t, won.ClosingReason)

	same, err := svc.UpdateStatus(ctx, scope, lead.ID, "customer", nil)
	require.NoError(t, err)
	assert.Equal(t, won, same)
	assert.Len(t, bus.events, 2)

	_, err = svc.UpdateStatus(ctx, access.Supervisor(uuid.New(), branch), lead.ID, "EXIT", nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.UpdateStatus(ctx, scope, lead.ID, "LOST", nil)
	assert.Error(t, err)

	_, err = svc.Deactivate(ctx, scope, lead.ID)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, scope, lead.ID, "EXIT", nil)
	assert.ErrorIs(t, err, domain.ErrInactive)
}

func TestGetHidesLeadsOutsideScope(t *testing.T) {
	svc, _, _ := newTestService(false)
	owner, branch := uuid.New(), uuid.New()
	ctx := context.Background()

	lead, err := svc.Create(ctx, access.Marketing(owner, branch), CreateInput{Name: "Siti", Phone: "081234567890"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, access.Supervisor(uuid.New(), branch), lead.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, access.Marketing(uuid.New(), branch), lead.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Get(ctx, access.SuperUser(uuid.New()), uuid.New())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	items, err := svc.List(ctx, access.SuperUser(uuid.New()).Pin(branch), "warm", true)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFollowUpExhaustedDowngrade(t *testing.T) {
	for _, cold := range []bool{false, true} {
		svc, store, _ := newTestService(cold)
		owner, branch := uuid.New(), uuid.New()
		ctx := context.Background()

		lead, err := svc.Create(ctx, access.Marketing(owner, branch), CreateInput{Name: "Siti", Phone: "081234567890", Status: "HOT"})
		require.NoError(t, err)

		require.NoError(t, svc.HandleFollowUpExhausted(ctx, events.FollowUpExhausted{LeadID: lead.ID}))

		got, err := store.GetByID(ctx, lead.ID)
		require.NoError(t, err)
		if cold {
			assert.Equal(t, domain.StatusCold, got.Status)
			require.NotNil(t, got.NonClosingReason)
		} else {
			assert.Equal(t, domain.StatusHot, got.Status)
		}
	}
}

func TestFollowUpExhaustedLeavesClosedLeads(t *testing.T) {
	svc, store, _ := newTestService(true)
	owner, branch := uuid.New(), uuid.New()
	ctx := context.Background()
	scope := access.Marketing(owner, branch)

	lead, err := svc.Create(ctx, scope, CreateInput{Name: "Siti", Phone: "081234567890"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, scope, lead.ID, "CUSTOMER", nil)
	require.NoError(t, err)

	require.NoError(t, svc.HandleFollowUpExhausted(ctx, events.FollowUpExhausted{LeadID: lead.ID}))
	got, err := store.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCustomer, got.Status)
}

func ptr(s string) *string { return &s }

func TestCreateRemovesLeadWhenCadenceCannotStart(t *testing.T) {
	svc, store, bus := newTestService(false)
	bus.syncErr = errors.New("no active follow-up stage configured")
	owner, branch := uuid.New(), uuid.New()

	_, err := svc.Create(context.Background(), access.Marketing(owner, branch), CreateInput{
		Name:   "Siti",
		Phone:  "081234567890",
		Status: "HOT",
	})
	require.Error(t, err)
	assert.Empty(t, store.leads)
}
